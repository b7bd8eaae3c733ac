package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ReportSigner creates and validates signed download tokens for generated
// FastQC artifacts (HTML reports and zip bundles), so report URLs can be
// shared without exposing filesystem paths.
type ReportSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewReportSigner constructs a signer with the provided secret and TTL.
func NewReportSigner(secret string, ttl time.Duration) *ReportSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReportSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate returns a signed token referencing the job and artifact path.
func (s *ReportSigner) Generate(jobID int64, relPath string) (string, time.Time, error) {
	if jobID == 0 || relPath == "" {
		return "", time.Time{}, fmt.Errorf("jobID and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	payload := fmt.Sprintf("%d|%d|%s", jobID, expiresAt.Unix(), encodedPath)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{
		strconv.FormatInt(jobID, 10),
		strconv.FormatInt(expiresAt.Unix(), 10),
		encodedPath,
		signature,
	}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata. When
// allowExpired is true the timestamp check is skipped; cleanup routines use
// that to resolve paths for artifacts past their TTL.
func (s *ReportSigner) Parse(token string, allowExpired bool) (jobID int64, relPath string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return 0, "", time.Time{}, fmt.Errorf("invalid token format")
	}

	jobID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("invalid job id")
	}
	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt = time.Unix(expUnix, 0)

	rawPath, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("decode path: %w", err)
	}

	payload := fmt.Sprintf("%s|%s|%s", parts[0], parts[1], parts[2])
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[3])) {
		return 0, "", time.Time{}, fmt.Errorf("invalid token signature")
	}
	if !allowExpired && time.Now().After(expiresAt) {
		return 0, "", time.Time{}, fmt.Errorf("token expired")
	}
	return jobID, string(rawPath), expiresAt, nil
}
