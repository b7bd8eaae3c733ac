package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReportSignerGenerateAndParse(t *testing.T) {
	signer := NewReportSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate(9001, "fastqc/sample_501/report.html")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, int64(9001), jobID)
	require.Equal(t, "fastqc/sample_501/report.html", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestReportSignerRejectsTampering(t *testing.T) {
	signer := NewReportSigner("secret", time.Hour)
	token, _, err := signer.Generate(9001, "fastqc/sample_501/report.html")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)
}

func TestReportSignerExpired(t *testing.T) {
	signer := NewReportSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate(9001, "fastqc/sample_501/report.zip")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, int64(9001), jobID)
	require.Equal(t, "fastqc/sample_501/report.zip", path)
}
