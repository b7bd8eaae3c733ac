package cli

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"

	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

// sessionJar is a cookie jar that survives across CLI invocations. The jar
// itself is a plain in-memory cookiejar; Save and load move the backend's
// session cookies through a mode-0600 file.
type sessionJar struct {
	inner http.CookieJar
	base  *url.URL
	path  string
}

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

func sessionFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".omics-console-session.json"
	}
	return filepath.Join(dir, "omics-console", "session.json")
}

func newSessionJar(baseURL, path string) (*sessionJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, 0, "invalid backend base URL")
	}
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "init cookie jar")
	}

	jar := &sessionJar{inner: inner, base: base, path: path}
	jar.load()
	return jar, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// load restores previously saved cookies. A missing or corrupt file simply
// means no session.
func (j *sessionJar) load() {
	raw, err := os.ReadFile(j.path)
	if err != nil {
		return
	}
	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/", Expires: c.Expires})
	}
	j.inner.SetCookies(j.base, cookies)
}

// Save writes the current session cookies to disk.
func (j *sessionJar) Save() error {
	cookies := j.inner.Cookies(j.base)

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value, Expires: c.Expires})
	}

	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "encode session state")
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "create session directory")
	}
	if err := os.WriteFile(j.path, raw, 0o600); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "write session file")
	}
	return nil
}

// Clear removes the persisted session.
func (j *sessionJar) Clear() error {
	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "remove session file")
	}
	return nil
}
