// Package api implements the typed HTTP client for the ResLab Omics backend.
//
// The backend is the sole source of truth; this client does plain
// request/response work and maps every failure into the taxonomy from
// pkg/errors: 401 is an authentication failure, 404 is typed absence, any
// other non-2xx is an API failure with the body logged for diagnostics, and a
// transport-level failure is a network error. Context cancellation passes
// through untouched so cancelable reads (organism search) can recognise their
// own abort.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

const csrfCookieName = "csrftoken"

// Client talks to the backend REST API. Safe for use from a single logical
// flow at a time, which is all the console ever does.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger

	catalog          *gocache.Cache
	maxSearchResults int
}

// Params groups constructor dependencies.
type Params struct {
	BaseURL          string
	Timeout          time.Duration
	Logger           *zap.Logger
	CatalogCacheTTL  time.Duration
	MaxSearchResults int
	Transport        http.RoundTripper

	// Jar overrides the default in-memory cookie jar. The CLI passes a
	// file-backed jar so sessions survive across invocations.
	Jar http.CookieJar
}

// New builds a Client with a fresh cookie jar for session state.
func New(params Params) (*Client, error) {
	if params.BaseURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backend base URL is required")
	}
	if _, err := url.Parse(params.BaseURL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, 0, "invalid backend base URL")
	}
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	if params.CatalogCacheTTL <= 0 {
		params.CatalogCacheTTL = 10 * time.Minute
	}
	if params.MaxSearchResults <= 0 {
		params.MaxSearchResults = 50
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	jar := params.Jar
	if jar == nil {
		fresh, err := cookiejar.New(nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "init cookie jar")
		}
		jar = fresh
	}

	return &Client{
		baseURL: strings.TrimRight(params.BaseURL, "/"),
		httpc: &http.Client{
			Timeout:   params.Timeout,
			Jar:       jar,
			Transport: params.Transport,
		},
		log:              logger,
		catalog:          gocache.New(params.CatalogCacheTTL, 2*params.CatalogCacheTTL),
		maxSearchResults: params.MaxSearchResults,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "build request")
	}

	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
	default:
		// The backend expects the csrftoken cookie echoed back in a header
		// on state-changing calls.
		if token := c.csrfToken(); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}

	return req, nil
}

func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpc.Jar == nil {
		return ""
	}
	for _, ck := range c.httpc.Jar.Cookies(u) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// sendJSON issues a JSON-bodied request and decodes the response into out
// when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, 0, "encode request payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	res, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return appErrors.Wrap(err, appErrors.ErrNetworkFailure.Code, 0, "network error")
	}
	defer res.Body.Close() //nolint:errcheck

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		c.drainAndLog(req, res)
		return appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	case res.StatusCode == http.StatusNotFound:
		c.drainAndLog(req, res)
		return appErrors.Clone(appErrors.ErrNoResult, "")
	case res.StatusCode < 200 || res.StatusCode >= 300:
		c.drainAndLog(req, res)
		return appErrors.New(appErrors.ErrAPIFailure.Code, res.StatusCode,
			fmt.Sprintf("backend returned HTTP %d", res.StatusCode))
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrAPIFailure.Code, res.StatusCode, "decode backend response")
	}
	return nil
}

// drainAndLog records the error body for diagnostics. The body is never
// surfaced to users.
func (c *Client) drainAndLog(req *http.Request, res *http.Response) {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	c.log.Debug("backend error response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", res.StatusCode),
		zap.ByteString("body", body),
	)
}

// decodeList tolerates both a plain JSON array and the paginated
// {"results": [...]} envelope.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrAPIFailure.Code, 0, "decode list response")
		}
		return list, nil
	}

	var wrapped struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAPIFailure.Code, 0, "decode paginated response")
	}
	return wrapped.Results, nil
}
