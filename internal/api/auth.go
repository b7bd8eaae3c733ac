package api

import (
	"context"
	"net/http"

	"github.com/reslab-bio/omics-console/internal/models"
	appErrors "github.com/reslab-bio/omics-console/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login establishes a session. The backend sets HTTP-only session cookies
// plus the csrftoken cookie; both land in the client's jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return appErrors.Clone(appErrors.ErrValidation, "username and password are required")
	}
	return c.sendJSON(ctx, http.MethodPost, "/auth/login/", loginRequest{Username: username, Password: password}, nil)
}

// Logout clears the backend session. Local cookies are left to expire.
func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

// Me returns the authenticated account. Some backend versions answer HTTP 200
// with a {"detail": ...} body instead of 401, so that shape is normalised to
// an authentication failure too.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var payload struct {
		models.User
		Detail string `json:"detail"`
	}
	if err := c.getJSON(ctx, "/auth/me/", &payload); err != nil {
		return nil, err
	}
	if payload.Detail != "" || payload.Username == "" {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	user := payload.User
	return &user, nil
}
