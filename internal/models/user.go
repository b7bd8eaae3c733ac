package models

// User is the authenticated account returned by GET /api/auth/me/.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
