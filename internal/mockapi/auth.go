package mockapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/pkg/response"
)

const (
	sessionCookie = "sessionid"
	csrfCookie    = "csrftoken"
	csrfHeader    = "X-CSRFToken"

	contextUserKey = "currentUser"
)

// SessionManager issues and validates the session and CSRF cookies the real
// backend sets: an HTTP-only JWT session plus a readable csrftoken that
// clients echo back on state-changing requests.
type SessionManager struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager builds a session manager. TTL defaults to 12 hours.
func NewSessionManager(store *Store, secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// IssueCookies sets the session and CSRF cookies for a signed-in user.
func (m *SessionManager) IssueCookies(c *gin.Context, user models.User) error {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(m.now().Add(m.ttl)),
		},
		UserID: user.ID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	maxAge := int(m.ttl.Seconds())
	c.SetCookie(sessionCookie, token, maxAge, "/", "", false, true)
	c.SetCookie(csrfCookie, randomToken(), maxAge, "/", "", false, false)
	return nil
}

// ClearCookies expires both cookies.
func (m *SessionManager) ClearCookies(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(csrfCookie, "", -1, "/", "", false, false)
}

// CurrentUser resolves the session cookie back to an account.
func (m *SessionManager) CurrentUser(c *gin.Context) (models.User, bool) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		return models.User{}, false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return models.User{}, false
	}
	return m.store.UserByID(claims.UserID)
}

// RequireAuth blocks requests without a valid session.
func (m *SessionManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.CurrentUser(c)
		if !ok {
			response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CSRF enforces the double-submit check on unsafe methods: the X-CSRFToken
// header must match the csrftoken cookie. Requests without a session are
// exempt, matching session authentication semantics; the login POST itself
// is what first issues the cookies.
func (m *SessionManager) CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if session, err := c.Cookie(sessionCookie); err != nil || session == "" {
			c.Next()
			return
		}

		cookie, err := c.Cookie(csrfCookie)
		if err != nil || cookie == "" || c.GetHeader(csrfHeader) != cookie {
			response.Detail(c, http.StatusForbidden, "CSRF Failed: CSRF token missing or incorrect.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func randomToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "fallback-csrf-token"
	}
	return hex.EncodeToString(buf)
}
