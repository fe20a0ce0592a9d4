package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"healthtrack/internal/app/services/auth"
	domainauth "healthtrack/internal/domain/auth"
	domainreports "healthtrack/internal/domain/reports"
)

const (
	principalContextKey = "healthtrack.principal"
	SessionCookieName   = "healthtrack_session"
)

type principal struct {
	ID        string
	Email     string
	Name      string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthMiddleware attaches the signed-in user, if any, to the request. A
// bearer token wins over the session cookie. Requests without a valid
// session continue as guests.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := requestToken(c)
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	user := resolved.User
	setPrincipal(c, principal{
		ID:        string(user.ID),
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		CreatedAt: user.CreatedAt,
		ExpiresAt: resolved.Session.ExpiresAt,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// ownerOf is the report scope of the request: the signed-in user, or guest.
func ownerOf(c *gin.Context) domainreports.Owner {
	if p, ok := currentPrincipal(c); ok {
		return domainreports.Owner(p.ID)
	}
	return domainreports.Guest
}

func requireUser(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func requestToken(c *gin.Context) string {
	if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// SessionCookie writes and clears the HttpOnly cookie that carries the
// session token for browser clients.
type SessionCookie struct {
	Secure bool
	TTL    time.Duration
}

func (s SessionCookie) set(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if expires.IsZero() {
		maxAge = int(s.ttl().Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", s.Secure, true)
}

func (s SessionCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.Secure, true)
}

func (s SessionCookie) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}
