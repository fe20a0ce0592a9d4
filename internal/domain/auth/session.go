package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthtrack/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is the opaque value carried by the bearer header or session cookie.
type Token string

type Session struct {
	Token     Token
	UserID    user.ID
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	tok := Token(strings.TrimSpace(string(params.Token)))
	switch {
	case tok == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(params.UserID)) == "":
		return nil, ErrUserRequired
	case params.TTL <= 0:
		return nil, ErrTTLInvalid
	}
	issued := orNow(params.Now)
	return &Session{
		Token:     tok,
		UserID:    params.UserID,
		CreatedAt: issued,
		ExpiresAt: issued.Add(params.TTL),
	}, nil
}

// Remaining is the lifetime left at the given instant, negative once past.
func (s *Session) Remaining(at time.Time) time.Duration {
	return s.ExpiresAt.Sub(orNow(at))
}

func (s *Session) Expired(at time.Time) bool {
	return s.Remaining(at) <= 0
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC()
}

// SessionStore keeps sessions by token. Get returns ErrSessionNotFound for
// unknown and expired tokens alike.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
