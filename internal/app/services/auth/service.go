package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainauth "healthtrack/internal/domain/auth"
	domainreports "healthtrack/internal/domain/reports"
	domainuser "healthtrack/internal/domain/user"
)

const (
	MinPasswordLength = 8
	DefaultSessionTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Rehasher is implemented by hashers whose parameters can change between
// deployments. Login upgrades stale hashes through it.
type Rehasher interface {
	NeedsRehash(hash string) bool
}

type TokenGenerator interface {
	NewToken() (domainauth.Token, error)
}

// Service registers accounts and issues the session tokens that scope report
// access to their owner.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User    *domainuser.User
	Token   string
	Expires time.Time
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

// Owner is the report scope of an authenticated user; nil means guest.
func Owner(u *domainuser.User) domainreports.Owner {
	if u == nil {
		return domainreports.Guest
	}
	return domainreports.Owner(u.ID)
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	switch {
	case email == "":
		return nil, domainuser.ErrEmailRequired
	case strings.TrimSpace(params.Name) == "":
		return nil, domainuser.ErrNameRequired
	case utf8.RuneCountInString(params.Password) < MinPasswordLength:
		return nil, ErrPasswordTooShort
	}
	switch _, err := s.Users.ByEmail(ctx, email); {
	case err == nil:
		return nil, domainuser.ErrEmailAlreadyUsed
	case !errors.Is(err, domainuser.ErrNotFound):
		return nil, err
	}

	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         params.Name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logInfo("user registered", user)
	return s.issueSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	user, err := s.authenticate(ctx, params)
	if err != nil {
		return nil, err
	}
	s.upgradeHash(ctx, user, params.Password)
	s.logInfo("user authenticated", user)
	return s.issueSession(ctx, user)
}

// Logout ends the session. Unknown or empty tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	tok := normalizeToken(token)
	if tok == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, tok)
}

// ResolveToken maps a bearer or cookie token to its user. A session whose
// user has disappeared is dropped and reported as not found.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	tok := normalizeToken(token)
	if tok == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, tok)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	switch {
	case err == nil:
		return &ResolveResult{User: user, Session: session}, nil
	case errors.Is(err, domainuser.ErrNotFound):
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	default:
		return nil, err
	}
}

func (s *Service) authenticate(ctx context.Context, params LoginParams) (*domainuser.User, error) {
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if s.Passwords.Compare(user.PasswordHash, params.Password) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// upgradeHash re-hashes the password when the hasher's cost changed since
// the stored hash was made. Failures leave the old hash in place.
func (s *Service) upgradeHash(ctx context.Context, user *domainuser.User, password string) {
	rh, ok := s.Passwords.(Rehasher)
	if !ok || !rh.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.Passwords.Hash(password)
	if err == nil {
		err = user.ReplacePasswordHash(hash, s.now())
	}
	if err == nil {
		err = s.Users.Save(ctx, user)
	}
	if err != nil && s.Logger != nil {
		s.Logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
	}
}

func (s *Service) issueSession(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  token,
		UserID: user.ID,
		TTL:    ttl,
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: string(session.Token), Expires: session.ExpiresAt}, nil
}

func (s *Service) logInfo(msg string, user *domainuser.User) {
	if s.Logger != nil {
		s.Logger.Info(msg, "user_id", user.ID)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeToken(raw string) domainauth.Token {
	return domainauth.Token(strings.TrimSpace(raw))
}

func (s *Service) ensureDependencies() error {
	var missing string
	switch {
	case s.Users == nil:
		missing = "user repository"
	case s.Sessions == nil:
		missing = "session store"
	case s.Passwords == nil:
		missing = "password hasher"
	case s.Tokens == nil:
		missing = "token generator"
	default:
		return nil
	}
	return errors.New("auth: " + missing + " required")
}
