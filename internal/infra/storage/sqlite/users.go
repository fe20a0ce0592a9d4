package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domainauth "healthtrack/internal/domain/auth"
	domainuser "healthtrack/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE id = ?`, string(id))
	return scanUser(row)
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE email = ?`,
		domainuser.NormalizeEmail(email))
	return scanUser(row)
}

func (r *UserRepository) Save(ctx context.Context, user *domainuser.User) error {
	if user == nil || strings.TrimSpace(string(user.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	email := domainuser.NormalizeEmail(user.Email)
	if email == "" {
		return domainuser.ErrEmailRequired
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var holder string
	err := r.store.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&holder)
	switch {
	case err == nil && holder != string(user.ID):
		return domainuser.ErrEmailAlreadyUsed
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("sqlite: lookup email: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx, `INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at`,
		string(user.ID), email, user.Name, user.PasswordHash,
		user.CreatedAt.UTC().Format(timeLayout), user.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("sqlite: save user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domainuser.User, error) {
	var (
		u                    domainuser.User
		id                   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainuser.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: scan user: %w", err)
	}
	u.ID = domainuser.ID(id)
	var err error
	if u.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("sqlite: user created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("sqlite: user updated_at: %w", err)
	}
	return &u, nil
}

// SessionStore persists login sessions next to the accounts they belong to.
type SessionStore struct {
	store *Store
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	_, err := s.store.db.ExecContext(ctx, `INSERT OR REPLACE INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		string(session.Token), string(session.UserID),
		session.CreatedAt.UTC().Format(timeLayout), session.ExpiresAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("sqlite: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var (
		session              domainauth.Session
		tok, userID          string
		createdAt, expiresAt string
	)
	err := s.store.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`, string(token)).
		Scan(&tok, &userID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainauth.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get session: %w", err)
	}
	session.Token = domainauth.Token(tok)
	session.UserID = domainuser.ID(userID)
	if session.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("sqlite: session created_at: %w", err)
	}
	if session.ExpiresAt, err = time.Parse(timeLayout, expiresAt); err != nil {
		return nil, fmt.Errorf("sqlite: session expires_at: %w", err)
	}
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, string(token)); err != nil {
		return fmt.Errorf("sqlite: delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, string(userID)); err != nil {
		return fmt.Errorf("sqlite: delete sessions: %w", err)
	}
	return nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
