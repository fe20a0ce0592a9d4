package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrEmailInvalid        = errors.New("user: email is invalid")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrEmailAlreadyUsed    = errors.New("user: email is already registered")
	ErrNotFound            = errors.New("user: not found")
)

// ID identifies an account. Reports saved while signed in carry it as their
// owner.
type ID string

type User struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	// Save inserts or updates the user. It fails with ErrEmailAlreadyUsed
	// when another user holds the same email.
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	u := &User{
		ID:           ID(strings.TrimSpace(string(params.ID))),
		Email:        NormalizeEmail(params.Email),
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: params.PasswordHash,
	}
	if err := u.validate(); err != nil {
		return nil, err
	}
	created := params.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	u.CreatedAt = created.UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (u *User) validate() error {
	switch {
	case u.ID == "":
		return ErrIDRequired
	case u.Email == "":
		return ErrEmailRequired
	case !ValidEmail(u.Email):
		return ErrEmailInvalid
	case strings.TrimSpace(u.PasswordHash) == "":
		return ErrPasswordHashMissing
	case u.Name == "":
		return ErrNameRequired
	}
	return nil
}

// ReplacePasswordHash stores a new hash of the same password, e.g. after the
// hashing cost was raised.
func (u *User) ReplacePasswordHash(hash string, at time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	if at.IsZero() {
		at = time.Now()
	}
	u.PasswordHash = hash
	u.UpdatedAt = at.UTC()
	return nil
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail checks shape only: a single address with text on both sides of
// the last @ and no whitespace.
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
