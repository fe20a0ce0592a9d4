package dto

import (
	"time"

	domainuser "healthtrack/internal/domain/user"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Session describes the caller's current session. Token is only returned
// when a session is issued.
type Session struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthResponse struct {
	User UserProfile `json:"user"`
	Session
}

type MeResponse struct {
	User    UserProfile `json:"user"`
	Session Session     `json:"session"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	if u == nil {
		return UserProfile{}
	}
	return UserProfile{ID: string(u.ID), Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func NewAuthResponse(u *domainuser.User, token string, expires time.Time) AuthResponse {
	return AuthResponse{
		User:    MapUserProfile(u),
		Session: Session{Token: token, ExpiresAt: expires.UTC()},
	}
}
