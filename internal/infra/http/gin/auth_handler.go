package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"healthtrack/internal/app/dto"
	authsvc "healthtrack/internal/app/services/auth"
	domainuser "healthtrack/internal/domain/user"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

// AuthHandler is the JSON face of the auth service. Successful register and
// login also set the session cookie so API and HTML clients share sessions.
type AuthHandler struct {
	Service *authsvc.Service
	Cookie  SessionCookie
	Logger  *slog.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	h.issue(c, http.StatusCreated, func(req credentialsRequest) (*authsvc.AuthResult, error) {
		return h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
		})
	})
}

func (h AuthHandler) Login(c *gin.Context) {
	h.issue(c, http.StatusOK, func(req credentialsRequest) (*authsvc.AuthResult, error) {
		return h.Service.Login(c.Request.Context(), authsvc.LoginParams{
			Email:    req.Email,
			Password: req.Password,
		})
	})
}

// issue binds the credentials body, runs op and hands the new session to the
// client both as JSON and as the session cookie.
func (h AuthHandler) issue(c *gin.Context, status int, op func(credentialsRequest) (*authsvc.AuthResult, error)) {
	if !h.available(c) {
		return
	}
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := op(req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	h.Cookie.set(c, result.Token, result.Expires)
	c.JSON(status, dto.NewAuthResponse(result.User, result.Token, result.Expires))
}

func (h AuthHandler) Logout(c *gin.Context) {
	if !h.available(c) {
		return
	}
	if err := h.Service.Logout(c.Request.Context(), requestToken(c)); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("logout failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	h.Cookie.clear(c)
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{
		User:    dto.UserProfile{ID: p.ID, Email: p.Email, Name: p.Name, CreatedAt: p.CreatedAt},
		Session: dto.Session{ExpiresAt: p.ExpiresAt},
	})
}

func (h AuthHandler) available(c *gin.Context) bool {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return false
	}
	return true
}

func (h AuthHandler) respondAuthError(c *gin.Context, err error) {
	status := authErrorStatus(err)
	if status == http.StatusInternalServerError {
		if h.Logger != nil {
			h.Logger.Error("auth operation failed", "error", err)
		}
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func authErrorStatus(err error) int {
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domainuser.ErrEmailAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, authsvc.ErrPasswordTooShort),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrEmailInvalid),
		errors.Is(err, domainuser.ErrNameRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var _ AuthHTTP = AuthHandler{}
