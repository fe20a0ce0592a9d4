package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"healthtrack/internal/app/commands"
	reportsapp "healthtrack/internal/app/handlers/reports"
	"healthtrack/internal/app/queries"
	domainreports "healthtrack/internal/domain/reports"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainreports.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, domainreports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reportsapp.ErrArchiveUnavailable),
		errors.Is(err, reportsapp.ErrRepositoryRequired),
		errors.Is(err, commands.ErrHandlerNotFound),
		errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body. Internal errors are logged and
// their message withheld.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		if logger != nil {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
