package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/editor"
	"github.com/dmrgn/portfolio/backend/internal/domain/session"
	"github.com/dmrgn/portfolio/backend/internal/shared/utils"
)

// statusFor maps a domain error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, editor.ErrTabNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrInvalid),
		errors.Is(err, session.ErrEmptyPath):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoCrash),
		errors.Is(err, session.ErrLandingMode),
		errors.Is(err, session.ErrNoActiveTab),
		errors.Is(err, session.ErrNotScript),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, editor.ErrNotEditable):
		return http.StatusConflict
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request: " + err.Error(),
	})
}
