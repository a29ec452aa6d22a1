package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmrgn/portfolio/backend/internal/domain/session"
	"github.com/dmrgn/portfolio/backend/internal/shared/utils"
)

// StartSandbox runs the active tab in the script window. A script that
// fails to compile or draw still returns 200; the failure is streamed as a
// diagnostic event.
func (h *Handlers) StartSandbox(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	w, err := s.StartSandbox()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"window":  w,
	})
}

// StopSandbox stops the script window
func (h *Handlers) StopSandbox(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	stopped := s.StopSandbox()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stopped": stopped,
		"window":  s.Window(),
	})
}

// Pointer delivers a pointer event to the script window
func (h *Handlers) Pointer(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req struct {
		Type   string  `json:"type" binding:"required,oneof=pointerdown pointermove pointerup mousedown mousemove mouseup"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Target string  `json:"target" binding:"omitempty,oneof=canvas chrome"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidateCoordinate(req.X, "x"); err != nil {
		h.fail(c, err)
		return
	}
	if err := utils.ValidateCoordinate(req.Y, "y"); err != nil {
		h.fail(c, err)
		return
	}

	w, err := s.Pointer(session.PointerEvent{
		Type:   req.Type,
		X:      req.X,
		Y:      req.Y,
		Target: req.Target,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"window":  w,
	})
}
