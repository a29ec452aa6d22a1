package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmrgn/portfolio/backend/internal/domain/session"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
	"github.com/dmrgn/portfolio/backend/internal/shared/utils"
)

// lookup resolves the :id parameter, writing the error response on failure
func (h *Handlers) lookup(c *gin.Context) (*session.Session, bool) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "session id", true); err != nil {
		h.fail(c, err)
		return nil, false
	}
	s, err := h.sessions.Get(id.SessionID(raw))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

func (h *Handlers) tabParam(c *gin.Context) (id.TabID, bool) {
	raw := c.Param("tab")
	if err := utils.ValidateID(raw, "tab id", true); err != nil {
		h.fail(c, err)
		return "", false
	}
	return id.TabID(raw), true
}

// CreateSession starts a visit on the landing page
func (h *Handlers) CreateSession(c *gin.Context) {
	company := c.Query("type")
	if err := utils.ValidateID(company, "type", false); err != nil {
		h.fail(c, err)
		return
	}

	s, err := h.sessions.Create(company)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": s.Snapshot(),
	})
}

// GetSession returns the current view of a session
func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": s.Snapshot(),
	})
}

// CloseSession ends a session
func (h *Handlers) CloseSession(c *gin.Context) {
	raw := c.Param("id")
	if err := utils.ValidateID(raw, "session id", true); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.sessions.Close(id.SessionID(raw)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Connect starts the loading splash
func (h *Handlers) Connect(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := s.Connect(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"loading": s.Loading(),
	})
}

// ScrollComplete reports a landing element scrolled into view
func (h *Handlers) ScrollComplete(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req struct {
		Element string `json:"element" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.Element, "element", 1, utils.MaxElementName, true); err != nil {
		h.fail(c, err)
		return
	}

	record, crashed := s.ScrollComplete(req.Element)
	body := gin.H{
		"success": true,
		"crashed": crashed,
	}
	if crashed {
		body["crash"] = record
	}
	c.JSON(http.StatusOK, body)
}

// Continue leaves the crash screen for the code editor
func (h *Handlers) Continue(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := s.Continue(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": s.Snapshot(),
	})
}

// SelectFile opens or focuses the tab for a path
func (h *Handlers) SelectFile(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidatePath(req.Path); err != nil {
		h.fail(c, err)
		return
	}

	tab, err := s.SelectFile(req.Path)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tab":     tab,
	})
}

// ActivateTab focuses an open tab
func (h *Handlers) ActivateTab(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	tabID, ok := h.tabParam(c)
	if !ok {
		return
	}
	if err := s.ActivateTab(tabID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"activeTab": tabID,
	})
}

// EditTab replaces the working copy of a text tab
func (h *Handlers) EditTab(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	tabID, ok := h.tabParam(c)
	if !ok {
		return
	}

	var req struct {
		Content *string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidateContent(*req.Content); err != nil {
		h.fail(c, err)
		return
	}

	tab, err := s.EditTab(tabID, *req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tab":     tab,
	})
}

// CloseTab closes an open tab
func (h *Handlers) CloseTab(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	tabID, ok := h.tabParam(c)
	if !ok {
		return
	}
	if err := s.CloseTab(tabID); err != nil {
		h.fail(c, err)
		return
	}

	tabs, active := s.Tabs()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"tabs":      tabs,
		"activeTab": active,
	})
}

// GetStorage reads a value from the session's key/value store
func (h *Handlers) GetStorage(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	key := c.Param("key")
	if err := utils.ValidateID(key, "key", true); err != nil {
		h.fail(c, err)
		return
	}

	value, found := s.Storage().Get(key)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "key not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     key,
		"value":   value,
	})
}
