package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/domain/session"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/monitoring"
	"github.com/dmrgn/portfolio/backend/internal/shared/utils"
)

// Version is reported by the status endpoint
const Version = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions *session.Manager
	catalog  *manifest.Catalog
	metrics  *monitoring.Metrics
	hasher   *utils.Hasher
	log      *zap.Logger
	started  time.Time
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(
	sessions *session.Manager,
	catalog *manifest.Catalog,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		sessions: sessions,
		catalog:  catalog,
		metrics:  metrics,
		hasher:   utils.DefaultHasher(),
		log:      logger.Named("http"),
		started:  time.Now(),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/manifest", h.GetManifest)

	r.POST("/sessions", h.CreateSession)
	s := r.Group("/sessions/:id")
	{
		s.GET("", h.GetSession)
		s.DELETE("", h.CloseSession)
		s.POST("/connect", h.Connect)
		s.POST("/scroll-complete", h.ScrollComplete)
		s.POST("/continue", h.Continue)
		s.POST("/files/select", h.SelectFile)
		s.POST("/tabs/:tab/activate", h.ActivateTab)
		s.PUT("/tabs/:tab/content", h.EditTab)
		s.DELETE("/tabs/:tab", h.CloseTab)
		s.POST("/sandbox/start", h.StartSandbox)
		s.POST("/sandbox/stop", h.StopSandbox)
		s.POST("/sandbox/pointer", h.Pointer)
		s.GET("/storage/:key", h.GetStorage)
	}
}

// Root handles the status check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "portfolio",
		"version": Version,
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"sessions": h.sessions.Stats(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// GetManifest returns the file tree and content table for a viewer audience.
// Responses carry an ETag; a matching If-None-Match yields 304.
func (h *Handlers) GetManifest(c *gin.Context) {
	company := c.Query("type")
	if err := utils.ValidateID(company, "type", false); err != nil {
		h.fail(c, err)
		return
	}

	m := h.catalog.Get(company)
	etag, err := h.hasher.ETag(m)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, m)
}
