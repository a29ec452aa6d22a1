package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/dmrgn/portfolio/backend/internal/api/http"
	"github.com/dmrgn/portfolio/backend/internal/api/middleware"
	"github.com/dmrgn/portfolio/backend/internal/api/ws"
	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/domain/portfolio"
	"github.com/dmrgn/portfolio/backend/internal/domain/sandbox"
	"github.com/dmrgn/portfolio/backend/internal/domain/session"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/config"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/logging"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/monitoring"
	"github.com/dmrgn/portfolio/backend/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	sessions *session.Manager
	catalog  *manifest.Catalog
	pool     *sandbox.Pool
	watcher  *portfolio.Watcher
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	stop     chan struct{}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing portfolio server",
		zap.String("port", cfg.Server.Port),
		zap.String("data_dir", cfg.Data.Dir),
		zap.Int("session_max", cfg.Session.Max),
	)

	// Initialize metrics first (needed by other components)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)
	stop := make(chan struct{})
	go metrics.RunUptime(stop)

	tracer := tracing.New("portfolio", logger.Logger)

	ds, err := loadDataset(cfg.Data.Dir)
	if err != nil {
		close(stop)
		tracer.Close()
		return nil, err
	}
	catalog := manifest.NewCatalog(ds, logger.Named("catalog"))
	logger.Info("Dataset loaded",
		zap.Int("projects", len(ds.Projects)),
		zap.Int("companies", len(ds.Companies)),
	)

	var watcher *portfolio.Watcher
	if cfg.Data.Watch && cfg.Data.Dir != "" {
		watcher, err = portfolio.NewWatcher(cfg.Data.Dir, logger.Logger, func(next *portfolio.Dataset) {
			catalog.Reload(next)
			metrics.IncDataReloads()
		})
		if err != nil {
			logger.Warn("Dataset watching disabled", zap.Error(err))
		}
	}

	sbConfig := sandbox.Config{
		FPS:            cfg.Sandbox.FPS,
		TickTimeout:    cfg.Sandbox.TickTimeout,
		CompileTimeout: cfg.Sandbox.CompileTimeout,
		EnableConsole:  true,
		EnableDOM:      true,
	}
	var pool *sandbox.Pool
	if cfg.Sandbox.PoolSize > 0 {
		pool, err = sandbox.NewPool(sbConfig, cfg.Sandbox.PoolSize)
		if err != nil {
			logger.Warn("Script runtime pool disabled", zap.Error(err))
			pool = nil
		}
	}

	sessions := session.NewManager(catalog, cfg.Session.Max,
		session.WithLogger(logger.Named("session")),
		session.WithObserver(metrics),
		session.WithSandbox(sbConfig, pool),
		session.WithIdleTTL(cfg.Session.IdleTTL),
	)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := httpapi.NewHandlers(sessions, catalog, metrics, logger.Logger)
	wsHandler := ws.NewHandler(sessions, metrics, logger.Logger, cfg.Server.CORSOrigins)

	// Register routes
	handlers.Register(router)
	router.GET("/sessions/:id/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           compress(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:   router,
		http:     httpServer,
		sessions: sessions,
		catalog:  catalog,
		pool:     pool,
		watcher:  watcher,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		stop:     stop,
	}, nil
}

func loadDataset(dir string) (*portfolio.Dataset, error) {
	if dir == "" {
		ds, err := portfolio.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded dataset: %w", err)
		}
		return ds, nil
	}
	ds, err := portfolio.Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", dir, err)
	}
	return ds, nil
}

// compress gzips responses except WebSocket upgrades, which need the raw
// connection
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}

	s.sessions.Shutdown()
	s.logger.Info("Closed sessions", zap.Uint64("served", s.sessions.Stats().Created))

	if s.watcher != nil {
		if werr := s.watcher.Close(); werr != nil {
			s.logger.Warn("Failed to close dataset watcher", zap.Error(werr))
		}
	}
	if s.pool != nil {
		if perr := s.pool.Close(); perr != nil {
			s.logger.Warn("Failed to close script runtime pool", zap.Error(perr))
		}
	}

	close(s.stop)
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()
	return err
}
