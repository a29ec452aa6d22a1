package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/sandbox"
)

var loadingTexts = []string{
	"Connecting to remote...",
	"Downloading manifest...",
	"Downloading repository...",
}

// LoadingStage is the state of the connection splash
type LoadingStage struct {
	Step     int    `json:"step"`
	Text     string `json:"text"`
	Progress int    `json:"progress"`
	Done     bool   `json:"done"`
}

func loadingStage(step int, done bool) LoadingStage {
	return LoadingStage{
		Step:     step,
		Text:     loadingTexts[step],
		Progress: step * 100 / (len(loadingTexts) - 1),
		Done:     done,
	}
}

// LoadingSchedule holds the splash transition times, measured from Connect
type LoadingSchedule struct {
	Manifest   time.Duration
	Repository time.Duration
	Ready      time.Duration
}

// DefaultLoadingSchedule returns the 500/750/1300 ms splash
func DefaultLoadingSchedule() LoadingSchedule {
	return LoadingSchedule{
		Manifest:   500 * time.Millisecond,
		Repository: 750 * time.Millisecond,
		Ready:      1300 * time.Millisecond,
	}
}

type config struct {
	logger      *zap.Logger
	observer    Observer
	sandbox     sandbox.Config
	pool        *sandbox.Pool
	loading     LoadingSchedule
	crashSeed   *int64
	eventBuffer int
	idleTTL     time.Duration
}

func defaultConfig() config {
	return config{
		logger:   zap.NewNop(),
		observer: nopObserver{},
		sandbox:  sandbox.DefaultConfig(),
		loading:  DefaultLoadingSchedule(),
	}
}

// Option configures sessions
type Option func(*config)

// WithLogger sets the base logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver reports session activity, typically to metrics
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithSandbox sets the script window configuration and runtime pool
func WithSandbox(cfg sandbox.Config, pool *sandbox.Pool) Option {
	return func(c *config) {
		c.sandbox = cfg
		c.pool = pool
	}
}

// WithLoadingSchedule overrides the splash timings
func WithLoadingSchedule(s LoadingSchedule) Option {
	return func(c *config) { c.loading = s }
}

// WithCrashSeed makes crash selection reproducible
func WithCrashSeed(seed int64) Option {
	return func(c *config) { c.crashSeed = &seed }
}

// WithEventBuffer sets the per-subscriber event buffer
func WithEventBuffer(n int) Option {
	return func(c *config) { c.eventBuffer = n }
}

// WithIdleTTL makes the manager close sessions nobody has looked up or
// streamed for ttl. Zero keeps sessions until they are closed.
func WithIdleTTL(ttl time.Duration) Option {
	return func(c *config) { c.idleTTL = ttl }
}
