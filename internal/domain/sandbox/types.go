package sandbox

import (
	"errors"
	"time"
)

// Canvas dimensions of the mounted surface
const (
	CanvasWidth  = 200
	CanvasHeight = 200
)

var (
	// ErrNoDraw is reported when the instance has no callable draw
	ErrNoDraw = errors.New("no draw function was defined. E.g this.draw = (ctx) => { ... }")

	// ErrTickTimeout is reported when one draw call runs past its budget
	ErrTickTimeout = errors.New("draw exceeded tick timeout")

	// ErrCompileTimeout is reported when the constructor body never returns
	ErrCompileTimeout = errors.New("script setup exceeded compile timeout")

	errStopped = errors.New("sandbox stopped")
)

// Config defines sandbox configuration
type Config struct {
	FPS            int           // Draw calls per second
	TickTimeout    time.Duration // Budget for a single draw call
	CompileTimeout time.Duration // Budget for the constructor; zero falls back to TickTimeout
	EnableConsole  bool          // Capture console.log/warn/error
	EnableDOM      bool          // Expose document lookups on the pane
}

// Interval returns the tick period derived from FPS
func (c Config) Interval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FPS)
}

// CompileBudget returns how long the constructor may run
func (c Config) CompileBudget() time.Duration {
	if c.CompileTimeout > 0 {
		return c.CompileTimeout
	}
	return c.TickTimeout
}

// DefaultConfig returns the 30 Hz configuration
func DefaultConfig() Config {
	return Config{
		FPS:            30,
		TickTimeout:    250 * time.Millisecond,
		CompileTimeout: time.Second,
		EnableConsole:  true,
		EnableDOM:      true,
	}
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DiagnosticKind classifies a sandbox report
type DiagnosticKind string

const (
	DiagCompile DiagnosticKind = "compile"
	DiagNoDraw  DiagnosticKind = "no_draw"
	DiagDraw    DiagnosticKind = "draw"
	DiagTimeout DiagnosticKind = "timeout"
	DiagConsole DiagnosticKind = "console"
)

// Diagnostic is surfaced to the developer console channel
type Diagnostic struct {
	SandboxID string         `json:"sandboxId"`
	Kind      DiagnosticKind `json:"kind"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Time      time.Time      `json:"time"`
}

// Command is one recorded 2D context call or property assignment
type Command struct {
	Op   string        `json:"op"`
	Args []interface{} `json:"args,omitempty"`
}

// Frame holds the commands recorded by one draw call
type Frame struct {
	SandboxID string    `json:"sandboxId"`
	Seq       uint64    `json:"seq"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Commands  []Command `json:"commands"`
}
