package sandbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

// Options configure a sandbox session.
// OnFrame and OnDiagnostic run on the loop goroutine while the loop lock is
// held; they must not call Stop.
type Options struct {
	Config       Config
	Pool         *Pool
	DOM          *DOM
	Logger       *zap.Logger
	OnFrame      func(Frame)
	OnDiagnostic func(Diagnostic)
}

// Session is one mounted canvas driven by a compiled script
type Session struct {
	id     id.SandboxID
	host   *Element
	canvas *Element
	drag   *Draggable
	opts   Options
	log    *zap.Logger

	rtMu     sync.Mutex // guards rt once the loop runs
	rt       *Runtime
	instance *goja.Object
	ctx2d    *goja.Object
	rec      *recorder
	ticker   *time.Ticker

	mu       sync.Mutex
	stopped  bool
	halted   bool
	err      error
	frames   uint64
	stopping atomic.Bool
	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// Start mounts a canvas on host, compiles source and begins the draw loop.
// Failures are reported through diagnostics; the returned session is
// always non-nil and must be stopped to unmount the canvas.
func Start(host *Element, source string, opts Options) *Session {
	if opts.Config.FPS == 0 && opts.Config.TickTimeout == 0 {
		if opts.Pool != nil {
			opts.Config = opts.Pool.Config()
		} else {
			opts.Config = DefaultConfig()
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Session{
		id:   id.NewSandboxID(),
		host: host,
		opts: opts,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.log = opts.Logger.With(zap.String("sandbox_id", s.id.String()))

	s.canvas = NewElement("canvas")
	s.canvas.SetAttribute("width", "200")
	s.canvas.SetAttribute("height", "200")
	s.canvas.AddEventListener("pointerdown", func(ev *Event) {
		ev.PreventDefault()
	})
	host.AppendChild(s.canvas)
	s.drag = BindDraggable(host)

	rt, err := s.acquire()
	if err != nil {
		s.abort(DiagCompile, err)
		return s
	}
	s.rt = rt

	if err := rt.InjectDOM(opts.DOM); err != nil {
		s.abort(DiagCompile, err)
		return s
	}

	instance, err := rt.Compile(source)
	s.flushConsole()
	if err != nil {
		kind := DiagCompile
		if errors.Is(err, ErrCompileTimeout) {
			kind = DiagTimeout
		}
		s.abort(kind, err)
		return s
	}
	s.instance = instance

	s.rec = newRecorder()
	s.ctx2d, err = newContext2D(rt.VM(), s.rec)
	if err != nil {
		s.abort(DiagCompile, err)
		return s
	}

	s.ticker = time.NewTicker(opts.Config.Interval())
	s.log.Debug("sandbox started", zap.Duration("interval", opts.Config.Interval()))
	go s.loop()
	return s
}

// abort reports a setup failure and gives the runtime back before the
// loop would have started
func (s *Session) abort(kind DiagnosticKind, err error) {
	s.fail(kind, err)
	s.releaseRuntime()
	close(s.done)
}

func (s *Session) acquire() (*Runtime, error) {
	if s.opts.Pool != nil {
		return s.opts.Pool.Acquire(context.Background())
	}
	return New(s.opts.Config)
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case <-s.ticker.C:
			if !s.tick() {
				if s.isHalted() {
					s.releaseRuntime()
				}
				return
			}
		}
	}
}

// tick runs one draw call; false ends the loop
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.stopping.Load() {
		return false
	}

	err := s.rt.Draw(s.instance, s.ctx2d)
	s.flushConsole()
	commands := s.rec.take()

	if err != nil {
		if s.stopping.Load() || errors.Is(err, errStopped) {
			return false
		}
		s.ticker.Stop()
		s.halted = true
		switch {
		case errors.Is(err, ErrNoDraw):
			s.fail(DiagNoDraw, err)
		case errors.Is(err, ErrTickTimeout):
			s.fail(DiagTimeout, err)
		default:
			s.fail(DiagDraw, err)
		}
		return false
	}

	s.frames++
	if s.opts.OnFrame != nil {
		s.opts.OnFrame(Frame{
			SandboxID: s.id.String(),
			Seq:       s.frames,
			Width:     CanvasWidth,
			Height:    CanvasHeight,
			Commands:  commands,
		})
	}
	return true
}

func (s *Session) isHalted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

// releaseRuntime returns the runtime to the pool, or closes it. Later calls
// are no-ops.
func (s *Session) releaseRuntime() {
	s.rtMu.Lock()
	rt := s.rt
	s.rt = nil
	s.rtMu.Unlock()
	if rt == nil {
		return
	}

	if s.opts.Pool != nil {
		if err := s.opts.Pool.Release(rt); err != nil {
			s.log.Warn("failed to release runtime", zap.Error(err))
		}
		return
	}
	rt.Close()
}

func (s *Session) fail(kind DiagnosticKind, err error) {
	if s.err == nil {
		s.err = err
	}
	s.log.Warn("sandbox script failed", zap.String("kind", string(kind)), zap.Error(err))
	s.report(Diagnostic{
		SandboxID: s.id.String(),
		Kind:      kind,
		Level:     "error",
		Message:   err.Error(),
		Time:      time.Now(),
	})
}

func (s *Session) flushConsole() {
	s.rtMu.Lock()
	rt := s.rt
	s.rtMu.Unlock()
	if rt == nil {
		return
	}
	for _, entry := range rt.DrainConsole() {
		s.report(Diagnostic{
			SandboxID: s.id.String(),
			Kind:      DiagConsole,
			Level:     entry.Level,
			Message:   entry.Message,
			Time:      entry.Time,
		})
	}
}

func (s *Session) report(d Diagnostic) {
	if s.opts.OnDiagnostic != nil {
		s.opts.OnDiagnostic(d)
	}
}

// Stop ends the loop and unmounts the canvas. It is safe to call more than
// once and no draw runs after it returns.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.stopping.Store(true)
		s.rtMu.Lock()
		if s.rt != nil {
			s.rt.Interrupt(errStopped)
		}
		s.rtMu.Unlock()

		s.mu.Lock()
		s.stopped = true
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.quit)
		s.mu.Unlock()

		<-s.done

		s.host.RemoveChild(s.canvas)
		s.drag.Unbind()

		s.releaseRuntime()
		s.log.Debug("sandbox stopped", zap.Uint64("frames", s.Frames()))
	})
}

// ID returns the sandbox identifier
func (s *Session) ID() id.SandboxID { return s.id }

// Canvas returns the mounted canvas element
func (s *Session) Canvas() *Element { return s.canvas }

// Done is closed when the draw loop has exited
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the first compile or draw failure
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Running reports whether the draw loop is still scheduled
func (s *Session) Running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Frames returns how many draw calls completed
func (s *Session) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
