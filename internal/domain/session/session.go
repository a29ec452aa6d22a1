package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/crash"
	"github.com/dmrgn/portfolio/backend/internal/domain/editor"
	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/domain/sandbox"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

// CrashTrigger is the landing page element whose scroll-in fires the crash
const CrashTrigger = "language-chart"

var (
	ErrNoCrash     = errors.New("no crash has happened yet")
	ErrNoActiveTab = errors.New("no active tab")
	ErrLandingMode = errors.New("code editor is not open")
	ErrClosed      = errors.New("session closed")
	ErrNotScript   = errors.New("tab content is not a script")
	ErrEmptyPath   = errors.New("empty file path")
)

// Mode is the top-level view; it only ever moves from landing to code-editor
type Mode string

const (
	ModeLanding    Mode = "landing"
	ModeCodeEditor Mode = "code-editor"
)

// Observer receives counters for metrics
type Observer interface {
	SessionOpened()
	SessionClosed()
	TabOpened()
	CrashTriggered()
	SandboxStarted()
	SandboxStopped()
	FrameDrawn()
	SandboxFailed(kind string)
}

type nopObserver struct{}

func (nopObserver) SessionOpened()       {}
func (nopObserver) SessionClosed()       {}
func (nopObserver) TabOpened()           {}
func (nopObserver) CrashTriggered()      {}
func (nopObserver) SandboxStarted()      {}
func (nopObserver) SandboxStopped()      {}
func (nopObserver) FrameDrawn()          {}
func (nopObserver) SandboxFailed(string) {}

// Window describes the floating script window
type Window struct {
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
	Cursor    string  `json:"cursor"`
	Running   bool    `json:"running"`
	Mounted   bool    `json:"mounted"`
	SandboxID string  `json:"sandboxId,omitempty"`
	Frames    uint64  `json:"frames"`
	Error     string  `json:"error,omitempty"`
}

// PointerEvent is a pointer or mouse event aimed at the script window
type PointerEvent struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Target string  `json:"target,omitempty"` // "canvas" or "chrome"
}

// View is a point-in-time snapshot of a session
type View struct {
	ID        id.SessionID  `json:"id"`
	Group     string        `json:"group,omitempty"`
	Mode      Mode          `json:"mode"`
	Crash     *crash.Record `json:"crash,omitempty"`
	Loading   *LoadingStage `json:"loading,omitempty"`
	Tabs      []editor.Tab  `json:"tabs"`
	ActiveTab id.TabID      `json:"activeTab,omitempty"`
	Window    Window        `json:"window"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Session is one visit to the portfolio
type Session struct {
	id        id.SessionID
	created   time.Time
	manifest  *manifest.Manifest
	crash     *crash.Simulator
	tabs      *editor.Manager
	sandboxes *sandbox.Registry
	dom       *sandbox.DOM
	chrome    *sandbox.Element
	storage   *Storage
	events    *Broker
	observer  Observer
	schedule  LoadingSchedule
	log       *zap.Logger

	run sync.Mutex // serialises script window start/stop

	lastActive atomic.Int64 // unix nanos of the last lookup

	mu         sync.RWMutex
	mode       Mode
	loading    *LoadingStage
	timers     []*time.Timer
	sandboxTab id.TabID
	closed     bool
}

// New creates a session on the landing page showing m
func New(m *manifest.Manifest, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		id:       id.NewSessionID(),
		created:  time.Now(),
		manifest: m,
		dom:      sandbox.NewDOM(),
		storage:  NewStorage(),
		events:   NewBroker(cfg.eventBuffer),
		observer: cfg.observer,
		schedule: cfg.loading,
		mode:     ModeLanding,
	}
	s.log = cfg.logger.With(zap.String("session_id", s.id.String()))
	s.touch()

	crashOpts := []crash.Option{crash.WithPublisher(s.onCrash)}
	if cfg.crashSeed != nil {
		crashOpts = append(crashOpts, crash.WithSource(rand.NewSource(*cfg.crashSeed)))
	}
	s.crash = crash.NewSimulator(crashOpts...)

	s.tabs = editor.NewManager(m, editor.WithActiveChange(s.onActiveChange))

	s.chrome = sandbox.NewElement("div")
	s.chrome.ID = "scripted-window"
	s.chrome.MoveTo(0, 0)
	s.dom.Root().AppendChild(s.chrome)

	s.sandboxes = sandbox.NewRegistry(sandbox.Options{
		Config:       cfg.sandbox,
		Pool:         cfg.pool,
		DOM:          s.dom,
		Logger:       s.log.Named("sandbox"),
		OnFrame:      s.onFrame,
		OnDiagnostic: s.onDiagnostic,
	})

	return s
}

// ID returns the session identifier
func (s *Session) ID() id.SessionID { return s.id }

// LastActive returns when the session was last looked up
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// idle reports whether nobody has used or watched the session for ttl
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	if s.events.Subscribers() > 0 {
		return false
	}
	return now.Sub(s.LastActive()) >= ttl
}

// Manifest returns the file tree and content table of this visit
func (s *Session) Manifest() *manifest.Manifest { return s.manifest }

// Storage returns the per-session key/value store
func (s *Session) Storage() *Storage { return s.storage }

// Subscribe streams session events until cancel is called or the session closes
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// Mode returns the current view mode
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// ScrollComplete reports that a landing element finished scrolling into
// view. Only CrashTrigger can fire the crash, and only once.
func (s *Session) ScrollComplete(element string) (crash.Record, bool) {
	if element != CrashTrigger {
		return crash.Record{}, false
	}
	if s.isClosed() {
		return crash.Record{}, false
	}
	return s.crash.MaybeTrigger()
}

// Continue leaves the crash screen for the code editor. It opens the README
// tab and starts the loading splash. Continuing twice is a no-op.
func (s *Session) Continue() error {
	if !s.crash.HasCrashed() {
		return ErrNoCrash
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.mode == ModeCodeEditor {
		s.mu.Unlock()
		return nil
	}
	s.mode = ModeCodeEditor
	s.mu.Unlock()

	s.log.Info("entered code editor")
	s.publish(EventMode, ModeCodeEditor)

	if _, created := s.tabs.SelectFile(manifest.ReadmePath); created {
		s.observer.TabOpened()
	}
	s.publishTabs()

	return s.Connect()
}

// Connect plays the loading splash once. Later calls are no-ops.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.mode != ModeCodeEditor {
		return ErrLandingMode
	}
	if s.loading != nil {
		return nil
	}

	stage := loadingStage(0, false)
	s.loading = &stage
	s.events.Publish(s.event(EventLoading, stage))

	steps := []struct {
		after time.Duration
		stage LoadingStage
	}{
		{s.schedule.Manifest, loadingStage(1, false)},
		{s.schedule.Repository, loadingStage(2, false)},
		{s.schedule.Ready, loadingStage(2, true)},
	}
	for _, step := range steps {
		next := step.stage
		s.timers = append(s.timers, time.AfterFunc(step.after, func() {
			s.advanceLoading(next)
		}))
	}
	return nil
}

func (s *Session) advanceLoading(stage LoadingStage) {
	s.mu.Lock()
	if s.closed || (s.loading != nil && s.loading.Done) {
		s.mu.Unlock()
		return
	}
	s.loading = &stage
	s.mu.Unlock()

	s.publish(EventLoading, stage)
}

// Loading returns the splash state, or nil before Connect
func (s *Session) Loading() *LoadingStage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loading == nil {
		return nil
	}
	stage := *s.loading
	return &stage
}

// SelectFile focuses or opens the tab for p
func (s *Session) SelectFile(p string) (editor.Tab, error) {
	if err := s.requireEditor(); err != nil {
		return editor.Tab{}, err
	}
	if p == "" {
		return editor.Tab{}, ErrEmptyPath
	}

	tab, created := s.tabs.SelectFile(p)
	if created {
		s.observer.TabOpened()
	}
	s.publishTabs()
	return tab, nil
}

// ActivateTab focuses an open tab
func (s *Session) ActivateTab(tabID id.TabID) error {
	if err := s.requireEditor(); err != nil {
		return err
	}
	if err := s.tabs.Activate(tabID); err != nil {
		return err
	}
	s.publishTabs()
	return nil
}

// EditTab replaces the working copy of a text tab
func (s *Session) EditTab(tabID id.TabID, text string) (editor.Tab, error) {
	if err := s.requireEditor(); err != nil {
		return editor.Tab{}, err
	}
	tab, err := s.tabs.EditContent(tabID, text)
	if err != nil {
		return editor.Tab{}, err
	}
	s.publishTabs()
	return tab, nil
}

// CloseTab closes a tab and stops the script window it was running
func (s *Session) CloseTab(tabID id.TabID) error {
	if err := s.requireEditor(); err != nil {
		return err
	}
	if err := s.tabs.CloseTab(tabID); err != nil {
		return err
	}

	s.stopSandboxWhen(func(running id.TabID) bool { return running == tabID })

	s.publishTabs()
	return nil
}

// Tabs returns the open tabs and the active tab ID
func (s *Session) Tabs() ([]editor.Tab, id.TabID) {
	return s.tabs.Tabs(), s.tabs.Stats().ActiveID
}

// StartSandbox runs the active tab's working copy in the script window,
// replacing any running script. Script failures surface as diagnostic
// events, not as errors.
func (s *Session) StartSandbox() (Window, error) {
	if err := s.requireEditor(); err != nil {
		return Window{}, err
	}

	// The active tab is read under s.run so a concurrent switch either
	// lands first or waits to stop this script.
	s.run.Lock()
	defer s.run.Unlock()

	tab, ok := s.tabs.Active()
	if !ok {
		return Window{}, ErrNoActiveTab
	}
	if !tab.Content.IsText() {
		return Window{}, fmt.Errorf("run %s: %w", tab.Path, ErrNotScript)
	}

	s.stopSandboxLocked()
	sb := s.sandboxes.Start(s.chrome, tab.Content.Text)

	s.mu.Lock()
	s.sandboxTab = tab.ID
	s.mu.Unlock()

	s.observer.SandboxStarted()
	s.log.Info("script window started",
		zap.String("sandbox_id", sb.ID().String()),
		zap.String("path", tab.Path))

	w := s.Window()
	s.publish(EventWindow, w)
	return w, nil
}

// StopSandbox stops the script window; false when nothing was running
func (s *Session) StopSandbox() bool {
	return s.stopSandbox()
}

func (s *Session) stopSandbox() bool {
	s.run.Lock()
	defer s.run.Unlock()
	return s.stopSandboxLocked()
}

// stopSandboxWhen stops the script window if match accepts the tab it runs for
func (s *Session) stopSandboxWhen(match func(running id.TabID) bool) bool {
	s.run.Lock()
	defer s.run.Unlock()

	s.mu.RLock()
	running := s.sandboxTab
	s.mu.RUnlock()
	if running == "" || !match(running) {
		return false
	}
	return s.stopSandboxLocked()
}

func (s *Session) stopSandboxLocked() bool {
	if !s.sandboxes.Stop() {
		return false
	}

	s.mu.Lock()
	s.sandboxTab = ""
	s.mu.Unlock()

	s.observer.SandboxStopped()
	s.publish(EventWindow, s.Window())
	return true
}

// Pointer delivers a pointer event to the script window
func (s *Session) Pointer(ev PointerEvent) (Window, error) {
	if err := s.requireEditor(); err != nil {
		return Window{}, err
	}

	target := s.chrome
	if ev.Target == "canvas" {
		if sb := s.sandboxes.Current(); sb != nil {
			target = sb.Canvas()
		}
	}
	target.Dispatch(&sandbox.Event{Type: ev.Type, ClientX: ev.X, ClientY: ev.Y})

	w := s.Window()
	s.publish(EventWindow, w)
	return w, nil
}

// Window describes the script window chrome and its running script
func (s *Session) Window() Window {
	left, top := s.chrome.Position()
	w := Window{
		Left:   left,
		Top:    top,
		Cursor: s.chrome.Style("cursor"),
	}
	if sb := s.sandboxes.Current(); sb != nil {
		w.Mounted = true
		w.Running = sb.Running()
		w.SandboxID = sb.ID().String()
		w.Frames = sb.Frames()
		if err := sb.Err(); err != nil {
			w.Error = err.Error()
		}
	}
	return w
}

// Snapshot returns the current state of the session
func (s *Session) Snapshot() View {
	tabs, active := s.Tabs()
	v := View{
		ID:        s.id,
		Group:     s.manifest.Group,
		Mode:      s.Mode(),
		Loading:   s.Loading(),
		Tabs:      tabs,
		ActiveTab: active,
		Window:    s.Window(),
		CreatedAt: s.created,
	}
	if r, ok := s.crash.Record(); ok {
		v.Crash = &r
	}
	return v
}

// Close stops the script window and pending splash timers and ends every
// subscription. It reports false when the session was already closed.
func (s *Session) Close() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.mu.Unlock()

	s.stopSandbox()
	s.events.Publish(s.event(EventClosed, nil))
	s.events.Close()
	return true
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) requireEditor() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if s.mode != ModeCodeEditor {
		return ErrLandingMode
	}
	return nil
}

func (s *Session) onCrash(r crash.Record) {
	s.observer.CrashTriggered()
	s.log.Info("fake crash triggered", zap.String("title", r.Title))
	s.publish(EventCrash, r)
}

// onActiveChange stops the script window whenever focus moves to another tab
func (s *Session) onActiveChange(prev, next id.TabID) {
	s.stopSandboxWhen(func(running id.TabID) bool { return running != next })
}

func (s *Session) onFrame(f sandbox.Frame) {
	s.observer.FrameDrawn()
	s.publish(EventFrame, f)
}

func (s *Session) onDiagnostic(d sandbox.Diagnostic) {
	if d.Kind != sandbox.DiagConsole {
		s.observer.SandboxFailed(string(d.Kind))
	}
	s.publish(EventDiagnostic, d)
}

func (s *Session) publishTabs() {
	tabs, active := s.Tabs()
	s.publish(EventTabs, map[string]interface{}{
		"tabs":      tabs,
		"activeTab": active,
	})
}

func (s *Session) publish(typ EventType, data interface{}) {
	s.events.Publish(s.event(typ, data))
}

func (s *Session) event(typ EventType, data interface{}) Event {
	return Event{
		Type:      typ,
		SessionID: s.id.String(),
		Time:      time.Now(),
		Data:      data,
	}
}
