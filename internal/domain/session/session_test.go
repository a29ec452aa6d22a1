package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrgn/portfolio/backend/internal/domain/crash"
	"github.com/dmrgn/portfolio/backend/internal/domain/editor"
	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/domain/portfolio"
	"github.com/dmrgn/portfolio/backend/internal/domain/sandbox"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

const scriptPath = "src/window.js"

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	ds, err := portfolio.Default()
	require.NoError(t, err)
	return manifest.Build(ds, &manifest.Filter{CompanyID: "nvidia"})
}

func fastSchedule() LoadingSchedule {
	return LoadingSchedule{
		Manifest:   5 * time.Millisecond,
		Repository: 10 * time.Millisecond,
		Ready:      15 * time.Millisecond,
	}
}

func testOptions(extra ...Option) []Option {
	opts := []Option{
		WithLoadingSchedule(fastSchedule()),
		WithSandbox(sandbox.Config{FPS: 200, TickTimeout: 200 * time.Millisecond, EnableConsole: true, EnableDOM: true}, nil),
		WithCrashSeed(7),
	}
	return append(opts, extra...)
}

func newSession(t *testing.T, extra ...Option) *Session {
	t.Helper()
	s := New(testManifest(t), testOptions(extra...)...)
	t.Cleanup(func() { s.Close() })
	return s
}

// editorSession returns a session already past the crash screen
func editorSession(t *testing.T, extra ...Option) *Session {
	t.Helper()
	s := newSession(t, extra...)
	_, fired := s.ScrollComplete(CrashTrigger)
	require.True(t, fired)
	require.NoError(t, s.Continue())
	return s
}

func nextEvent(t *testing.T, ch <-chan Event, typ EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "stream closed while waiting for %s", typ)
			if ev.Type == typ {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %s event", typ)
		}
	}
}

func TestScrollCompleteFiresOnlyForChart(t *testing.T) {
	s := newSession(t)
	events, cancel := s.Subscribe()
	defer cancel()

	_, fired := s.ScrollComplete("projects")
	assert.False(t, fired)

	first, fired := s.ScrollComplete(CrashTrigger)
	require.True(t, fired)
	assert.Contains(t, crash.Records, first)

	again, fired := s.ScrollComplete(CrashTrigger)
	assert.False(t, fired)
	assert.Equal(t, first, again)

	ev := nextEvent(t, events, EventCrash)
	assert.Equal(t, first, ev.Data)
	assert.Equal(t, s.ID().String(), ev.SessionID)
}

func TestContinueRequiresCrash(t *testing.T) {
	s := newSession(t)

	assert.ErrorIs(t, s.Continue(), ErrNoCrash)
	assert.Equal(t, ModeLanding, s.Mode())
	assert.ErrorIs(t, s.Connect(), ErrLandingMode)
}

func TestContinueOpensEditor(t *testing.T) {
	s := newSession(t)
	events, cancel := s.Subscribe()
	defer cancel()

	s.ScrollComplete(CrashTrigger)
	require.NoError(t, s.Continue())
	assert.Equal(t, ModeCodeEditor, s.Mode())

	tabs, active := s.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, manifest.ReadmePath, tabs[0].Path)
	assert.Equal(t, tabs[0].ID, active)
	assert.False(t, tabs[0].IsDirty)

	ev := nextEvent(t, events, EventMode)
	assert.Equal(t, ModeCodeEditor, ev.Data)

	// Continuing again changes nothing.
	require.NoError(t, s.Continue())
	tabs, _ = s.Tabs()
	assert.Len(t, tabs, 1)
	assert.Equal(t, ModeCodeEditor, s.Mode())
}

func TestLoadingSplash(t *testing.T) {
	s := newSession(t)
	events, cancel := s.Subscribe()
	defer cancel()

	assert.Nil(t, s.Loading())
	s.ScrollComplete(CrashTrigger)
	require.NoError(t, s.Continue())

	var stages []LoadingStage
	for len(stages) < 4 {
		stages = append(stages, nextEvent(t, events, EventLoading).Data.(LoadingStage))
	}

	assert.Equal(t, "Connecting to remote...", stages[0].Text)
	assert.Equal(t, 0, stages[0].Progress)
	assert.Equal(t, "Downloading manifest...", stages[1].Text)
	assert.Equal(t, 50, stages[1].Progress)
	assert.Equal(t, "Downloading repository...", stages[2].Text)
	assert.False(t, stages[2].Done)
	assert.True(t, stages[3].Done)
	assert.Equal(t, 100, stages[3].Progress)

	require.NotNil(t, s.Loading())
	assert.True(t, s.Loading().Done)

	// A second connect does not replay the splash.
	require.NoError(t, s.Connect())
	assert.True(t, s.Loading().Done)
}

func TestEditorRequiresCodeEditorMode(t *testing.T) {
	s := newSession(t)

	_, err := s.SelectFile(scriptPath)
	assert.ErrorIs(t, err, ErrLandingMode)
	_, err = s.StartSandbox()
	assert.ErrorIs(t, err, ErrLandingMode)
	_, err = s.Pointer(PointerEvent{Type: "pointerdown"})
	assert.ErrorIs(t, err, ErrLandingMode)
}

func TestTabFlow(t *testing.T) {
	s := editorSession(t)

	_, err := s.SelectFile("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	tab, err := s.SelectFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, "window.js", tab.Name)
	assert.Equal(t, "js", tab.Language)

	edited, err := s.EditTab(tab.ID, "this.draw = () => {}")
	require.NoError(t, err)
	assert.True(t, edited.IsDirty)

	tabs, _ := s.Tabs()
	readme := tabs[0]
	require.NoError(t, s.ActivateTab(readme.ID))
	_, err = s.EditTab(readme.ID, "x")
	assert.ErrorIs(t, err, editor.ErrNotEditable)

	require.NoError(t, s.CloseTab(readme.ID))
	_, active := s.Tabs()
	assert.Equal(t, tab.ID, active)
	assert.ErrorIs(t, s.CloseTab(readme.ID), editor.ErrTabNotFound)
}

func TestStartSandboxNeedsScriptTab(t *testing.T) {
	s := editorSession(t)

	_, err := s.StartSandbox()
	assert.ErrorIs(t, err, ErrNotScript, "README is rendered, not a script")

	tabs, _ := s.Tabs()
	require.NoError(t, s.CloseTab(tabs[0].ID))
	_, err = s.StartSandbox()
	assert.ErrorIs(t, err, ErrNoActiveTab)
}

func TestSandboxDrawsFrames(t *testing.T) {
	s := editorSession(t)
	events, cancel := s.Subscribe()
	defer cancel()

	_, err := s.SelectFile(scriptPath)
	require.NoError(t, err)

	w, err := s.StartSandbox()
	require.NoError(t, err)
	assert.True(t, w.Mounted)
	assert.NotEmpty(t, w.SandboxID)

	ev := nextEvent(t, events, EventFrame)
	frame := ev.Data.(sandbox.Frame)
	assert.Equal(t, w.SandboxID, frame.SandboxID)
	assert.NotEmpty(t, frame.Commands)

	assert.True(t, s.StopSandbox())
	assert.False(t, s.StopSandbox())
	assert.False(t, s.Window().Mounted)
}

func TestSandboxStopsOnTabSwitch(t *testing.T) {
	s := editorSession(t)
	script, err := s.SelectFile(scriptPath)
	require.NoError(t, err)

	_, err = s.StartSandbox()
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Window().Frames > 0 }, 2*time.Second, 5*time.Millisecond)

	// Re-selecting the running tab keeps the window alive.
	_, err = s.SelectFile(scriptPath)
	require.NoError(t, err)
	assert.True(t, s.Window().Mounted)

	_, err = s.SelectFile(manifest.ReadmePath)
	require.NoError(t, err)
	assert.False(t, s.Window().Mounted)

	require.NoError(t, s.ActivateTab(script.ID))
	_, err = s.StartSandbox()
	require.NoError(t, err)
	require.NoError(t, s.CloseTab(script.ID))
	assert.False(t, s.Window().Mounted)
}

func TestSandboxNeverOutlivesTabSwitch(t *testing.T) {
	s := editorSession(t)
	script, err := s.SelectFile(scriptPath)
	require.NoError(t, err)

	var readme id.TabID
	tabs, _ := s.Tabs()
	for _, tab := range tabs {
		if tab.Path == manifest.ReadmePath {
			readme = tab.ID
		}
	}
	require.NotEmpty(t, readme)

	for i := 0; i < 25; i++ {
		require.NoError(t, s.ActivateTab(script.ID))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.StartSandbox()
		}()
		go func() {
			defer wg.Done()
			_ = s.ActivateTab(readme)
		}()
		wg.Wait()

		s.mu.RLock()
		running := s.sandboxTab
		s.mu.RUnlock()
		if s.Window().Mounted {
			assert.Equal(t, s.tabs.Stats().ActiveID, running, "iteration %d", i)
		}
		s.StopSandbox()
	}
}

func TestEditedScriptWithoutDraw(t *testing.T) {
	s := editorSession(t)
	events, cancel := s.Subscribe()
	defer cancel()

	tab, err := s.SelectFile(scriptPath)
	require.NoError(t, err)
	_, err = s.EditTab(tab.ID, "this.speed = 3")
	require.NoError(t, err)

	_, err = s.StartSandbox()
	require.NoError(t, err, "script failures are diagnostics")

	ev := nextEvent(t, events, EventDiagnostic)
	diag := ev.Data.(sandbox.Diagnostic)
	assert.Equal(t, sandbox.DiagNoDraw, diag.Kind)

	require.Eventually(t, func() bool { return !s.Window().Running }, 2*time.Second, 5*time.Millisecond)
	w := s.Window()
	assert.True(t, w.Mounted)
	assert.Contains(t, w.Error, "no draw function was defined")
}

func TestPointerDragsWindow(t *testing.T) {
	s := editorSession(t)
	_, err := s.SelectFile(scriptPath)
	require.NoError(t, err)
	_, err = s.StartSandbox()
	require.NoError(t, err)

	w, err := s.Pointer(PointerEvent{Type: "pointerdown", X: 10, Y: 15, Target: "canvas"})
	require.NoError(t, err)
	assert.Equal(t, "grabbing", w.Cursor)

	w, err = s.Pointer(PointerEvent{Type: "pointermove", X: 200, Y: 250})
	require.NoError(t, err)
	assert.Equal(t, 190.0, w.Left)
	assert.Equal(t, 235.0, w.Top)

	w, err = s.Pointer(PointerEvent{Type: "pointerup", X: 200, Y: 250})
	require.NoError(t, err)
	assert.Equal(t, "grab", w.Cursor)
}

func TestStorageSeeded(t *testing.T) {
	s := newSession(t)
	v, ok := s.Storage().Get(PasswordKey)
	require.True(t, ok)
	assert.Equal(t, "this is a test", v)
}

func TestCloseEndsSession(t *testing.T) {
	s := editorSession(t, WithEventBuffer(4096))
	events, _ := s.Subscribe()

	_, err := s.SelectFile(scriptPath)
	require.NoError(t, err)
	_, err = s.StartSandbox()
	require.NoError(t, err)

	assert.True(t, s.Close())
	assert.False(t, s.Close())
	assert.False(t, s.Window().Mounted)

	nextEvent(t, events, EventClosed)
	require.Eventually(t, func() bool {
		_, ok := <-events
		return !ok
	}, time.Second, time.Millisecond)

	_, err = s.SelectFile(scriptPath)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Continue(), ErrClosed)
}

type countingObserver struct {
	opened, closed, tabs, crashes, started, stopped, frames, failures atomic.Int64
}

func (o *countingObserver) SessionOpened()       { o.opened.Add(1) }
func (o *countingObserver) SessionClosed()       { o.closed.Add(1) }
func (o *countingObserver) TabOpened()           { o.tabs.Add(1) }
func (o *countingObserver) CrashTriggered()      { o.crashes.Add(1) }
func (o *countingObserver) SandboxStarted()      { o.started.Add(1) }
func (o *countingObserver) SandboxStopped()      { o.stopped.Add(1) }
func (o *countingObserver) FrameDrawn()          { o.frames.Add(1) }
func (o *countingObserver) SandboxFailed(string) { o.failures.Add(1) }

func TestObserverCounts(t *testing.T) {
	obs := &countingObserver{}
	s := editorSession(t, WithObserver(obs))

	_, err := s.SelectFile(scriptPath)
	require.NoError(t, err)
	_, err = s.SelectFile(scriptPath)
	require.NoError(t, err)
	_, err = s.StartSandbox()
	require.NoError(t, err)
	_, err = s.StartSandbox()
	require.NoError(t, err)
	require.Eventually(t, func() bool { return obs.frames.Load() > 0 }, 2*time.Second, 5*time.Millisecond)
	s.StopSandbox()

	assert.Equal(t, int64(1), obs.crashes.Load())
	assert.Equal(t, int64(2), obs.tabs.Load())
	assert.Equal(t, int64(2), obs.started.Load())
	assert.Equal(t, int64(2), obs.stopped.Load())
	assert.Zero(t, obs.failures.Load())
}
