package editor

import (
	"fmt"
	"path"
	"sync"

	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

// ActiveChangeFunc is called after the active tab changes. Either ID may be empty.
type ActiveChangeFunc func(prev, next id.TabID)

// Manager orchestrates tab lifecycle
type Manager struct {
	mu       sync.RWMutex
	source   ContentSource
	tabs     []*Tab   // Protected by mu, in open order
	active   id.TabID // Protected by mu, empty when no tab is active
	onActive ActiveChangeFunc
	newID    func() id.TabID
}

// Option configures a Manager
type Option func(*Manager)

// WithActiveChange registers the active-tab hook
func WithActiveChange(fn ActiveChangeFunc) Option {
	return func(m *Manager) { m.onActive = fn }
}

// WithIDFunc overrides tab ID generation
func WithIDFunc(fn func() id.TabID) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates a tab manager reading baselines from source
func NewManager(source ContentSource, opts ...Option) *Manager {
	m := &Manager{
		source: source,
		newID:  id.NewTabID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SelectFile focuses the tab showing p, or opens a new one seeded from the
// content table. An existing tab keeps its working copy and dirty flag.
func (m *Manager) SelectFile(p string) (Tab, bool) {
	m.mu.Lock()

	if t := m.findByPath(p); t != nil {
		prev := m.setActive(t.ID)
		tab := *t
		m.mu.Unlock()
		m.notify(prev, tab.ID)
		return tab, false
	}

	t := &Tab{
		ID:       m.newID(),
		Name:     path.Base(p),
		Path:     p,
		Content:  m.source.Lookup(p),
		Language: LanguageFromPath(p),
	}
	m.tabs = append(m.tabs, t)
	prev := m.setActive(t.ID)
	tab := *t
	m.mu.Unlock()

	m.notify(prev, tab.ID)
	return tab, true
}

// Activate focuses an open tab
func (m *Manager) Activate(tabID id.TabID) error {
	m.mu.Lock()
	if m.find(tabID) == nil {
		m.mu.Unlock()
		return fmt.Errorf("activate %s: %w", tabID, ErrTabNotFound)
	}
	prev := m.setActive(tabID)
	m.mu.Unlock()

	m.notify(prev, tabID)
	return nil
}

// EditContent replaces a text tab's working copy. The tab is dirty exactly
// when the new text differs from the content-table baseline for its path.
func (m *Manager) EditContent(tabID id.TabID, text string) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.find(tabID)
	if t == nil {
		return Tab{}, fmt.Errorf("edit %s: %w", tabID, ErrTabNotFound)
	}
	if !t.Content.IsText() {
		return Tab{}, fmt.Errorf("edit %s: %w", t.Path, ErrNotEditable)
	}

	t.Content = manifest.Text(text)
	t.IsDirty = !t.Content.Equal(m.source.Lookup(t.Path))
	return *t, nil
}

// CloseTab removes a tab. When the active tab closes, the last remaining
// tab in list order becomes active; with no tabs left nothing is active.
func (m *Manager) CloseTab(tabID id.TabID) error {
	m.mu.Lock()

	idx := -1
	for i, t := range m.tabs {
		if t.ID == tabID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("close %s: %w", tabID, ErrTabNotFound)
	}

	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)

	changed := false
	prev := m.active
	if m.active == tabID {
		if len(m.tabs) > 0 {
			m.active = m.tabs[len(m.tabs)-1].ID
		} else {
			m.active = ""
		}
		changed = true
	}
	next := m.active
	m.mu.Unlock()

	if changed {
		m.notify(prev, next)
	}
	return nil
}

// Get returns a copy of one tab
func (m *Manager) Get(tabID id.TabID) (Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := m.find(tabID)
	if t == nil {
		return Tab{}, false
	}
	return *t, true
}

// Tabs returns copies of all open tabs in order
func (m *Manager) Tabs() []Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tabs := make([]Tab, len(m.tabs))
	for i, t := range m.tabs {
		tabs[i] = *t
	}
	return tabs
}

// Active returns the active tab, if any
func (m *Manager) Active() (Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == "" {
		return Tab{}, false
	}
	t := m.find(m.active)
	if t == nil {
		return Tab{}, false
	}
	return *t, true
}

// Stats summarises the open tabs
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{Open: len(m.tabs), ActiveID: m.active}
	for _, t := range m.tabs {
		if t.IsDirty {
			s.Dirty++
		}
	}
	return s
}

// Stats holds tab counters
type Stats struct {
	Open     int      `json:"open"`
	Dirty    int      `json:"dirty"`
	ActiveID id.TabID `json:"activeId,omitempty"`
}

// setActive must hold lock; returns the previous active ID
func (m *Manager) setActive(tabID id.TabID) id.TabID {
	prev := m.active
	m.active = tabID
	return prev
}

func (m *Manager) notify(prev, next id.TabID) {
	if m.onActive != nil && prev != next {
		m.onActive(prev, next)
	}
}

// find must hold lock
func (m *Manager) find(tabID id.TabID) *Tab {
	for _, t := range m.tabs {
		if t.ID == tabID {
			return t
		}
	}
	return nil
}

// findByPath must hold lock
func (m *Manager) findByPath(p string) *Tab {
	for _, t := range m.tabs {
		if t.Path == p {
			return t
		}
	}
	return nil
}
