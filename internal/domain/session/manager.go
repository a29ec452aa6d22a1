package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// ManifestSource supplies the manifest for a viewer audience
type ManifestSource interface {
	Get(companyID string) *manifest.Manifest
}

// Manager creates and tracks live sessions
type Manager struct {
	source ManifestSource
	opts   []Option
	cfg    config
	max    int

	mu          sync.RWMutex
	sessions    map[id.SessionID]*Session
	created     uint64
	expired     uint64
	lastCreated *time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager. max <= 0 means unlimited.
func NewManager(source ManifestSource, max int, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Manager{
		source:   source,
		opts:     opts,
		cfg:      cfg,
		max:      max,
		sessions: make(map[id.SessionID]*Session),
		stop:     make(chan struct{}),
	}
	if cfg.idleTTL > 0 {
		go m.janitor(cfg.idleTTL)
	}
	return m
}

// janitor closes idle sessions until Shutdown
func (m *Manager) janitor(ttl time.Duration) {
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.reap(now, ttl)
		}
	}
}

// reap closes every session idle for ttl at now and returns how many
func (m *Manager) reap(now time.Time, ttl time.Duration) int {
	m.mu.Lock()
	var idle []*Session
	for sid, s := range m.sessions {
		if s.idle(now, ttl) {
			delete(m.sessions, sid)
			idle = append(idle, s)
		}
	}
	m.expired += uint64(len(idle))
	m.mu.Unlock()

	for _, s := range idle {
		if s.Close() {
			m.cfg.observer.SessionClosed()
		}
		m.cfg.logger.Info("session expired",
			zap.String("session_id", s.ID().String()),
			zap.Duration("idle_ttl", ttl))
	}
	return len(idle)
}

// Create starts a session for the given company filter (may be empty)
func (m *Manager) Create(companyID string) (*Session, error) {
	mf := m.source.Get(companyID)

	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return nil, fmt.Errorf("create session: %w (limit %d)", ErrTooManySessions, m.max)
	}
	s := New(mf, m.opts...)
	m.sessions[s.ID()] = s
	m.created++
	now := time.Now()
	m.lastCreated = &now
	m.mu.Unlock()

	m.cfg.observer.SessionOpened()
	m.cfg.logger.Info("session created",
		zap.String("session_id", s.ID().String()),
		zap.String("group", s.Manifest().Group))
	return s, nil
}

// Get looks up a live session and marks it active
func (m *Manager) Get(sessionID id.SessionID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}
	s.touch()
	return s, nil
}

// Close removes and closes a session
func (m *Manager) Close(sessionID id.SessionID) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}
	if s.Close() {
		m.cfg.observer.SessionClosed()
	}
	m.cfg.logger.Info("session closed", zap.String("session_id", sessionID.String()))
	return nil
}

// List returns the live session IDs, oldest first
func (m *Manager) List() []id.SessionID {
	m.mu.RLock()
	ids := make([]id.SessionID, 0, len(m.sessions))
	for sid := range m.sessions {
		ids = append(ids, sid)
	}
	m.mu.RUnlock()

	// ULIDs sort by creation time.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Shutdown stops idle reaping and closes every session
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })
	for _, sid := range m.List() {
		_ = m.Close(sid)
	}
}

// Stats describes the manager
type Stats struct {
	Active      int        `json:"active"`
	Created     uint64     `json:"created"`
	Expired     uint64     `json:"expired"`
	Limit       int        `json:"limit"`
	IdleTTL     string     `json:"idle_ttl,omitempty"`
	LastCreated *time.Time `json:"last_created,omitempty"`
}

// Stats returns manager statistics
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := Stats{
		Active:      len(m.sessions),
		Created:     m.created,
		Expired:     m.expired,
		Limit:       m.max,
		LastCreated: m.lastCreated,
	}
	if m.cfg.idleTTL > 0 {
		stats.IdleTTL = m.cfg.idleTTL.String()
	}
	return stats
}
