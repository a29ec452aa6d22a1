package sandbox

import "sync"

// Registry keeps at most one running session for an editor pane
type Registry struct {
	opts Options

	mu      sync.Mutex
	current *Session
}

// NewRegistry creates a registry whose sessions share opts
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts}
}

// Start stops the current session, if any, and starts a new one
func (r *Registry) Start(host *Element, source string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Stop()
	}
	r.current = Start(host, source, r.opts)
	return r.current
}

// Stop stops the current session; false when nothing was running
func (r *Registry) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return false
	}
	r.current.Stop()
	r.current = nil
	return true
}

// Current returns the active session or nil
func (r *Registry) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
