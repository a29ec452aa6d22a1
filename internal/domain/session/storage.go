package session

import (
	"sort"
	"sync"
)

// PasswordKey holds a fixed decorative value written on every visit
const (
	PasswordKey   = "password"
	PasswordValue = "this is a test"
)

// Storage is a per-session key/value store
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStorage creates a store seeded with the password placeholder
func NewStorage() *Storage {
	return &Storage{values: map[string]string{PasswordKey: PasswordValue}}
}

// Get returns the value for key
func (s *Storage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key
func (s *Storage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key
func (s *Storage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns the stored keys in sorted order
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
