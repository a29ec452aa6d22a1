// Package crash picks the fake crash shown once per visit.
package crash

import (
	"math/rand"
	"sync"
	"time"
)

// Record is one crash narrative
type Record struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Records is the fixed set a crash is drawn from
var Records = []Record{
	{
		Title:   "Dynamic Memory Allocation Failed.",
		Message: "An error occured while loading a summary of Daniel's achievements.",
		Details: "Crash: attempt to allocate 1 petabyte caused memory limit exception.",
	},
	{
		Title:   "Syntax Error.",
		Message: "In file /home/daniel/Desktop/Coding/portfolio:",
		Details: "Unknown keyword or token 'Button*':\n// I'm going to write this part of the code in C!\n Button* button = (Button*) malloc(sizeof Button);",
	},
	{
		Title:   "Runtime Assertion Failed.",
		Message: "Comparison failed between false expression and true.",
		Details: "assert 'Daniel is bad at coding.'",
	},
	{
		Title:   "Uncaught Runtime Error",
		Message: "The current browser does not support the Web Elevator API, as it lacks elevated privileges.",
		Details: "// use the user's elevator (the stairs are broken) \n const elevator = new Elevator();",
	},
	{
		Title:   "Cast to Union Type Failed.",
		Message: "Casting to a union type has caused the thread to strike pending demands of reduced compute time.",
		Details: "const v = (IntFloatUnion) 10.2;",
	},
}

// Simulator fires at most one crash for its lifetime
type Simulator struct {
	mu      sync.Mutex
	rng     *rand.Rand
	record  *Record
	publish func(Record)
}

// Option configures a Simulator
type Option func(*Simulator)

// WithSource makes the selection reproducible
func WithSource(src rand.Source) Option {
	return func(s *Simulator) { s.rng = rand.New(src) }
}

// WithPublisher is called once, with the selected record
func WithPublisher(fn func(Record)) Option {
	return func(s *Simulator) { s.publish = fn }
}

// NewSimulator creates a simulator that has not crashed yet
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaybeTrigger selects a record uniformly at random and publishes it, unless
// a crash has already happened. The boolean is true only for the call that fired.
func (s *Simulator) MaybeTrigger() (Record, bool) {
	s.mu.Lock()
	if s.record != nil {
		r := *s.record
		s.mu.Unlock()
		return r, false
	}
	r := Records[s.rng.Intn(len(Records))]
	s.record = &r
	publish := s.publish
	s.mu.Unlock()

	if publish != nil {
		publish(r)
	}
	return r, true
}

// HasCrashed reports whether the crash already fired
func (s *Simulator) HasCrashed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record != nil
}

// Record returns the published crash, if any
func (s *Simulator) Record() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return Record{}, false
	}
	return *s.record, true
}
