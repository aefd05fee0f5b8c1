// Package views holds the derived-view providers (characters, structure,
// markers, tasks) and the refresh scheduler that drives them. Each provider
// is constructed empty; Refresh replaces its internal state atomically and
// read methods serve snapshots of the latest completed refresh.
package views

import (
	"sync"
	"time"
)

// SingleFlight is the leading-edge-canceling, trailing-edge-coalescing
// debounce primitive behind watcher-driven refreshes: repeated triggers
// within the window collapse into one run, and a trigger that fires while a
// run is still in flight is dropped, not queued. An edit landing exactly
// during a refresh can therefore be missed until the next trigger; that
// weak-consistency window is accepted and observable via Dropped.
type SingleFlight struct {
	window time.Duration
	run    func()

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	dropped int
	stopped bool
}

// NewSingleFlight creates a scheduler invoking run after each trailing
// window. A non-positive window defaults to one second.
func NewSingleFlight(window time.Duration, run func()) *SingleFlight {
	if window <= 0 {
		window = time.Second
	}
	return &SingleFlight{window: window, run: run}
}

// Trigger requests a run after the trailing window, resetting the window if
// one is already pending.
func (s *SingleFlight) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.window, s.fire)
		return
	}
	s.timer.Reset(s.window)
}

func (s *SingleFlight) fire() {
	s.mu.Lock()
	s.timer = nil
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.dropped++
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.run()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Dropped returns how many fired triggers were discarded because a run was
// already in flight.
func (s *SingleFlight) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Stop cancels any pending trigger. A run already in flight finishes.
func (s *SingleFlight) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
