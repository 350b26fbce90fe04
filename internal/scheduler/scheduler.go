// Package scheduler provides the reminder timer registry.
//
// It maps each reminder ID to at most one pending one-shot timer. Arming an
// ID that already has a timer cancels the old timer first, so a rescheduled
// reminder can never fire at its stale time.
package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// entry tracks a single armed timer.
type entry struct {
	timer *time.Timer
	at    time.Time
}

// Scheduler is a keyed one-shot timer registry backed by time.AfterFunc.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*entry
}

// New creates an empty Scheduler.
func New() *Scheduler {
	slog.Debug("Creating scheduler")
	return &Scheduler{timers: make(map[string]*entry)}
}

// Arm registers fn to run at the given time under the reminder ID. Any
// existing timer for the ID is cancelled first. A fire time in the past runs
// fn immediately on the timer goroutine rather than being dropped.
func (s *Scheduler) Arm(id string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.timer.Stop()
		delete(s.timers, id)
		slog.Debug("Scheduler.Arm: replaced existing timer", "id", id)
	}

	delay := time.Until(at)
	if delay < 0 {
		slog.Warn("Scheduler.Arm: fire time is in the past, firing immediately", "id", id, "at", at)
		delay = 0
	}

	e := &entry{at: at}
	e.timer = time.AfterFunc(delay, func() {
		// A timer can still run after Stop when the callback was already
		// in flight; only fire if this entry is still the registered one.
		s.mu.Lock()
		current, ok := s.timers[id]
		if !ok || current != e {
			s.mu.Unlock()
			slog.Debug("Scheduler: suppressing fire of superseded timer", "id", id)
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		slog.Debug("Scheduler: timer fired", "id", id, "at", at)
		fn()
	})
	s.timers[id] = e
	slog.Debug("Scheduler.Arm: timer armed", "id", id, "at", at, "delay", delay)
}

// Cancel removes the timer for the ID if present. Cancelling an unknown or
// already-fired ID is a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[id]; ok {
		e.timer.Stop()
		delete(s.timers, id)
		slog.Debug("Scheduler.Cancel: timer cancelled", "id", id)
		return
	}
	slog.Debug("Scheduler.Cancel: timer not found", "id", id)
}

// ArmedAt reports the fire time of the pending timer for the ID, if any.
func (s *Scheduler) ArmedAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[id]; ok {
		return e.at, true
	}
	return time.Time{}, false
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all armed timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.Debug("Scheduler stopping all timers", "count", len(s.timers))
	for _, e := range s.timers {
		e.timer.Stop()
	}
	s.timers = make(map[string]*entry)
}
