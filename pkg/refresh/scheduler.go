// Package refresh debounces cache change notifications into tree rebuilds.
package refresh

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vanderheijden86/poolnav/pkg/cache"
)

// DefaultDebounce is the quiet window used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// State represents the current state of the scheduler.
type State int

const (
	// StateIdle means no rebuild is scheduled.
	StateIdle State = iota
	// StateWaiting means a timer is running.
	StateWaiting
	// StateRebuilding means the rebuild callback is executing.
	StateRebuilding
	// StateStopped means the scheduler has been stopped.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateRebuilding:
		return "rebuilding"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Timer is the part of *time.Timer the scheduler uses.
type Timer interface {
	Stop() bool
}

// AfterFunc starts a timer that calls f once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config configures a Scheduler.
type Config struct {
	// Debounce is the quiet window. Zero means DefaultDebounce.
	Debounce time.Duration
	// Rebuild is called once per quiet window, never concurrently with itself.
	Rebuild func()
	// AfterFunc replaces time.AfterFunc in tests.
	AfterFunc AfterFunc
	Logger    zerolog.Logger
}

// Stats are counters since the scheduler was created.
type Stats struct {
	Notifications uint64
	Rebuilds      uint64
	Panics        uint64
	LastDuration  time.Duration
}

// Scheduler coalesces bursts of change notifications. Each notification
// restarts a single timer; when the timer elapses the rebuild runs once.
// Notifications that arrive during a rebuild start a new timer only after
// the rebuild returns.
type Scheduler struct {
	debounce  time.Duration
	rebuild   func()
	afterFunc AfterFunc
	log       zerolog.Logger

	mu      sync.Mutex
	state   State
	timer   Timer
	gen     uint64 // invalidates timers that fire after being replaced
	pending bool   // a change arrived while rebuilding
	stats   Stats
}

// New creates a scheduler. It does nothing until NotifyChanged is called.
func New(cfg Config) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = realAfterFunc
	}
	if cfg.Rebuild == nil {
		cfg.Rebuild = func() {}
	}
	return &Scheduler{
		debounce:  cfg.Debounce,
		rebuild:   cfg.Rebuild,
		afterFunc: cfg.AfterFunc,
		log:       cfg.Logger.With().Str("component", "refresh").Logger(),
	}
}

// Debounce returns the quiet window.
func (s *Scheduler) Debounce() time.Duration {
	return s.debounce
}

// NotifyChanged records a change. It is safe to call from any goroutine,
// any number of times.
func (s *Scheduler) NotifyChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateStopped:
		return
	case StateRebuilding:
		s.stats.Notifications++
		s.pending = true
		return
	}
	s.stats.Notifications++
	s.restartLocked()
}

func (s *Scheduler) restartLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.state = StateWaiting
	s.timer = s.afterFunc(s.debounce, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.state != StateWaiting || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.beginLocked()
	s.mu.Unlock()

	s.run()
}

func (s *Scheduler) beginLocked() {
	s.timer = nil
	s.pending = false
	s.state = StateRebuilding
}

// run executes the rebuild and then schedules any change that came in
// meanwhile.
func (s *Scheduler) run() {
	start := time.Now()
	panicked := s.safeRebuild()
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Rebuilds++
	s.stats.LastDuration = elapsed
	if panicked {
		s.stats.Panics++
	}
	if s.state == StateStopped {
		return
	}
	s.state = StateIdle
	if s.pending {
		s.pending = false
		s.restartLocked()
	}
}

// safeRebuild runs the callback and recovers from a panic.
func (s *Scheduler) safeRebuild() (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			s.log.Error().
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("Rebuild panicked")
		}
	}()
	s.rebuild()
	return false
}

// Flush runs a scheduled rebuild immediately instead of waiting for the
// timer. It reports whether a rebuild ran.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	if s.state != StateWaiting {
		s.mu.Unlock()
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.beginLocked()
	s.mu.Unlock()

	s.run()
	return true
}

// Stop cancels any scheduled rebuild. A rebuild already running finishes.
// Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.pending = false
	s.state = StateStopped
	s.log.Debug().Msg("Scheduler stopped")
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a copy of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Watch forwards cache changes to NotifyChanged until ctx is done or the
// channel is closed.
func (s *Scheduler) Watch(ctx context.Context, changes <-chan cache.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			s.log.Trace().Str("key", c.Key.String()).Bool("removed", c.Removed).Msg("Cache changed")
			s.NotifyChanged()
		}
	}
}
