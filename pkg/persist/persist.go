// Package persist saves dashboards in the background.
//
// A [Saver] receives a snapshot after every committed edit and writes it to a
// [store.Store] once edits have been quiet for the debounce window (5 seconds
// by default). Only the latest snapshot is written. A snapshot whose content
// hash matches the last successful save is skipped.
//
// While an undo or redo is being applied the saver is suppressed: pending
// saves are cancelled and new ones are not scheduled until [Saver.Resume],
// so a background write never races the state the undo is restoring.
//
// Save failures are logged and reported to the store hooks. They never reach
// the engine's history.
package persist

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/observability"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// DefaultDelay is the quiescence window before a scheduled save runs.
const DefaultDelay = 5 * time.Second

// Option configures a Saver.
type Option func(*Saver)

// WithDelay sets the debounce window. Non-positive values select DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithLogger sets the logger for save outcomes.
func WithLogger(l *log.Logger) Option {
	return func(s *Saver) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithContext sets the context background saves run under.
func WithContext(ctx context.Context) Option {
	return func(s *Saver) { s.ctx = ctx }
}

// WithRetry enables retrying retryable store errors with backoff.
func WithRetry(enabled bool) Option {
	return func(s *Saver) { s.retry = enabled }
}

// Saver writes one named dashboard to a store with debouncing.
type Saver struct {
	store  store.Store
	name   string
	delay  time.Duration
	logger *log.Logger
	ctx    context.Context
	retry  bool

	debounce *Debouncer

	mu         sync.Mutex
	pending    *dashboard.Snapshot
	suppressed int
	lastHash   string
	lastErr    error

	saveMu sync.Mutex // serializes writes
}

// New returns a saver writing dashboard name to st.
func New(st store.Store, name string, opts ...Option) *Saver {
	s := &Saver{
		store:  st,
		name:   name,
		delay:  DefaultDelay,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		ctx:    context.Background(),
		retry:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debounce = NewDebouncer(s.delay)
	return s
}

// Name returns the dashboard name the saver writes.
func (s *Saver) Name() string { return s.name }

// Delay returns the debounce window.
func (s *Saver) Delay() time.Duration { return s.delay }

// Schedule queues snap for saving after the debounce window. It is a no-op
// while suppressed.
func (s *Saver) Schedule(snap dashboard.Snapshot) {
	s.mu.Lock()
	if s.suppressed > 0 {
		s.mu.Unlock()
		return
	}
	c := snap.Clone()
	s.pending = &c
	s.mu.Unlock()

	s.debounce.Trigger(s.fire)
}

// Suppress cancels any pending save and ignores Schedule until the matching
// Resume. Calls nest.
func (s *Saver) Suppress() {
	s.mu.Lock()
	s.suppressed++
	s.pending = nil
	s.mu.Unlock()
	s.debounce.Cancel()
}

// Resume ends one Suppress.
func (s *Saver) Resume() {
	s.mu.Lock()
	if s.suppressed > 0 {
		s.suppressed--
	}
	s.mu.Unlock()
}

// Suppressed reports whether scheduling is currently suppressed.
func (s *Saver) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed > 0
}

// Pending reports whether a save is waiting for the debounce window.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Cancel drops the pending save without writing it.
func (s *Saver) Cancel() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	s.debounce.Cancel()
}

// MarkSaved records snap as already stored, so an unchanged re-save is
// skipped. Call it after loading a dashboard from the same store.
func (s *Saver) MarkSaved(snap dashboard.Snapshot) {
	s.mu.Lock()
	s.lastHash = dashboard.Hash(snap)
	s.mu.Unlock()
}

// Err returns the error of the most recent save attempt, or nil.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Flush writes the pending snapshot now, if there is one.
func (s *Saver) Flush(ctx context.Context) error {
	s.debounce.Cancel()
	snap, ok := s.take()
	if !ok {
		return nil
	}
	return s.save(ctx, snap)
}

// Close flushes the pending snapshot. The store is left open.
func (s *Saver) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

func (s *Saver) fire() {
	snap, ok := s.take()
	if !ok {
		return
	}
	_ = s.save(s.ctx, snap)
}

func (s *Saver) take() (dashboard.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.suppressed > 0 {
		return dashboard.Snapshot{}, false
	}
	snap := *s.pending
	s.pending = nil
	return snap, true
}

func (s *Saver) save(ctx context.Context, snap dashboard.Snapshot) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	hash := dashboard.Hash(snap)
	s.mu.Lock()
	unchanged := hash == s.lastHash
	s.mu.Unlock()
	if unchanged {
		s.logger.Debug("save skipped, unchanged", "dashboard", s.name)
		observability.Store().OnSaveSkipped(ctx, s.name)
		return nil
	}

	write := func() error { return s.store.Save(ctx, s.name, snap) }
	var err error
	if s.retry {
		err = store.RetryWithBackoff(ctx, write)
	} else {
		err = write()
	}

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.lastHash = hash
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("save failed", "dashboard", s.name, "backend", s.store.Kind(), "err", err)
		return err
	}
	s.logger.Debug("saved", "dashboard", s.name, "backend", s.store.Kind(), "items", len(snap.Layout))
	return nil
}
