// Package autosave coalesces rapid edits to one task into a single write.
//
// A Session holds at most one pending edit and one timer. Every Edit replaces
// the pending value and restarts the timer; when the timer fires the last
// state is written. Close discards whatever has not been written yet, so
// callers that must not lose the final edit call Flush before Close.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/thenoetrevino/tasknote/internal/models"
)

// DefaultDelay is the quiet period after the last edit before it is saved
const DefaultDelay = 500 * time.Millisecond

// ErrClosed is returned by Edit and Flush after Close
var ErrClosed = errors.New("autosave session closed")

// Saver persists a task. *store.Store satisfies it.
type Saver interface {
	Upsert(ctx context.Context, task *models.Task) (*models.Task, error)
}

// Option is a functional option for configuring a Session
type Option func(*Session)

// WithOnSaved registers a callback receiving each written record
func WithOnSaved(fn func(*models.Task)) Option {
	return func(s *Session) { s.onSaved = fn }
}

// WithOnError registers a callback for failed timer-driven saves
func WithOnError(fn func(error)) Option {
	return func(s *Session) { s.onError = fn }
}

// WithLogger sets the logger for the session
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session debounces edits to a single task
type Session struct {
	saver   Saver
	delay   time.Duration
	onSaved func(*models.Task)
	onError func(error)
	logger  *slog.Logger

	// saveMu orders writes so an older state can never land after a newer one
	saveMu sync.Mutex

	mu      sync.Mutex
	pending *models.Task
	timer   *time.Timer
	token   uint64
	closed  bool
}

// NewSession creates a session writing through saver. A non-positive delay
// uses DefaultDelay.
func NewSession(saver Saver, delay time.Duration, opts ...Option) *Session {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Session{
		saver:  saver,
		delay:  delay,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edit records task as the latest state and restarts the timer
func (s *Session) Edit(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.pending = task.Clone()
	s.token++
	if s.timer != nil {
		s.timer.Stop()
	}
	token := s.token
	s.timer = time.AfterFunc(s.delay, func() { s.fire(token) })

	return nil
}

// Pending reports whether an edit is waiting to be written
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush writes the pending edit now. It returns the written record, or nil
// when nothing was pending.
func (s *Session) Flush(ctx context.Context) (*models.Task, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.token++
	task := s.pending
	s.pending = nil
	s.mu.Unlock()

	if task == nil {
		return nil, nil
	}
	return s.save(ctx, task)
}

// Close stops the timer and drops any unwritten edit, reporting whether one
// was dropped. Close is idempotent.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	s.token++
	if s.timer != nil {
		s.timer.Stop()
	}

	dropped := s.pending != nil
	if dropped {
		s.logger.Warn("discarding unsaved edit", "task_id", s.pending.ID)
	}
	s.pending = nil
	return dropped
}

// fire runs on the timer goroutine. A stale token means a newer Edit, a
// Flush or Close happened after this timer was armed.
func (s *Session) fire(token uint64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed || token != s.token || s.pending == nil {
		s.mu.Unlock()
		return
	}
	task := s.pending
	s.pending = nil
	s.mu.Unlock()

	if _, err := s.save(context.Background(), task); err != nil && s.onError != nil {
		s.onError(err)
	}
}

// save must be called with saveMu held
func (s *Session) save(ctx context.Context, task *models.Task) (*models.Task, error) {
	written, err := s.saver.Upsert(ctx, task)
	if err != nil {
		s.logger.Error("autosave failed", "task_id", task.ID, "error", err)

		// Keep the edit for a later Flush unless something newer arrived
		s.mu.Lock()
		if s.pending == nil && !s.closed {
			s.pending = task
		}
		s.mu.Unlock()
		return nil, err
	}

	s.logger.Debug("autosaved", "task_id", written.ID)
	if s.onSaved != nil {
		s.onSaved(written)
	}
	return written, nil
}
