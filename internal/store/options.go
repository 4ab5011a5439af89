package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/tasknote/internal/events"
)

// Option is a functional option for configuring a Store
type Option func(*Store)

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamping
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID generator used for drafts
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventPublisher makes the store announce every successful write to other
// processes. Without one, writes are silent.
func WithEventPublisher(publisher events.EventPublisher) Option {
	return func(s *Store) {
		s.publisher = publisher
	}
}

func defaultID() string {
	return uuid.NewString()
}
