package database

import (
	"context"
	"database/sql"
	"sync"
)

// Opener opens a fresh database connection
type Opener func(ctx context.Context) (*sql.DB, error)

// FileOpener returns an Opener for the database file at path
func FileOpener(path string) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		return Open(ctx, path)
	}
}

// Handle is the process-wide database connection. It is opened on first use
// and memoized until Invalidate discards it, after which the next caller
// reopens. Operations already running against a discarded connection fail;
// they are not retried.
type Handle struct {
	open Opener

	mu    sync.Mutex
	db    *sql.DB
	opens int
}

// NewHandle creates a handle that opens lazily through open
func NewHandle(open Opener) *Handle {
	return &Handle{open: open}
}

// DB returns the memoized connection, opening it if needed
func (h *Handle) DB(ctx context.Context) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}

	db, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	h.db = db
	h.opens++
	return db, nil
}

// Tasks returns a task repository over the current connection
func (h *Handle) Tasks(ctx context.Context) (TaskRepository, error) {
	db, err := h.DB(ctx)
	if err != nil {
		return nil, err
	}
	return NewTaskRepo(db), nil
}

// Invalidate closes and forgets the current connection, e.g. after another
// process changed the schema underneath us.
func (h *Handle) Invalidate() error {
	h.mu.Lock()
	db := h.db
	h.db = nil
	h.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// Close releases the connection. The handle may be reopened afterwards.
func (h *Handle) Close() error {
	return h.Invalidate()
}

// Opens reports how many times the handle has opened a connection
func (h *Handle) Opens() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opens
}
