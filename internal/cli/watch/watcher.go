// Package watch keeps a task list on screen up to date as other processes
// write to the database.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thenoetrevino/tasknote/internal/app"
	"github.com/thenoetrevino/tasknote/internal/events"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// DefaultDebounce groups bursts of file writes into one refresh
const DefaultDebounce = 150 * time.Millisecond

// RenderFunc receives the full task list after every refresh
type RenderFunc func(tasks []*models.Task)

// Watcher re-lists tasks whenever they change. Change notifications come
// from the daemon when one is connected, otherwise from filesystem events
// on the database file.
type Watcher struct {
	app      *app.App
	dbPath   string
	render   RenderFunc
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for the database at dbPath
func New(a *app.App, dbPath string, render RenderFunc) *Watcher {
	return &Watcher{
		app:      a,
		dbPath:   dbPath,
		render:   render,
		debounce: DefaultDebounce,
		logger:   a.Logger().With("component", "watch"),
	}
}

// Run renders once, then on every change until ctx is done. Losing the
// daemon connection switches to watching the file.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.refresh(ctx); err != nil {
		return err
	}

	if pub := w.app.Events(); pub != nil {
		if err := w.watchEvents(ctx, pub); err != nil {
			w.logger.Warn("daemon events unavailable, watching the database file", "error", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	return w.watchFile(ctx)
}

func (w *Watcher) watchEvents(ctx context.Context, pub events.EventPublisher) error {
	ch, err := pub.Listen(ctx)
	if err != nil {
		return err
	}

	for {
		var event events.Event
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return fmt.Errorf("daemon connection closed")
			}
			event = e
		}

		switch event.Type {
		case events.EventSchemaChanged:
			w.logger.Info("schema changed, reopening database")
			if err := w.app.Store.Invalidate(); err != nil {
				w.logger.Warn("failed to invalidate store", "error", err)
			}
		case events.EventTasksChanged:
		default:
			continue
		}
		if err := w.refresh(ctx); err != nil {
			w.logger.Error("refresh failed", "error", err)
		}
	}
}

func (w *Watcher) watchFile(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// SQLite replaces and appends to sibling files (-wal, -journal), so
	// the directory is watched rather than the file itself
	if err := fw.Add(filepath.Dir(w.dbPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.dbPath), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			if err := w.refresh(ctx); err != nil {
				// The file may have been migrated underneath us
				w.logger.Warn("refresh failed, reopening database", "error", err)
				if err := w.app.Store.Invalidate(); err != nil {
					w.logger.Warn("failed to invalidate store", "error", err)
				}
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	// The shared-memory index changes on reads too
	if strings.HasSuffix(name, "-shm") {
		return false
	}
	return strings.HasPrefix(name, filepath.Base(w.dbPath))
}

func (w *Watcher) refresh(ctx context.Context) error {
	tasks, err := w.app.Store.ListAll(ctx)
	if err != nil {
		return err
	}
	w.render(tasks)
	return nil
}
