package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/thenoetrevino/tasknote/internal/database"
	"github.com/thenoetrevino/tasknote/internal/events"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// Source hands out a repository over the current database connection.
// *database.Handle is the production implementation.
type Source interface {
	Tasks(ctx context.Context) (database.TaskRepository, error)
	Invalidate() error
}

// Store is durable CRUD over tasks with a read-through cache in front.
//
// The cache holds the last known state of every task touched this session.
// ListAll replaces it wholesale; GetByID and Upsert fill single entries;
// DeleteByID evicts. There is no version check between a ListAll snapshot
// and a concurrent Upsert: whichever finishes last wins the cache entry.
type Store struct {
	source    Source
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	publisher events.EventPublisher

	mu    sync.RWMutex
	cache map[string]*models.Task
}

// New creates a store over source. Nothing is opened until the first
// operation that needs storage.
func New(source Source, opts ...Option) *Store {
	s := &Store{
		source: source,
		now:    time.Now,
		newID:  defaultID,
		logger: slog.Default(),
		cache:  make(map[string]*models.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDraft returns an unsaved task. An empty id gets a fresh UUID.
func (s *Store) CreateDraft(id string) models.Task {
	if id == "" {
		id = s.newID()
	}
	return models.NewDraft(id, s.now())
}

// ListAll reads every task from storage, ordered by schedule time, and makes
// the result the new cache contents.
func (s *Store) ListAll(ctx context.Context) ([]*models.Task, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := repo.GetAllTasks(ctx)
	if err != nil {
		return nil, unavailable("list tasks", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ScheduleTime().Before(tasks[j].ScheduleTime())
	})

	cache := make(map[string]*models.Task, len(tasks))
	out := make([]*models.Task, len(tasks))
	for i, task := range tasks {
		cache[task.ID] = task
		out[i] = task.Clone()
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()

	return out, nil
}

// GetByID returns the cached task when present, otherwise fetches it once.
// A missing task is reported as found == false with a nil error.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Task, bool, error) {
	if task, ok := s.GetByIDFromCacheOnly(id); ok {
		return task, true, nil
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, false, err
	}

	task, err := repo.GetTask(ctx, id)
	if errors.Is(err, database.ErrTaskNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get task", err)
	}

	s.mu.Lock()
	s.cache[id] = task
	s.mu.Unlock()

	return task.Clone(), true, nil
}

// GetByIDFromCacheOnly never touches storage
func (s *Store) GetByIDFromCacheOnly(id string) (*models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.cache[id]
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// Upsert stamps UpdatedAt, writes the whole record and caches it.
// Create and update are the same operation.
func (s *Store) Upsert(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task == nil {
		return nil, errors.New("upsert: nil task")
	}
	if task.ID == "" {
		return nil, errors.New("upsert: task has no id")
	}

	written := task.Clone()
	written.UpdatedAt = s.now()
	if written.UpdatedAt.Before(written.CreatedAt) {
		written.UpdatedAt = written.CreatedAt
	}
	if written.Completed && written.CompletedAt == nil {
		written.MarkCompleted(written.UpdatedAt)
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	if err := repo.PutTask(ctx, written); err != nil {
		return nil, unavailable("write task", err)
	}

	s.mu.Lock()
	s.cache[written.ID] = written
	s.mu.Unlock()

	s.logger.Debug("task saved", "task_id", written.ID)
	s.publish(written.ID)

	return written.Clone(), nil
}

// DeleteByID removes the task from storage and the cache. Unknown ids are
// not an error.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}
	if err := repo.DeleteTask(ctx, id); err != nil {
		return unavailable("delete task", err)
	}

	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()

	s.logger.Debug("task deleted", "task_id", id)
	s.publish(id)

	return nil
}

// Invalidate drops the database connection after an external schema change.
// The next operation reopens it; the cache is kept.
func (s *Store) Invalidate() error {
	s.logger.Info("invalidating database handle")
	return s.source.Invalidate()
}

func (s *Store) repo(ctx context.Context) (database.TaskRepository, error) {
	repo, err := s.source.Tasks(ctx)
	if err != nil {
		return nil, unavailable("open database", err)
	}
	return repo, nil
}

// publish is fire-and-forget; a missing daemon must never fail a write
func (s *Store) publish(taskID string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.SendEvent(events.Event{
		Type:      events.EventTasksChanged,
		TaskID:    taskID,
		Timestamp: s.now(),
	})
	if err != nil {
		s.logger.Debug("change notification not sent", "task_id", taskID, "error", err)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
