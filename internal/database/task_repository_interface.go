package database

import (
	"context"
	"errors"

	"github.com/thenoetrevino/tasknote/internal/models"
)

// ErrTaskNotFound is returned by GetTask for an unknown id
var ErrTaskNotFound = errors.New("task not found")

// TaskReader defines read operations for tasks.
type TaskReader interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	GetAllTasks(ctx context.Context) ([]*models.Task, error)
}

// TaskWriter defines write operations for tasks.
type TaskWriter interface {
	// PutTask inserts or replaces the whole record, images included
	PutTask(ctx context.Context, task *models.Task) error
	// DeleteTask removes a record; unknown ids are not an error
	DeleteTask(ctx context.Context, id string) error
}

// TaskRepository combines all task-related operations.
type TaskRepository interface {
	TaskReader
	TaskWriter
}

// Compile-time verification that *TaskRepo implements TaskRepository
var _ TaskRepository = (*TaskRepo)(nil)
