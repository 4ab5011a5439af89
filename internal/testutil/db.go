package testutil

import (
	"context"
	"testing"

	"github.com/thenoetrevino/tasknote/internal/database"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// NewTestHandle returns a handle over a migrated in-memory database. The
// handle is closed by test cleanup.
func NewTestHandle(t *testing.T) *database.Handle {
	t.Helper()

	h := database.NewHandle(database.FileOpener(database.MemoryPath))
	if _, err := h.DB(context.Background()); err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	return h
}

// SeedTask writes task straight through the repository, bypassing any cache
func SeedTask(t *testing.T, h *database.Handle, task *models.Task) {
	t.Helper()

	repo, err := h.Tasks(context.Background())
	if err != nil {
		t.Fatalf("Failed to get repository: %v", err)
	}
	if err := repo.PutTask(context.Background(), task); err != nil {
		t.Fatalf("Failed to seed task %s: %v", task.ID, err)
	}
}
