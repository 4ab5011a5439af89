package cli

import (
	"testing"
	"time"

	"github.com/thenoetrevino/tasknote/internal/app"
	"github.com/thenoetrevino/tasknote/internal/models"
	"github.com/thenoetrevino/tasknote/internal/testutil"
)

// SetupCLITest creates an in-memory database and an App over it.
// This function is only for CLI tests and is isolated in a separate package
// to avoid import cycles when store tests import testutil
func SetupCLITest(t *testing.T) *app.App {
	t.Helper()
	h := testutil.NewTestHandle(t)

	// EventPublisher is nil - event publishing is tested elsewhere
	return app.New(h, app.WithAutosaveDelay(time.Hour))
}

// CreateTestTask seeds a task with the given id and title through the store
func CreateTestTask(t *testing.T, a *app.App, id, title string) *models.Task {
	t.Helper()

	draft := a.Store.CreateDraft(id)
	draft.Title = title
	written, err := a.Store.Upsert(t.Context(), &draft)
	if err != nil {
		t.Fatalf("Failed to create test task %q: %v", title, err)
	}
	return written
}
