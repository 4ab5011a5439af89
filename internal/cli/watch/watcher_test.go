package watch

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasknote/internal/app"
	"github.com/thenoetrevino/tasknote/internal/database"
	"github.com/thenoetrevino/tasknote/internal/events"
	"github.com/thenoetrevino/tasknote/internal/models"
	"github.com/thenoetrevino/tasknote/internal/testutil"
)

// feedPublisher hands the watcher a channel the test controls
type feedPublisher struct {
	feed chan events.Event
	mu   sync.Mutex
	sent []events.Event
}

func newFeedPublisher() *feedPublisher {
	return &feedPublisher{feed: make(chan events.Event, 10)}
}

func (p *feedPublisher) Connect(context.Context) error { return nil }
func (p *feedPublisher) SendEvent(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, e)
	return nil
}
func (p *feedPublisher) Listen(context.Context) (<-chan events.Event, error) { return p.feed, nil }
func (p *feedPublisher) Subscribe(string) error                                { return nil }
func (p *feedPublisher) Close() error                                          { return nil }

// renders collects every list the watcher draws
func renders() (RenderFunc, <-chan []*models.Task) {
	ch := make(chan []*models.Task, 20)
	return func(tasks []*models.Task) { ch <- tasks }, ch
}

func nextRender(t *testing.T, ch <-chan []*models.Task) []*models.Task {
	t.Helper()
	select {
	case tasks := <-ch:
		return tasks
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for render")
		return nil
	}
}

func seed(t *testing.T, a *app.App, id string) {
	t.Helper()
	draft := a.Store.CreateDraft(id)
	draft.Title = id
	_, err := a.Store.Upsert(context.Background(), &draft)
	require.NoError(t, err)
}

func TestWatcher_RefreshesOnDaemonEvents(t *testing.T) {
	h := testutil.NewTestHandle(t)
	pub := newFeedPublisher()
	a := app.New(h, app.WithEventPublisher(pub))

	render, rendered := renders()
	w := New(a, filepath.Join(t.TempDir(), "unused.db"), render)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Empty(t, nextRender(t, rendered), "initial render")

	seed(t, a, "t1")
	pub.feed <- events.Event{Type: events.EventTasksChanged, TaskID: "t1"}
	tasks := nextRender(t, rendered)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)

	// Pings are not changes
	pub.feed <- events.Event{Type: events.EventPing}
	select {
	case <-rendered:
		t.Fatal("ping must not trigger a render")
	case <-time.After(50 * time.Millisecond):
	}

	opens := h.Opens()
	pub.feed <- events.Event{Type: events.EventSchemaChanged}
	nextRender(t, rendered)
	assert.Equal(t, opens+1, h.Opens(), "schema change reopens the database")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_FallsBackToFileEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	watched := database.NewHandle(database.FileOpener(dbPath))
	t.Cleanup(func() { _ = watched.Close() })
	a := app.New(watched)

	render, rendered := renders()
	w := New(a, dbPath, render)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	assert.Empty(t, nextRender(t, rendered))

	// Another process writes to the same file
	writerHandle := database.NewHandle(database.FileOpener(dbPath))
	t.Cleanup(func() { _ = writerHandle.Close() })
	writer := app.New(writerHandle)

	// Give the watcher time to register with the kernel
	time.Sleep(100 * time.Millisecond)
	seed(t, writer, "external")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case tasks := <-rendered:
			if len(tasks) == 1 {
				assert.Equal(t, "external", tasks[0].ID)
				return
			}
		case <-deadline:
			t.Fatal("external write never rendered")
		}
	}
}

func TestWatcher_InitialListFailureIsReturned(t *testing.T) {
	h := database.NewHandle(func(context.Context) (*sql.DB, error) {
		return nil, assert.AnError
	})
	a := app.New(h)

	render, rendered := renders()
	err := New(a, filepath.Join(t.TempDir(), "tasks.db"), render).Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, rendered)
}

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{dbPath: "/data/tasknote.db"}

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/data/tasknote.db", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/data/tasknote.db-wal", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/data/tasknote.db-journal", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/data/tasknote.db-shm", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/data/tasknote.db", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/data/config.yaml", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(tt.event), tt.event.String())
	}
}
