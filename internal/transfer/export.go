// Package transfer moves tasks in and out of the JSON export file format.
// Images travel as base64 data URLs.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/thenoetrevino/tasknote/internal/models"
)

// FormatVersion is written to every export file
const FormatVersion = 1

// Lister supplies the tasks to export. *store.Store satisfies it.
type Lister interface {
	ListAll(ctx context.Context) ([]*models.Task, error)
}

// Envelope is the top-level export document
type Envelope struct {
	Version    int          `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Tasks      []TaskRecord `json:"tasks"`
}

// TaskRecord is one task as it appears in an export file
type TaskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Caption     string `json:"caption"`
	Memo        string `json:"memo"`
	Link        string `json:"link"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	ImageURL    string `json:"imageUrl"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	CompletedAt string `json:"completedAt"`
	Completed   bool   `json:"completed"`

	// ImageDataURL is the first image, kept for older readers; null when
	// the task has no images.
	ImageDataURL  *string  `json:"imageBlobDataUrl"`
	ImageDataURLs []string `json:"imageBlobDataUrls"`
}

// NewTaskRecord converts a task to its export form
func NewTaskRecord(task *models.Task) TaskRecord {
	rec := TaskRecord{
		ID:            task.ID,
		Title:         task.Title,
		Caption:       task.Caption,
		Memo:          task.Memo,
		Link:          task.Link,
		StartDate:     task.StartDate,
		EndDate:       task.EndDate,
		ImageURL:      task.ImageURL,
		CreatedAt:     formatTimestamp(task.CreatedAt),
		UpdatedAt:     formatTimestamp(task.UpdatedAt),
		Completed:     task.Completed,
		ImageDataURLs: make([]string, 0, len(task.Images)),
	}
	if task.CompletedAt != nil {
		rec.CompletedAt = formatTimestamp(*task.CompletedAt)
	}
	for _, img := range task.Images {
		rec.ImageDataURLs = append(rec.ImageDataURLs, EncodeDataURL(img))
	}
	if len(rec.ImageDataURLs) > 0 {
		first := rec.ImageDataURLs[0]
		rec.ImageDataURL = &first
	}
	return rec
}

// Export writes every task as an export envelope stamped with now. It
// returns the number of tasks written.
func Export(ctx context.Context, lister Lister, w io.Writer, now time.Time) (int, error) {
	tasks, err := lister.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	env := Envelope{
		Version:    FormatVersion,
		ExportedAt: formatTimestamp(now),
		Tasks:      make([]TaskRecord, 0, len(tasks)),
	}
	for _, task := range tasks {
		env.Tasks = append(env.Tasks, NewTaskRecord(task))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(env.Tasks), nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
