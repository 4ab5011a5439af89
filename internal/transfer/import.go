package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/thenoetrevino/tasknote/internal/models"
)

// Importer creates drafts and writes records. *store.Store satisfies it.
type Importer interface {
	CreateDraft(id string) models.Task
	Upsert(ctx context.Context, task *models.Task) (*models.Task, error)
}

// Result summarizes an import
type Result struct {
	Imported      int `json:"imported"`
	Skipped       int `json:"skipped"`
	SkippedImages int `json:"skipped_images"`
}

// recognizedFields are the keys that make an object look like a task
var recognizedFields = []string{
	"id", "title", "caption", "memo", "link",
	"startDate", "endDate", "imageUrl",
	"createdAt", "updatedAt", "completedAt", "completed",
	"imageBlobDataUrl", "imageBlobDataUrls",
}

// Import reads either an export envelope or a bare array of task objects and
// upserts every task-like entry. Entries without any recognized field are
// skipped. Fields an entry leaves out come from a fresh draft, so an entry
// without an id gets a new one; an entry whose id already exists replaces it.
func Import(ctx context.Context, importer Importer, r io.Reader) (Result, error) {
	var res Result

	raw, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("failed to read import: %w", err)
	}

	entries, err := splitEntries(raw)
	if err != nil {
		return res, err
	}

	for i, entry := range entries {
		fields, ok := taskLike(entry)
		if !ok {
			res.Skipped++
			slog.Debug("skipping non-task entry", "index", i)
			continue
		}

		task, badImages := buildTask(importer, fields)
		res.SkippedImages += badImages

		if _, err := importer.Upsert(ctx, task); err != nil {
			return res, fmt.Errorf("failed to import task %s: %w", task.ID, err)
		}
		res.Imported++
	}

	return res, nil
}

// splitEntries accepts a top-level array or an object with a tasks array
func splitEntries(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedImport)
	}

	var entries []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
		}
	case '{':
		var env struct {
			Tasks json.RawMessage `json:"tasks"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
		}
		if err := json.Unmarshal(env.Tasks, &entries); err != nil || entries == nil {
			return nil, fmt.Errorf("%w: object has no tasks array", ErrMalformedImport)
		}
	default:
		return nil, fmt.Errorf("%w: expected an array or an object", ErrMalformedImport)
	}
	return entries, nil
}

func taskLike(entry json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return nil, false
	}
	for _, key := range recognizedFields {
		if _, ok := fields[key]; ok {
			return fields, true
		}
	}
	return nil, false
}

// buildTask overlays fields on a draft and reports how many images were dropped
func buildTask(importer Importer, fields map[string]json.RawMessage) (*models.Task, int) {
	var id string
	stringField(fields, "id", &id)

	task := importer.CreateDraft(id)

	stringField(fields, "title", &task.Title)
	stringField(fields, "caption", &task.Caption)
	stringField(fields, "memo", &task.Memo)
	stringField(fields, "link", &task.Link)
	stringField(fields, "startDate", &task.StartDate)
	stringField(fields, "endDate", &task.EndDate)
	stringField(fields, "imageUrl", &task.ImageURL)
	timeField(fields, "createdAt", &task.CreatedAt)
	timeField(fields, "updatedAt", &task.UpdatedAt)
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}

	var completed bool
	if decodeField(fields, "completed", &completed) && completed {
		var at time.Time
		if !timeField(fields, "completedAt", &at) {
			at = task.UpdatedAt
		}
		task.MarkCompleted(at)
	}

	images, bad := imageFields(fields)
	task.Images = images

	return &task, bad
}

func imageFields(fields map[string]json.RawMessage) ([]models.Image, int) {
	var urls []string
	if !decodeField(fields, "imageBlobDataUrls", &urls) || len(urls) == 0 {
		var legacy string
		if stringField(fields, "imageBlobDataUrl", &legacy) && legacy != "" {
			urls = []string{legacy}
		}
	}

	var (
		images []models.Image
		bad    int
	)
	for _, u := range urls {
		img, err := DecodeDataURL(u)
		if err != nil {
			slog.Debug("skipping invalid image", "error", err)
			bad++
			continue
		}
		images = append(images, img)
	}
	return images, bad
}

// decodeField unmarshals fields[key] into dst, reporting success. Missing keys,
// nulls and mistyped values leave dst untouched.
func decodeField(fields map[string]json.RawMessage, key string, dst any) bool {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func stringField(fields map[string]json.RawMessage, key string, dst *string) bool {
	var s string
	if !decodeField(fields, key, &s) {
		return false
	}
	*dst = s
	return true
}

func timeField(fields map[string]json.RawMessage, key string, dst *time.Time) bool {
	var s string
	if !decodeField(fields, key, &s) || s == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return false
	}
	*dst = t
	return true
}
