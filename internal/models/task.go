package models

import (
	"slices"
	"time"
)

// DateLayout is the calendar-date format used for StartDate and EndDate
const DateLayout = "2006-01-02"

// Image is a single binary image attached to a task
type Image struct {
	MIMEType string
	Data     []byte
}

// Task is the persisted task record
type Task struct {
	ID      string
	Title   string
	Caption string
	Memo    string
	Link    string

	// Optional scheduling window, YYYY-MM-DD or empty
	StartDate string
	EndDate   string

	// Images is the canonical ordered image sequence. ImageURL is only
	// consulted when no image payload is stored.
	Images   []Image
	ImageURL string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	Completed   bool
}

// NewDraft returns an in-memory task with every text field empty.
// now is used for both CreatedAt and UpdatedAt.
func NewDraft(id string, now time.Time) Task {
	return Task{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ScheduleTime is the time the task list is ordered by: the start of
// StartDate when it parses, otherwise CreatedAt.
func (t *Task) ScheduleTime() time.Time {
	if start, ok := ParseDate(t.StartDate); ok {
		return start
	}
	return t.CreatedAt
}

// MarkCompleted flags the task as done at the given moment
func (t *Task) MarkCompleted(at time.Time) {
	t.Completed = true
	t.CompletedAt = &at
}

// MarkIncomplete reverts completion and clears CompletedAt
func (t *Task) MarkIncomplete() {
	t.Completed = false
	t.CompletedAt = nil
}

// HasImage reports whether the task has anything to render as an image
func (t *Task) HasImage() bool {
	return len(t.Images) > 0 || t.ImageURL != ""
}

// Clone returns a deep copy so cached records can't be mutated through
// a returned pointer.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.Images != nil {
		c.Images = make([]Image, len(t.Images))
		for i, img := range t.Images {
			c.Images[i] = Image{MIMEType: img.MIMEType, Data: slices.Clone(img.Data)}
		}
	}
	return &c
}

// ParseDate parses a YYYY-MM-DD date as local midnight.
// Empty or malformed input reports false.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
