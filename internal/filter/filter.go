// Package filter narrows a task list the way the list view does: by
// completion status, free-text query and date window.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/tasknote/internal/models"
)

// Status selects tasks by completion
type Status string

const (
	StatusAll  Status = "all"
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

// ParseStatus accepts all, open or done; empty means all
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusOpen:
		return StatusOpen, nil
	case StatusDone:
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status %q (must be all, open or done)", s)
}

// Options describes a filter. Zero values match everything.
type Options struct {
	Status Status
	// Query matches title, caption and memo, case-insensitively
	Query string
	// From and To are YYYY-MM-DD bounds on the task's date window
	From string
	To   string
}

// Validate checks the date bounds
func (o Options) Validate() error {
	return models.ValidateDates(o.From, o.To)
}

// Apply returns the tasks matching opts, preserving order
func Apply(tasks []*models.Task, opts Options) []*models.Task {
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	from, hasFrom := models.ParseDate(opts.From)
	to, hasTo := models.ParseDate(opts.To)

	out := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if !matchStatus(task, opts.Status) {
			continue
		}
		if query != "" && !matchQuery(task, query) {
			continue
		}
		if (hasFrom || hasTo) && !overlaps(task, from, hasFrom, to, hasTo) {
			continue
		}
		out = append(out, task)
	}
	return out
}

func matchStatus(task *models.Task, status Status) bool {
	switch status {
	case StatusOpen:
		return !task.Completed
	case StatusDone:
		return task.Completed
	}
	return true
}

func matchQuery(task *models.Task, query string) bool {
	return strings.Contains(strings.ToLower(task.Title), query) ||
		strings.Contains(strings.ToLower(task.Caption), query) ||
		strings.Contains(strings.ToLower(task.Memo), query)
}

// overlaps compares the task's window against [from, to]. A task without an
// end date occupies only its start day; a task without a start date is
// placed on the day it was created.
func overlaps(task *models.Task, from time.Time, hasFrom bool, to time.Time, hasTo bool) bool {
	start := task.ScheduleTime().In(time.Local)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)

	end := start
	if e, ok := models.ParseDate(task.EndDate); ok && !e.Before(start) {
		end = e
	}

	if hasFrom && end.Before(from) {
		return false
	}
	if hasTo && start.After(to) {
		return false
	}
	return true
}
