package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/thenoetrevino/tasknote/internal/models"
)

const taskColumns = `id, title, caption, memo, link, start_date, end_date, image_url,
	image_blob, created_at, updated_at, completed_at, completed`

// TaskRepo reads and writes task records
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo wraps an open database
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// taskRow is a task as stored, before images are attached
type taskRow struct {
	task       *models.Task
	legacyBlob []byte
}

func scanTask(s rowScanner) (*taskRow, error) {
	var (
		t           models.Task
		blob        []byte
		createdAt   string
		updatedAt   string
		completedAt sql.NullString
	)
	if err := s.Scan(
		&t.ID, &t.Title, &t.Caption, &t.Memo, &t.Link, &t.StartDate, &t.EndDate, &t.ImageURL,
		&blob, &createdAt, &updatedAt, &completedAt, &t.Completed,
	); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = nullToTimePtr(completedAt); err != nil {
		return nil, err
	}

	return &taskRow{task: &t, legacyBlob: blob}, nil
}

// attachImages sets the canonical image sequence. A row written before
// multi-image support reads as a one-element sequence.
func (r *taskRow) attachImages(images []models.Image) *models.Task {
	switch {
	case len(images) > 0:
		r.task.Images = images
	case len(r.legacyBlob) > 0:
		r.task.Images = []models.Image{{
			MIMEType: mimetype.Detect(r.legacyBlob).String(),
			Data:     r.legacyBlob,
		}}
	}
	return r.task
}

// GetTask retrieves one task by id
func (r *TaskRepo) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}

	images, err := r.imagesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.attachImages(images), nil
}

// GetAllTasks retrieves every task in storage order
func (r *TaskRepo) GetAllTasks(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var taskRows []*taskRow
	for rows.Next() {
		row, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		taskRows = append(taskRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := r.allImages(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(taskRows))
	for _, row := range taskRows {
		tasks = append(tasks, row.attachImages(images[row.task.ID]))
	}
	return tasks, nil
}

// PutTask writes the record and replaces its images in one transaction
func (r *TaskRepo) PutTask(ctx context.Context, task *models.Task) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (`+taskColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				caption = excluded.caption,
				memo = excluded.memo,
				link = excluded.link,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				image_url = excluded.image_url,
				image_blob = NULL,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				completed_at = excluded.completed_at,
				completed = excluded.completed`,
			task.ID, task.Title, task.Caption, task.Memo, task.Link,
			task.StartDate, task.EndDate, task.ImageURL,
			formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
			timePtrToNull(task.CompletedAt), task.Completed,
		)
		if err != nil {
			return fmt.Errorf("failed to put task %s: %w", task.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM task_images WHERE task_id = ?`, task.ID); err != nil {
			return fmt.Errorf("failed to clear images for %s: %w", task.ID, err)
		}

		for i, img := range task.Images {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO task_images (task_id, position, mime_type, data) VALUES (?, ?, ?, ?)`,
				task.ID, i, img.MIMEType, img.Data,
			)
			if err != nil {
				return fmt.Errorf("failed to store image %d for %s: %w", i, task.ID, err)
			}
		}
		return nil
	})
}

// DeleteTask removes a task; its images go with it via ON DELETE CASCADE
func (r *TaskRepo) DeleteTask(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

func (r *TaskRepo) imagesFor(ctx context.Context, id string) ([]models.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mime_type, data FROM task_images WHERE task_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get images for %s: %w", id, err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.MIMEType, &img.Data); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *TaskRepo) allImages(ctx context.Context) (map[string][]models.Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, mime_type, data FROM task_images ORDER BY task_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make(map[string][]models.Image)
	for rows.Next() {
		var (
			taskID string
			img    models.Image
		)
		if err := rows.Scan(&taskID, &img.MIMEType, &img.Data); err != nil {
			return nil, err
		}
		images[taskID] = append(images[taskID], img)
	}
	return images, rows.Err()
}
