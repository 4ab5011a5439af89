package task

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// findTask loads a task or reports TASK_NOT_FOUND through formatter
func findTask(ctx context.Context, c *cli.CLI, formatter *cli.OutputFormatter, id string) (*models.Task, error) {
	task, found, err := c.App.Store.GetByID(ctx, id)
	if err != nil {
		return nil, formatter.Fail(cli.ExitError, "TASK_FETCH_ERROR", err, "")
	}
	if !found {
		return nil, formatter.Fail(cli.ExitNotFound, "TASK_NOT_FOUND",
			fmt.Errorf("task %s not found", id),
			"Use 'tasknote task list' to see available tasks")
	}
	return task, nil
}
