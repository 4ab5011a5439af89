package task

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
)

// DoneCmd returns the task done subcommand
func DoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task_id>",
		Short: "Mark a task as completed",
		Long: `Mark a task as completed and record when.

Completing an already completed task keeps its original completion time.

Examples:
  tasknote task done 3f2a
  tasknote task done 3f2a --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetCompleted(cmd, args[0], true)
		},
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

// UndoneCmd returns the task undone subcommand
func UndoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undone <task_id>",
		Short: "Mark a task as not completed",
		Long:  "Reopen a completed task and clear its completion time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetCompleted(cmd, args[0], false)
		},
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runSetCompleted(cmd *cobra.Command, taskID string, completed bool) error {
	ctx := cmd.Context()
	formatter := cli.FormatterFor(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	task, err := findTask(ctx, cliInstance, formatter, taskID)
	if err != nil {
		return err
	}

	if task.Completed != completed {
		if completed {
			task.MarkCompleted(time.Now())
		} else {
			task.MarkIncomplete()
		}
		if task, err = cliInstance.App.Store.Upsert(ctx, task); err != nil {
			return formatter.Fail(cli.ExitError, "TASK_UPDATE_ERROR", err, "")
		}
	}

	if formatter.Quiet || formatter.JSON {
		return formatter.Success(cli.NewTaskView(task))
	}

	if completed {
		fmt.Printf("✓ Task %s marked as done\n", task.ID)
	} else {
		fmt.Printf("✓ Task %s reopened\n", task.ID)
	}
	return nil
}
