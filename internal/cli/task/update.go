package task

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// UpdateCmd returns the task update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task_id>",
		Short: "Update a task",
		Long: `Update the fields of an existing task. Only the flags you pass change.

Examples:
  tasknote task update 3f2a --title="Buy oat milk"
  tasknote task update 3f2a --memo=- < notes.md
  tasknote task update 3f2a --image=receipt.jpg
  tasknote task update 3f2a --clear-images
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	addFieldFlags(cmd)
	cmd.Flags().Bool("clear-images", false, "Remove every attached image")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
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

	task, err := findTask(ctx, cliInstance, formatter, args[0])
	if err != nil {
		return err
	}

	if clearImages, _ := cmd.Flags().GetBool("clear-images"); clearImages {
		task.Images = nil
	}
	if err := applyFieldFlags(cmd, task, cmd.InOrStdin()); err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_INPUT", err, "")
	}
	if err := models.ValidateDates(task.StartDate, task.EndDate); err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_DATE", err, "Dates use the YYYY-MM-DD format")
	}

	// Edits go through an autosave session, flushed before the process exits
	session := cliInstance.App.NewSession()
	defer session.Close()

	if err := session.Edit(*task); err != nil {
		return formatter.Fail(cli.ExitError, "TASK_UPDATE_ERROR", err, "")
	}
	written, err := session.Flush(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "TASK_UPDATE_ERROR", err, "")
	}
	if written == nil {
		return formatter.Fail(cli.ExitError, "TASK_UPDATE_ERROR", errors.New("nothing was saved"), "")
	}

	if formatter.Quiet || formatter.JSON {
		return formatter.Success(cli.NewTaskView(written))
	}

	fmt.Printf("✓ Task %s updated successfully\n", written.ID)
	return nil
}
