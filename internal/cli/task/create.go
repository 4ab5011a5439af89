package task

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// CreateCmd returns the task create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Long: `Create a new task with specified attributes.

Examples:
  # Simple task (human-readable output)
  tasknote task create --title="Buy milk"

  # JSON output for agents
  tasknote task create --title="Buy milk" --json

  # Quiet mode for bash capture
  TASK_ID=$(tasknote task create --title="Buy milk" --quiet)

  # Full example with all options
  tasknote task create \
    --title="Quarterly report" \
    --caption="Numbers for Q3" \
    --memo=- \
    --start=2024-10-01 --end=2024-10-04 \
    --link=https://example.com/q3 \
    --image=chart.png
`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	addFieldFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
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

	draft := cliInstance.App.Store.CreateDraft("")
	if err := applyFieldFlags(cmd, &draft, cmd.InOrStdin()); err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_INPUT", err, "")
	}
	if err := models.ValidateDates(draft.StartDate, draft.EndDate); err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_DATE", err, "Dates use the YYYY-MM-DD format")
	}

	task, err := cliInstance.App.Store.Upsert(ctx, &draft)
	if err != nil {
		return formatter.Fail(cli.ExitError, "TASK_CREATE_ERROR", err, "")
	}

	view := cli.NewTaskView(task)
	if formatter.Quiet || formatter.JSON {
		return formatter.Success(view)
	}

	// Human-readable output
	fmt.Printf("✓ Task '%s' created successfully (ID: %s)\n", task.Title, task.ID)
	return nil
}
