package task

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/cli/styles"
	"github.com/thenoetrevino/tasknote/internal/filter"
)

// ListCmd returns the task list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks ordered by start date (creation time when no start date is set).

Examples:
  tasknote task list
  tasknote task list --status=open --query=report
  tasknote task list --from=2024-10-01 --to=2024-10-31 --json
`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().String("status", "all", "Filter by status: all, open or done")
	cmd.Flags().String("query", "", "Match title, caption or memo (case-insensitive)")
	cmd.Flags().String("from", "", "Only tasks whose dates reach this day (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Only tasks starting on or before this day (YYYY-MM-DD)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.FormatterFor(cmd)

	statusFlag, _ := cmd.Flags().GetString("status")
	query, _ := cmd.Flags().GetString("query")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	status, err := filter.ParseStatus(statusFlag)
	if err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_STATUS", err, "Valid statuses are: all, open, done")
	}
	opts := filter.Options{Status: status, Query: query, From: from, To: to}
	if err := opts.Validate(); err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_DATE", err, "Dates use the YYYY-MM-DD format")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	tasks, err := cliInstance.App.Store.ListAll(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "TASK_LIST_ERROR", err, "")
	}
	tasks = filter.Apply(tasks, opts)

	if formatter.Quiet {
		for _, task := range tasks {
			fmt.Println(task.ID)
		}
		return nil
	}

	if formatter.JSON {
		views := make([]cli.TaskView, 0, len(tasks))
		for _, task := range tasks {
			views = append(views, cli.NewTaskView(task))
		}
		return formatter.Success(views)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	now := time.Now()
	for _, task := range tasks {
		fmt.Println(styles.RenderTaskLine(task, now))
	}
	return nil
}
