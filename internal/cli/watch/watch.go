package watch

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/cli/styles"
	"github.com/thenoetrevino/tasknote/internal/filter"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the task list and keep it current",
		Long: `Print the task list and print it again whenever tasks change, including
changes made by other tasknote processes. Stop with Ctrl+C.

Examples:
  tasknote watch
  tasknote watch --status=open
`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().String("status", "all", "Filter by status: all, open or done")
	cmd.Flags().String("query", "", "Match title, caption or memo (case-insensitive)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := &cli.OutputFormatter{}

	statusFlag, _ := cmd.Flags().GetString("status")
	query, _ := cmd.Flags().GetString("query")

	status, err := filter.ParseStatus(statusFlag)
	if err != nil {
		return formatter.Fail(cli.ExitValidation, "INVALID_STATUS", err, "Valid statuses are: all, open, done")
	}
	opts := filter.Options{Status: status, Query: query}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	render := func(tasks []*models.Task) {
		tasks = filter.Apply(tasks, opts)
		now := time.Now()
		fmt.Println(styles.SubtitleStyle.Render(fmt.Sprintf("── %d tasks · %s ──", len(tasks), now.Format("15:04:05"))))
		for _, task := range tasks {
			fmt.Println(styles.RenderTaskLine(task, now))
		}
	}

	w := New(cliInstance.App, cliInstance.Config.Database, render)
	if err := w.Run(ctx); err != nil {
		return formatter.Fail(cli.ExitError, "WATCH_ERROR", err, "")
	}
	return nil
}
