package task

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
)

// DeleteCmd returns the task delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task_id>",
		Short: "Delete a task",
		Long:  "Delete a task by ID (requires confirmation unless --force or --quiet).",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	cmd.Flags().Bool("force", false, "Skip confirmation")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.FormatterFor(cmd)
	force, _ := cmd.Flags().GetBool("force")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	// Get task details for confirmation
	task, err := findTask(ctx, cliInstance, formatter, args[0])
	if err != nil {
		return err
	}

	// Ask for confirmation unless force or quiet mode
	if !force && !formatter.Quiet {
		prompt := fmt.Sprintf("Delete task %s: '%s'?", task.ID, task.Title)
		if !cli.Confirm(cmd.InOrStdin(), os.Stdout, prompt) {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := cliInstance.App.Store.DeleteByID(ctx, task.ID); err != nil {
		return formatter.Fail(cli.ExitError, "DELETE_ERROR", err, "")
	}

	if formatter.Quiet {
		return nil
	}

	if formatter.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"success": true,
			"task_id": task.ID,
		})
	}

	fmt.Printf("✓ Task %s deleted successfully\n", task.ID)
	return nil
}
