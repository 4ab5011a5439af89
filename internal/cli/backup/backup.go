// Package backup holds the export and import commands
package backup

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/transfer"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every task to a JSON file",
		Long: `Write every task, images included, as a JSON export document.

Without --out the document is written to stdout.

Examples:
  tasknote export > tasks.json
  tasknote export --out=tasks.json
`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")
	cli.AddOutputFlags(cmd)

	return cmd
}

// ExportSummary is reported after exporting to a file
type ExportSummary struct {
	Exported int    `json:"exported"`
	Path     string `json:"path"`
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.FormatterFor(cmd)
	out, _ := cmd.Flags().GetString("out")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	if out == "" || out == "-" {
		if _, err := transfer.Export(ctx, cliInstance.App.Store, os.Stdout, time.Now()); err != nil {
			return formatter.Fail(cli.ExitError, "EXPORT_ERROR", err, "")
		}
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return formatter.Fail(cli.ExitError, "EXPORT_ERROR", err, "Check that the directory exists and is writable")
	}
	count, err := transfer.Export(ctx, cliInstance.App.Store, f, time.Now())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return formatter.Fail(cli.ExitError, "EXPORT_ERROR", err, "")
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return formatter.Success(ExportSummary{Exported: count, Path: out})
	}

	fmt.Printf("✓ Exported %d tasks to %s\n", count, out)
	return nil
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from a JSON file",
		Long: `Read an export document, or a bare JSON array of tasks, and save every
task in it. Tasks whose id already exists are replaced.

Without --in the document is read from stdin.

Examples:
  tasknote import --in=tasks.json
  tasknote import < tasks.json
`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}

	cmd.Flags().StringP("in", "i", "", "Read from this file instead of stdin")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.FormatterFor(cmd)
	in, _ := cmd.Flags().GetString("in")

	var r io.Reader = cmd.InOrStdin()
	if in != "" && in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return formatter.Fail(cli.ExitError, "IMPORT_ERROR", err, "")
		}
		defer f.Close()
		r = f
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

	res, err := transfer.Import(ctx, cliInstance.App.Store, r)
	if errors.Is(err, transfer.ErrMalformedImport) {
		return formatter.Fail(cli.ExitDataErr, "MALFORMED_IMPORT", err,
			"Expected a tasknote export or a JSON array of tasks")
	}
	if err != nil {
		return formatter.Fail(cli.ExitError, "IMPORT_ERROR", err, "")
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return formatter.Success(res)
	}

	fmt.Printf("✓ Imported %d tasks\n", res.Imported)
	if res.Skipped > 0 {
		fmt.Printf("  Skipped %d entries that were not tasks\n", res.Skipped)
	}
	if res.SkippedImages > 0 {
		fmt.Printf("  Dropped %d invalid images\n", res.SkippedImages)
	}
	return nil
}
