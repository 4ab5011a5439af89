package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/cli/backup"
	"github.com/thenoetrevino/tasknote/internal/cli/migrate"
	"github.com/thenoetrevino/tasknote/internal/cli/task"
	"github.com/thenoetrevino/tasknote/internal/cli/watch"
	"github.com/thenoetrevino/tasknote/internal/config"
	"github.com/thenoetrevino/tasknote/internal/logging"
)

var (
	configPath string
	logFile    io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "tasknote",
	Short: "tasknote - tasks with notes, dates and images",
	Long: `tasknote keeps tasks with a title, caption, markdown memo, link, date
window and images in a local SQLite file.

Run "tasknote daemon" to let running tasknote processes see each other's
changes.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $XDG_CONFIG_HOME/tasknote/config.yaml)")

	rootCmd.AddCommand(task.TaskCmd())
	rootCmd.AddCommand(backup.ExportCmd())
	rootCmd.AddCommand(backup.ImportCmd())
	rootCmd.AddCommand(watch.WatchCmd())
	rootCmd.AddCommand(migrate.MigrateCmd())
	rootCmd.AddCommand(DaemonCmd())
}

// setup loads the config once for every command and starts logging
func setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		return cli.WithExitCode(cli.ExitError, err)
	}

	// The daemon usually runs under a supervisor that collects stderr
	if cmd.Name() == "daemon" {
		slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel))
	} else if logFile, err = logging.Init(cfg.DataDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	cmd.SetContext(cli.WithConfig(cmd.Context(), cfg))
	return nil
}

// Execute runs the command line until it finishes or the process is
// interrupted. Errors that did not come from a command, such as unknown
// flags, are reported here as usage errors.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var coded *cli.CodedError
	if errors.As(err, &coded) {
		return err
	}

	fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
	fmt.Fprintln(os.Stderr, "💡 Suggestion: Run with --help for usage")
	return cli.WithExitCode(cli.ExitUsage, err)
}
