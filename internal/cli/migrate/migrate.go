// Package migrate holds the command that upgrades the database file
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/config"
	"github.com/thenoetrevino/tasknote/internal/database"
	"github.com/thenoetrevino/tasknote/internal/events"
)

// Result describes a migrate run
type Result struct {
	Path      string `json:"path"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Announced bool   `json:"announced"`
}

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the database file to the current schema",
		Long: `Apply pending schema migrations to the database file.

When the schema changes, running tasknote processes are told through the
daemon to reopen the file.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.FormatterFor(cmd)

	cfg, err := cli.LoadConfig(ctx)
	if err != nil {
		return formatter.Fail(cli.ExitError, "INITIALIZATION_ERROR", err, "")
	}

	res, err := Migrate(ctx, cfg)
	if errors.Is(err, database.ErrSchemaTooNew) {
		return formatter.Fail(cli.ExitDataErr, "SCHEMA_TOO_NEW", err, "Upgrade tasknote to open this database")
	}
	if err != nil {
		return formatter.Fail(cli.ExitError, "MIGRATION_ERROR", err, "")
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return formatter.Success(res)
	}

	if res.From == res.To {
		fmt.Printf("✓ Database already at schema v%d\n", res.To)
		return nil
	}
	fmt.Printf("✓ Migrated %s from v%d to v%d\n", res.Path, res.From, res.To)
	return nil
}

// Migrate brings the file at cfg.Database up to date and announces a schema
// change on the daemon socket when one was applied.
func Migrate(ctx context.Context, cfg *config.Config) (Result, error) {
	res := Result{Path: cfg.Database}

	from, err := database.FileVersion(ctx, cfg.Database)
	if err != nil {
		return res, err
	}
	if from > database.SchemaVersion() {
		return res, fmt.Errorf("%w (file v%d, supported v%d)", database.ErrSchemaTooNew, from, database.SchemaVersion())
	}
	res.From = from

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return res, err
	}
	to, err := database.UserVersion(ctx, db)
	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return res, err
	}
	res.To = to

	if to > from {
		res.Announced = announce(ctx, cfg.Socket)
	}
	return res, nil
}

// announce publishes schema_changed, reporting whether a daemon took it
func announce(ctx context.Context, socketPath string) bool {
	client, err := events.NewClient(socketPath)
	if err != nil {
		return false
	}
	if err := client.Connect(ctx); err != nil {
		slog.Debug("daemon not available", "error", events.ClassifyDaemonError(err))
		return false
	}

	event := events.Event{Type: events.EventSchemaChanged, Timestamp: time.Now()}
	sent := events.PublishWithRetry(client, event, 3) == nil

	if err := client.Close(); err != nil {
		slog.Warn("failed to close event client", "error", err)
		return false
	}
	return sent
}
