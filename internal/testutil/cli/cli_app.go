package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/app"
	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/config"
	"github.com/thenoetrevino/tasknote/internal/testutil"
)

// ExecuteCLICommand executes a CLI command with a test app instance
// This properly injects the app context so commands can access the test database
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithInput(t, testApp, cmd, args, "")
}

// ExecuteCLICommandWithInput is ExecuteCLICommand with stdin set to input
func ExecuteCLICommandWithInput(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string, input string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithContext(t, context.Background(), testApp, cmd, args, strings.NewReader(input))
}

// ExecuteCLICommandWithContext executes a CLI command with a specific context and test app
func ExecuteCLICommandWithContext(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string, stdin io.Reader) (string, error) {
	t.Helper()

	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	cmd.SetArgs(args)
	cmd.SetIn(stdin)

	// Commands pick the app and config up from the context instead of
	// opening the user's database
	ctx = cli.WithApp(ctx, testApp)
	if cli.ConfigFromContext(ctx) == nil {
		ctx = cli.WithConfig(ctx, TestConfig(t))
	}

	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var executeErr error
	output := testutil.CaptureOutput(t, func() {
		executeErr = cmd.ExecuteContext(ctx)
	})

	return output, executeErr
}

// TestConfig returns defaults rooted in a temp data directory
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir()}
	cfg.ColorScheme.Preset = "monochrome"
	cfg.ColorScheme.ApplyDefaults()
	cfg.Database = filepath.Join(cfg.DataDir, "tasknote.db")
	cfg.Socket = filepath.Join(cfg.DataDir, "tasknote.sock")
	cfg.AutosaveDelayMs = 500
	cfg.LogLevel = "info"
	return cfg
}
