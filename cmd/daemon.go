package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/daemon"
)

// DaemonCmd returns the command that runs the change-notification daemon
func DaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the change-notification daemon",
		Long: `Relay change notifications between tasknote processes over a Unix socket.

Examples:
  tasknote daemon
  tasknote daemon --metrics-addr=127.0.0.1:9464
`,
		Args: cobra.NoArgs,
		RunE: runDaemon,
	}

	cmd.Flags().String("socket", "", "Socket path (default from config)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(cmd.Context())
	if err != nil {
		return cli.WithExitCode(cli.ExitError, err)
	}

	opts := daemon.RunOptions{
		SocketPath:  cfg.Socket,
		MetricsAddr: cfg.MetricsAddr,
	}
	if cmd.Flags().Changed("socket") {
		opts.SocketPath, _ = cmd.Flags().GetString("socket")
	}
	if cmd.Flags().Changed("metrics-addr") {
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}

	if err := daemon.Run(cmd.Context(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		return cli.WithExitCode(cli.ExitError, err)
	}
	return nil
}
