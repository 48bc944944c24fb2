// Package cli implements svcschedctl, the control CLI that talks to a
// running svcschedd daemon's admin API. Grounded on the reference engine's
// internal/cli (root.go's persistent-flag/client wiring, the one-file-per-
// verb command layout).
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/InitWare/Neo-InitWare/internal/logging"
)

var (
	flagServer    string
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

func defaultServer() string {
	if s := os.Getenv("SVCSCHED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:7770"
}

// NewRootCmd creates the root cobra command for svcschedctl.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "svcschedctl",
		Short: "svcschedctl — control client for the svcsched daemon",
		Long:  "svcschedctl starts, stops, and inspects units managed by a running svcschedd daemon.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "svcschedd admin API URL (or SVCSCHED_SERVER env)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newUnitOpCmd("start", "start", "Start a unit"),
		newUnitOpCmd("stop", "stop", "Stop a unit"),
		newUnitOpCmd("restart", "restart", "Restart a unit"),
		newUnitOpCmd("reload", "reload", "Reload a unit"),
		newUnitOpCmd("verify", "verify", "Enqueue a Verify job (dispatched through the restarter's start entry)"),
		newUnitOpCmd("try-start", "try-start", "Enqueue a TryStart job (dispatched like start; unit state is not checked)"),
		newUnitOpCmd("try-restart", "try-restart", "Enqueue a TryRestart job (one start call; unit state is not checked)"),
		newUnitOpCmd("try-reload", "try-reload", "Enqueue a TryReload job (dispatched like reload; unit state is not checked)"),
		newUnitOpCmd("reload-or-start", "reload-or-start", "Enqueue a ReloadOrStart job (dispatched like reload; unit state is not checked)"),
		newUnitOpCmd("restart-or-start", "restart-or-start", "Enqueue a RestartOrStart job (one start call; unit state is not checked)"),
		newStatusCmd(),
		newListUnitsCmd(),
	)

	return root
}
