package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the configuration file path.
	configPath string
	// serverAddress overrides the daemon address from config.
	serverAddress string
	// verbose enables debug logging.
	verbose bool

	// rootCmd represents the base command for managing alarms.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Manage the alarms of a running alarm-clockd.",
		Long: `Creates, edits, enables, snoozes, dismisses and deletes alarms through the
alarm clock daemon, and shows the next armed wake-up.

The daemon address is read from the configuration file unless --server is given.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				logger.SetLevel(zapcore.DebugLevel)
			}
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run executes op against the daemon with graceful interruption.
func run(cmd *cobra.Command, op client.Operation) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return client.Run(ctx, &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
		Output:        cmd.OutOrStdout(),
	}, op)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "daemon gRPC address, overrides grpc_addr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newListCommand(),
		newShowCommand(),
		newCreateCommand(),
		newEditCommand(),
		newEnableCommand(true),
		newEnableCommand(false),
		newSnoozeCommand(),
		newDismissCommand(),
		newDeleteCommand(),
		newNextCommand(),
		newWatchCommand(),
	)
}
