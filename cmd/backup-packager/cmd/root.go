package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tapeops/lto-backup/internal/logger"
	"github.com/tapeops/lto-backup/internal/service/packager"
	"github.com/tapeops/lto-backup/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the default logging level when set.
	logLevel string
	// skipChecks disables the pre-flight verification gate.
	skipChecks bool

	// rootCmd represents the base command for packaging the application.
	rootCmd = &cobra.Command{
		Use:   "backup-packager",
		Short: "Bundle the LTO backup application into a single artifact.",
		Long: `Builds the artifact manifest and drives the packaging tool.

Walks the configured module roots and static files into a manifest, invokes
the packaging tool with the derived build specification, and classifies its
output as it streams. The run succeeds only when the expected artifact exists
afterwards - the tool's own exit code is not trusted. A successful run ends
with an advisory smoke test and a bundle description for the deployer.

Unless --skip-checks is given, the full environment verification runs first
and any failed check aborts packaging.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			applyLogLevel()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath: configPath,
				SkipChecks: skipChecks,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the backup-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyLogLevel raises or lowers the global logging level from the flag.
func applyLogLevel() {
	if logLevel == "" {
		return
	}

	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		logger.Warnf(context.Background(), "Unknown log level %q, staying at %s", logLevel, logger.Level())

		return
	}

	logger.SetLevel(level)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: recognized locations)")
	rootCmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "skip the pre-flight environment verification")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "logging level: debug, info, warn or error")
}
