package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tapeops/lto-backup/internal/logger"
	"github.com/tapeops/lto-backup/internal/service/checker"
	"github.com/tapeops/lto-backup/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the default logging level when set.
	logLevel string

	// rootCmd represents the base command for environment verification.
	rootCmd = &cobra.Command{
		Use:   "backup-checker",
		Short: "Verify the host is ready to run the LTO backup application.",
		Long: `Pre-flight verification of a target host for the LTO backup application.

Evaluates a fixed catalog of checks in order: required and optional utilities,
runtime modules, tape device access, runtime directories, and configuration
presence and syntax. Every check always runs, so one invocation reports the
full defect list. The exit status is nonzero only when a check fails;
warnings are advisory and never change the disposition.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			applyLogLevel()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return checker.Run(ctx, &checker.Options{ConfigPath: configPath})
		},
	}
)

// Execute runs the backup-checker CLI and exits with non-zero status on error.
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
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "logging level: debug, info, warn or error")
}
