package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tapeops/lto-backup/internal/logger"
	"github.com/tapeops/lto-backup/internal/service/deployer"
	"github.com/tapeops/lto-backup/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the default logging level when set.
	logLevel string
	// forceUnit emits the service unit even when this host has no systemd
	// directory, for generating artifacts targeting another host.
	forceUnit bool

	// rootCmd represents the base command for generating deployment helpers.
	rootCmd = &cobra.Command{
		Use:   "backup-deployer",
		Short: "Generate deployment helpers for a packaged build.",
		Long: `Generates the operator README, the installation script, and the
service-manager unit next to the built artifact.

The unit is emitted only when the target host carries a systemd unit
directory; pass --force-unit to emit it regardless, for example when the
artifacts are generated on one host and installed on another.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			applyLogLevel()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &deployer.Options{
				ConfigPath:        configPath,
				HasServiceManager: forceUnit || deployer.HostHasServiceManager(),
			}

			return deployer.Run(ctx, options)
		},
	}

	// installCmd applies the built artifact directly into the system layout.
	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Install the packaged artifact into the system directly.",
		Long: `Installs the built artifact into the system layout without going
through the generated shell script: verifies it against the bundle
description's checksum, places it under the install directory, links it on
PATH, creates the log directory, and seeds a default configuration only when
none exists. Requires root privileges.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &deployer.Options{
				ConfigPath:        configPath,
				HasServiceManager: deployer.HostHasServiceManager(),
			}

			return deployer.Install(ctx, options)
		},
	}
)

// Execute runs the backup-deployer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(installCmd)

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
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: recognized locations)")
	rootCmd.Flags().BoolVar(&forceUnit, "force-unit", false, "emit the service unit even without a local systemd directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "logging level: debug, info, warn or error")
}
