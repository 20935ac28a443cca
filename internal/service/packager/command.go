package packager

import (
	"context"
	"errors"
	"fmt"

	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/logger"
	"github.com/tapeops/lto-backup/internal/service/checker"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to the application configuration.
	ConfigPath string
	// SkipChecks disables the pre-flight environment verification gate.
	SkipChecks bool
}

// errApplicationRunning indicates packaging was attempted while the backup
// application is running.
var errApplicationRunning = errors.New("the backup application is running now")

// Run executes the packaging workflow: pre-flight gate, manifest build,
// packaging-tool orchestration, and bundle description output.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "backup-packager")

	// With the pre-flight gate active, an unloadable configuration surfaces
	// as a configuration check failure among the full catalog results.
	// Skipping the gate means packaging would run with defaults, so the load
	// error aborts instead.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		if opts.SkipChecks {
			return fmt.Errorf("load configuration: %w", err)
		}

		logger.WarnKV(ctx, "Configuration is not loadable, verifying with defaults", "error", err)

		cfg = config.Default()
	}

	if !opts.SkipChecks {
		report := checker.NewChecker(cfg, checker.SystemHost(), opts.ConfigPath).Execute(ctx)
		if !report.OK() {
			return fmt.Errorf("%d of %d checks failed: %w",
				report.FailCount(), len(report.Results), checker.ErrChecksFailed)
		}
	}

	if IsApplicationRunningNow(ctx, cfg.Packaging.AppName) {
		return errApplicationRunning
	}

	manifest, err := BuildManifest(&cfg.Packaging)
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}

	logger.InfoKV(ctx, "Manifest built",
		"data_files", len(manifest.DataFiles),
		"hidden_imports", len(manifest.HiddenImports),
		"icon", manifest.IconPath)

	report, err := NewOrchestrator(&cfg.Packaging).Run(ctx, manifest)
	if err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	descriptionPath, err := SaveBundleDescription(cfg.Packaging.DistDir, report)
	if err != nil {
		return fmt.Errorf("save bundle description: %w", err)
	}

	logger.InfoKV(ctx, "Packaging completed",
		"artifact", report.ArtifactPath,
		"bundle_description", descriptionPath)

	return nil
}
