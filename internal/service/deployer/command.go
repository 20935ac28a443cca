package deployer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/logger"
	"github.com/tapeops/lto-backup/internal/version"
)

// Options contains inputs for the deployment-artifact generator.
type Options struct {
	// ConfigPath is an optional path to the application configuration.
	ConfigPath string
	// HasServiceManager tells the generator whether to emit a service unit.
	// The CLI probes the host for the service-manager directory; tests and
	// cross-host generation set it explicitly.
	HasServiceManager bool
}

const (
	readmeFilename        = "README.md"
	installScriptFilename = "install.sh"

	scriptFileMode os.FileMode = 0o755
	textFileMode   os.FileMode = 0o644
)

// HostHasServiceManager reports whether the local host carries a systemd
// unit directory. Kept out of Run so generation stays testable without
// probing live host state.
func HostHasServiceManager() bool {
	info, err := os.Stat(ServiceManagerDir)

	return err == nil && info.IsDir()
}

// Run generates the operator README, the installation script, and (when the
// capability flag is set) the service unit, all alongside the built artifact.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "backup-deployer")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	artifactPath := filepath.Join(cfg.Packaging.DistDir, cfg.Packaging.AppName)
	if _, err := os.Stat(artifactPath); err != nil {
		return fmt.Errorf("built artifact %s: %w", artifactPath, err)
	}

	data := &templateData{
		ArtifactName:  cfg.Packaging.AppName,
		InstallDir:    InstallDir,
		InstalledPath: filepath.Join(InstallDir, cfg.Packaging.AppName),
		BinSymlink:    BinSymlink,
		LogDir:        LogDir,
		UnitDir:       ServiceManagerDir,
		UnitName:      UnitFilename,
		RestartDelay:  restartDelaySeconds,
		Version:       version.Short(),
	}

	unitText, err := render("unit", serviceUnitTemplate, data)
	if err != nil {
		return err
	}

	data.UnitText = unitText

	outputs := []struct {
		name     string
		template string
		mode     os.FileMode
	}{
		{readmeFilename, readmeTemplate, textFileMode},
		{installScriptFilename, installScriptTemplate, scriptFileMode},
	}

	for _, output := range outputs {
		text, err := render(output.name, output.template, data)
		if err != nil {
			return err
		}

		path := filepath.Join(cfg.Packaging.DistDir, output.name)
		if err := os.WriteFile(path, []byte(text), output.mode); err != nil {
			return fmt.Errorf("write %s: %w", output.name, err)
		}

		logger.InfoKV(ctx, "Deployment artifact written", "path", path)
	}

	if opts.HasServiceManager {
		path := filepath.Join(cfg.Packaging.DistDir, UnitFilename)
		if err := os.WriteFile(path, []byte(unitText), textFileMode); err != nil {
			return fmt.Errorf("write %s: %w", UnitFilename, err)
		}

		logger.InfoKV(ctx, "Service unit written", "path", path)
	} else {
		logger.Info(ctx, "No service manager on target, unit generation skipped")
	}

	return nil
}
