package deployer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/logger"
	"github.com/tapeops/lto-backup/internal/service/packager"
)

// errRootRequired is returned when the direct install runs without privileges.
var errRootRequired = errors.New("installation requires root privileges")

// exampleConfigFilename seeds the initial configuration on first install.
const exampleConfigFilename = "config.yaml.example"

// Install applies the built artifact directly into the system layout, without
// going through the generated shell script. The artifact is verified against
// the bundle description's checksum before it replaces the installed copy.
func Install(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "backup-deployer")

	if os.Geteuid() != 0 {
		return errRootRequired
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	distDir := cfg.Packaging.DistDir

	description, err := packager.LoadBundleDescription(filepath.Join(distDir, packager.BundleFilename))
	if err != nil {
		return fmt.Errorf("load bundle description: %w", err)
	}

	for _, dir := range []string{InstallDir, LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	installedPath, err := applyArtifact(distDir, InstallDir, description)
	if err != nil {
		return fmt.Errorf("apply artifact: %w", err)
	}

	logger.InfoKV(ctx, "Artifact installed", "path", installedPath)

	if err := relink(installedPath, BinSymlink); err != nil {
		return fmt.Errorf("link %s: %w", BinSymlink, err)
	}

	seeded, err := seedConfig(exampleConfigFilename, filepath.Join(InstallDir, config.DefaultConfigFilename))
	if err != nil {
		return fmt.Errorf("seed configuration: %w", err)
	}

	if seeded {
		logger.Info(ctx, "Default configuration seeded, edit it before use")
	} else {
		logger.Info(ctx, "Existing configuration kept")
	}

	if opts.HasServiceManager {
		if err := writeUnit(cfg, ServiceManagerDir); err != nil {
			return fmt.Errorf("install service unit: %w", err)
		}

		logger.InfoKV(ctx, "Service unit installed", "path", filepath.Join(ServiceManagerDir, UnitFilename))
	}

	return nil
}

// applyArtifact replaces the installed artifact with the freshly built one,
// verifying the bundle checksum during the swap.
func applyArtifact(distDir, installDir string, description *packager.BundleDescription) (string, error) {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(distDir, description.Artifact)))
	if err != nil {
		return "", err
	}

	checksum, err := base64.StdEncoding.DecodeString(description.Checksum)
	if err != nil {
		return "", fmt.Errorf("decode checksum: %w", err)
	}

	targetPath := filepath.Join(installDir, description.Artifact)

	if _, err = os.Stat(targetPath); err != nil && os.IsNotExist(err) {
		var target *os.File

		if target, err = os.Create(filepath.Clean(targetPath)); err != nil {
			return "", err
		}

		_ = target.Close()
	}

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: 0o755,
		Checksum:   checksum,
		Hash:       packager.DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return "", err
	}

	oldPath := targetPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return targetPath, nil
}

// relink points the PATH symlink at the installed artifact.
func relink(targetPath, linkPath string) error {
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return err
		}
	}

	return os.Symlink(targetPath, linkPath)
}

// seedConfig copies the example configuration into place only when no
// configuration exists yet. Re-running an install never touches an existing
// configuration.
func seedConfig(examplePath, configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}

	example, err := os.ReadFile(filepath.Clean(examplePath))
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to seed from; the operator writes the config by hand.
			return false, nil
		}

		return false, err
	}

	if err := os.WriteFile(configPath, example, textFileMode); err != nil {
		return false, err
	}

	return true, nil
}

// writeUnit renders and installs the service unit into the unit directory.
func writeUnit(cfg *config.Config, unitDir string) error {
	data := &templateData{
		InstallDir:    InstallDir,
		InstalledPath: filepath.Join(InstallDir, cfg.Packaging.AppName),
		RestartDelay:  restartDelaySeconds,
	}

	unitText, err := render("unit", serviceUnitTemplate, data)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(unitDir, UnitFilename), []byte(unitText), textFileMode)
}
