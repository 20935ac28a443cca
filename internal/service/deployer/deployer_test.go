package deployer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tapeops/lto-backup/internal/service/packager"
)

// prepareDist creates a dist directory with a fake built artifact.
func prepareDist(t *testing.T) {
	t.Helper()

	require.NoError(t, os.MkdirAll("dist", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("dist", "lto_backup"), []byte("binary"), 0o755))

	// Pin configuration resolution to this directory.
	require.NoError(t, os.WriteFile("config.yaml", []byte("packaging:\n  dist_dir: dist\n"), 0o600))
}

// TestRunGeneratesArtifacts checks all three outputs land next to the artifact
// and reference the install path.
func TestRunGeneratesArtifacts(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	prepareDist(t)

	err := Run(context.Background(), &Options{HasServiceManager: true})
	require.NoError(t, err)

	readme, err := os.ReadFile(filepath.Join("dist", "README.md"))
	require.NoError(t, err)
	require.Contains(t, string(readme), InstallDir)

	script, err := os.ReadFile(filepath.Join("dist", "install.sh"))
	require.NoError(t, err)
	require.Contains(t, string(script), `[ "$(id -u)" -ne 0 ]`)
	require.Contains(t, string(script), InstallDir)
	require.Contains(t, string(script), LogDir)
	require.Contains(t, string(script), "config.yaml.example")

	info, err := os.Stat(filepath.Join("dist", "install.sh"))
	require.NoError(t, err)
	require.Equal(t, scriptFileMode, info.Mode().Perm())

	unit, err := os.ReadFile(filepath.Join("dist", UnitFilename))
	require.NoError(t, err)
	require.Contains(t, string(unit), "Restart=on-failure")
	require.Contains(t, string(unit), "RestartSec=10")
	require.Contains(t, string(unit), filepath.Join(InstallDir, "lto_backup")+" scheduler")
}

// TestRunWithoutServiceManagerSkipsUnit verifies the capability flag gates
// unit emission.
func TestRunWithoutServiceManagerSkipsUnit(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	prepareDist(t)

	err := Run(context.Background(), &Options{HasServiceManager: false})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join("dist", UnitFilename))
	require.ErrorIs(t, err, os.ErrNotExist)

	// README and installer are generated regardless.
	_, err = os.Stat(filepath.Join("dist", "README.md"))
	require.NoError(t, err)
}

// TestRunFailsWithoutArtifact ensures generation refuses when nothing was built.
func TestRunFailsWithoutArtifact(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile("config.yaml", []byte("packaging:\n  dist_dir: dist\n"), 0o600))

	err := Run(context.Background(), &Options{})
	require.Error(t, err)
}

// TestSeedConfigIsIdempotent verifies an existing configuration is never
// overwritten by repeated seeding.
func TestSeedConfigIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	examplePath := filepath.Join(dir, "config.yaml.example")
	configPath := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(examplePath, []byte("tape_dev: /dev/nst0\n"), 0o644))

	seeded, err := seedConfig(examplePath, configPath)
	require.NoError(t, err)
	require.True(t, seeded)

	// Operator edits the configuration.
	require.NoError(t, os.WriteFile(configPath, []byte("tape_dev: /dev/nst1\n"), 0o644))

	seeded, err = seedConfig(examplePath, configPath)
	require.NoError(t, err)
	require.False(t, seeded)

	contents, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, "tape_dev: /dev/nst1\n", string(contents))
}

// TestSeedConfigWithoutExample tolerates a missing example file.
func TestSeedConfigWithoutExample(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seeded, err := seedConfig(filepath.Join(dir, "missing.example"), filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	require.False(t, seeded)
}

// TestApplyArtifactVerifiesChecksum checks the checksum-verified swap into an
// install directory, including replacement of an older copy.
func TestApplyArtifactVerifiesChecksum(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	prepareDist(t)

	report := &packager.BuildReport{
		ArtifactPath: filepath.Join("dist", "lto_backup"),
		SizeBytes:    6,
	}

	descriptionPath, err := packager.SaveBundleDescription("dist", report)
	require.NoError(t, err)

	description, err := packager.LoadBundleDescription(descriptionPath)
	require.NoError(t, err)

	installDir := filepath.Join(dir, "opt")
	require.NoError(t, os.MkdirAll(installDir, 0o755))

	// Pre-existing stale copy gets replaced.
	require.NoError(t, os.WriteFile(filepath.Join(installDir, "lto_backup"), []byte("stale"), 0o755))

	installedPath, err := applyArtifact("dist", installDir, description)
	require.NoError(t, err)

	contents, err := os.ReadFile(installedPath)
	require.NoError(t, err)
	require.Equal(t, "binary", string(contents))

	// A tampered checksum must be rejected.
	description.Checksum = "dGFtcGVyZWQ="
	_, err = applyArtifact("dist", installDir, description)
	require.Error(t, err)
}
