package checker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/domain/check"
)

// fakeInfo is a minimal fs.FileInfo for fake host responses.
type fakeInfo struct {
	name string
	dir  bool
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return 0 }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.dir }
func (f fakeInfo) Sys() any           { return nil }

// fakeHost answers probes from in-memory maps so no real system state is touched.
type fakeHost struct {
	tools         map[string]bool
	modules       map[string]bool
	files         map[string]fakeInfo
	deviceBlocked map[string]bool
	dirBlocked    map[string]bool
	contents      map[string][]byte
}

func (h *fakeHost) LookupTool(name string) error {
	if h.tools[name] {
		return nil
	}

	return os.ErrNotExist
}

func (h *fakeHost) LoadModule(_ context.Context, name string) error {
	if h.modules[name] {
		return nil
	}

	return os.ErrNotExist
}

func (h *fakeHost) Stat(path string) (os.FileInfo, error) {
	if info, ok := h.files[path]; ok {
		return info, nil
	}

	return nil, os.ErrNotExist
}

func (h *fakeHost) ProbeDeviceWrite(path string) error {
	if h.deviceBlocked[path] {
		return os.ErrPermission
	}

	return nil
}

func (h *fakeHost) ProbeDirWrite(path string) error {
	if h.dirBlocked[path] {
		return os.ErrPermission
	}

	return nil
}

func (h *fakeHost) ReadFile(path string) ([]byte, error) {
	if data, ok := h.contents[path]; ok {
		return data, nil
	}

	return nil, os.ErrNotExist
}

// readyHost returns a fake host where every check passes.
func readyHost(cfg *config.Config) *fakeHost {
	host := &fakeHost{
		tools:         map[string]bool{},
		modules:       map[string]bool{"yaml": true, "telegram": true, "requests": true},
		files:         map[string]fakeInfo{},
		deviceBlocked: map[string]bool{},
		dirBlocked:    map[string]bool{},
		contents:      map[string][]byte{},
	}

	for _, tool := range requiredTools {
		host.tools[tool] = true
	}

	for _, tool := range optionalTools {
		host.tools[tool] = true
	}

	host.files[cfg.Hardware.TapeDevice] = fakeInfo{name: "nst0"}
	host.files[cfg.Paths.LogDir] = fakeInfo{name: "log", dir: true}
	host.files[cfg.Paths.WorkDir] = fakeInfo{name: "spool", dir: true}
	host.files["config.yaml"] = fakeInfo{name: "config.yaml"}
	host.contents["config.yaml"] = []byte("hardware:\n  tape_dev: /dev/nst0\n")

	return host
}

// TestExecuteEvaluatesFullCatalog checks that every spec produces exactly one result,
// in catalog order, and a fully ready host yields a clean report.
func TestExecuteEvaluatesFullCatalog(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)

	report := NewChecker(cfg, host, "").Execute(context.Background())

	catalog := Catalog(cfg)
	require.Len(t, report.Results, len(catalog))

	for i, spec := range catalog {
		require.Equal(t, spec.ID, report.Results[i].Spec.ID)
	}

	require.True(t, report.OK())
	require.Equal(t, 0, report.FailCount())
}

// TestMissingDeviceFails ensures absence of the tape device is a failure, not a warning.
func TestMissingDeviceFails(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	delete(host.files, cfg.Hardware.TapeDevice)

	report := NewChecker(cfg, host, "").Execute(context.Background())
	require.False(t, report.OK())

	result := findResult(t, report, "device:"+cfg.Hardware.TapeDevice)
	require.Equal(t, check.StatusFail, result.Status)
	require.Contains(t, result.Detail, "not found")
}

// TestDeviceWithoutWriteAccessFailsWithHint checks the remediation hint surfaces.
func TestDeviceWithoutWriteAccessFailsWithHint(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	host.deviceBlocked[cfg.Hardware.TapeDevice] = true

	report := NewChecker(cfg, host, "").Execute(context.Background())

	result := findResult(t, report, "device:"+cfg.Hardware.TapeDevice)
	require.Equal(t, check.StatusFail, result.Status)
	require.Contains(t, result.Detail, "chmod 666")
}

// TestMissingDirectoryWarns ensures runtime directories only warn when absent.
func TestMissingDirectoryWarns(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	delete(host.files, cfg.Paths.LogDir)

	report := NewChecker(cfg, host, "").Execute(context.Background())

	result := findResult(t, report, "dir:"+cfg.Paths.LogDir)
	require.Equal(t, check.StatusWarn, result.Status)

	// A warning alone never flips the disposition.
	require.True(t, report.OK())
}

// TestInvalidConfigSyntaxFails feeds broken YAML and expects a failure.
func TestInvalidConfigSyntaxFails(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	host.contents["config.yaml"] = []byte("hardware: [unclosed")

	report := NewChecker(cfg, host, "").Execute(context.Background())
	require.False(t, report.OK())

	result := findResult(t, report, "config")
	require.Equal(t, check.StatusFail, result.Status)
	require.Contains(t, result.Detail, "invalid syntax")
}

// TestMissingConfigFails ensures config absence blocks, unlike directories.
func TestMissingConfigFails(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	delete(host.files, "config.yaml")

	report := NewChecker(cfg, host, "").Execute(context.Background())

	result := findResult(t, report, "config")
	require.Equal(t, check.StatusFail, result.Status)
}

// TestOptionalToolOnlyWarns checks the optional-tool degradation and that
// required tools still fail hard.
func TestOptionalToolOnlyWarns(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	host.tools["smartctl"] = false
	host.tools["mbuffer"] = false

	report := NewChecker(cfg, host, "").Execute(context.Background())

	require.Equal(t, check.StatusWarn, findResult(t, report, "tool:smartctl").Status)
	require.Equal(t, check.StatusFail, findResult(t, report, "tool:mbuffer").Status)
	require.False(t, report.OK())
}

// TestExplicitConfigPathProbedFirst ensures a configuration passed on the
// command line satisfies the configuration check even when no recognized
// candidate location has one.
func TestExplicitConfigPathProbedFirst(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	host := readyHost(cfg)
	delete(host.files, "config.yaml")
	host.files["/custom/backup.yaml"] = fakeInfo{name: "backup.yaml"}
	host.contents["/custom/backup.yaml"] = []byte("hardware:\n  tape_dev: /dev/nst0\n")

	report := NewChecker(cfg, host, "/custom/backup.yaml").Execute(context.Background())

	result := findResult(t, report, "config")
	require.Equal(t, check.StatusPass, result.Status)
	require.Contains(t, result.Detail, "/custom/backup.yaml")
}

// TestRunCompletesCatalogWithBrokenConfig verifies the entry point falls back
// to defaults when the configuration on disk does not parse: the catalog still
// runs to completion and the broken file surfaces as a failed check.
func TestRunCompletesCatalogWithBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	require.NoError(t, os.WriteFile("config.yaml", []byte("hardware: [unclosed"), 0o600))

	err := Run(context.Background(), &Options{})
	require.ErrorIs(t, err, ErrChecksFailed)

	catalog := Catalog(config.Default())
	require.ErrorContains(t, err, fmt.Sprintf("of %d checks failed", len(catalog)))
}

func findResult(t *testing.T, report *check.Report, id string) check.Result {
	t.Helper()

	for _, result := range report.Results {
		if result.Spec.ID == id {
			return result
		}
	}

	t.Fatalf("result %s not found", id)

	return check.Result{}
}
