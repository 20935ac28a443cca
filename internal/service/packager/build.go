package packager

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/logger"
)

const (
	// smokeTestTimeout bounds the post-build version-query invocation.
	smokeTestTimeout = 10 * time.Second

	// artifactFileMode marks the produced artifact executable.
	artifactFileMode os.FileMode = 0o755

	// scanBufferSize sizes the line scanner for verbose tool output.
	scanBufferSize = 1024 * 1024
)

// ErrBuildFailed indicates the expected artifact is absent after the
// packaging tool exited, regardless of the tool's own exit code.
var ErrBuildFailed = errors.New("packaging produced no artifact")

// BuildReport is the immutable outcome of one orchestration run.
type BuildReport struct {
	// ArtifactPath is where the produced artifact was found.
	ArtifactPath string
	// SizeBytes is the artifact size.
	SizeBytes int64
	// SmokeTestPassed records the advisory post-build invocation outcome.
	SmokeTestPassed bool
	// Lines holds every classified packaging-tool output line, in order.
	Lines []LogLine
}

// Orchestrator invokes the external packaging tool and judges the result.
type Orchestrator struct {
	pk *config.Packaging
}

// NewOrchestrator creates an orchestrator for the provided packaging settings.
func NewOrchestrator(pk *config.Packaging) *Orchestrator {
	return &Orchestrator{pk: pk}
}

// Run renders the build specification from the manifest, invokes the
// packaging tool, and verifies the artifact afterwards. The tool's own exit
// code is not trusted: success means the artifact exists at its expected
// path. On failure the report with the captured output is still returned.
func (o *Orchestrator) Run(ctx context.Context, manifest *Manifest) (*BuildReport, error) {
	report := new(BuildReport)

	args := o.renderArgs(manifest)
	logger.InfoKV(ctx, "Invoking packaging tool", "tool", o.pk.Tool, "arguments", len(args))
	logger.DebugKV(ctx, "Rendered build specification", "args", args)

	if err := o.streamToolOutput(ctx, report, args); err != nil {
		return report, err
	}

	artifactPath := filepath.Join(o.pk.DistDir, o.pk.AppName)

	info, err := os.Stat(artifactPath)
	if err != nil {
		return report, fmt.Errorf("expected artifact %s: %w", artifactPath, ErrBuildFailed)
	}

	report.ArtifactPath = artifactPath
	report.SizeBytes = info.Size()

	if err := os.Chmod(artifactPath, artifactFileMode); err != nil {
		return report, fmt.Errorf("mark artifact executable: %w", err)
	}

	report.SmokeTestPassed = o.smokeTest(ctx, artifactPath)

	logger.InfoKV(ctx, "Artifact verified",
		"path", artifactPath,
		"size_bytes", report.SizeBytes,
		"smoke_test_passed", report.SmokeTestPassed)

	return report, nil
}

// streamToolOutput runs the tool and consumes its combined output line by
// line as it is produced. The subprocess itself runs without a timeout.
func (o *Orchestrator) streamToolOutput(ctx context.Context, report *BuildReport, args []string) error {
	//nolint:gosec // The tool name and arguments come from validated configuration.
	cmd := exec.Command(o.pk.Tool, args...)

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create output pipe: %w", err)
	}

	cmd.Stdout = writeEnd
	cmd.Stderr = writeEnd

	if err = cmd.Start(); err != nil {
		_ = readEnd.Close()
		_ = writeEnd.Close()

		return fmt.Errorf("start %s: %w", o.pk.Tool, err)
	}

	// The child holds its own copy of the write end; closing ours makes the
	// scanner see EOF as soon as the child exits.
	_ = writeEnd.Close()

	scanner := bufio.NewScanner(readEnd)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), scanBufferSize)

	for scanner.Scan() {
		line := scanner.Text()
		severity := ClassifyLine(line)
		report.Lines = append(report.Lines, LogLine{Severity: severity, Text: line})
		logToolLine(ctx, severity, line)
	}

	_ = readEnd.Close()

	if waitErr := cmd.Wait(); waitErr != nil {
		// Not fatal by itself: the artifact check below is the judge.
		logger.WarnKV(ctx, "Packaging tool exited with error", "error", waitErr)
	}

	return nil
}

// smokeTest invokes the artifact with a version query. The outcome is
// advisory: a failure or timeout is recorded but never fails the build.
func (o *Orchestrator) smokeTest(ctx context.Context, artifactPath string) bool {
	smokeCtx, cancel := context.WithTimeout(ctx, smokeTestTimeout)
	defer cancel()

	//nolint:gosec // The artifact path is derived from validated configuration.
	if err := exec.CommandContext(smokeCtx, artifactPath, "--version").Run(); err != nil {
		logger.WarnKV(ctx, "Smoke test failed", "artifact", artifactPath, "error", err)

		return false
	}

	return true
}

// renderArgs turns the manifest into the packaging tool's build specification.
func (o *Orchestrator) renderArgs(manifest *Manifest) []string {
	args := []string{
		"--onefile",
		"--noconfirm",
		"--name", o.pk.AppName,
		"--distpath", o.pk.DistDir,
		"--workpath", o.pk.WorkPath,
	}

	for _, dataFile := range manifest.DataFiles {
		args = append(args, "--add-data",
			dataFile.Source+string(os.PathListSeparator)+dataFile.DestDir)
	}

	for _, module := range manifest.HiddenImports {
		args = append(args, "--hidden-import", module)
	}

	for _, module := range manifest.ExcludedModules {
		args = append(args, "--exclude-module", module)
	}

	if manifest.IconPath != "" {
		args = append(args, "--icon", manifest.IconPath)
	}

	return append(args, o.pk.EntryPoint)
}

func logToolLine(ctx context.Context, severity Severity, line string) {
	switch severity {
	case SeverityError:
		logger.Error(ctx, line)
	case SeverityWarning:
		logger.Warn(ctx, line)
	case SeverityInfo:
		logger.Info(ctx, line)
	case SeverityUnclassified:
		logger.Info(ctx, line)
	}
}
