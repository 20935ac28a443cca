package checker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/domain/check"
	"github.com/tapeops/lto-backup/internal/logger"
)

// Options contains inputs for the checker entry point.
type Options struct {
	// ConfigPath is an optional path to the application configuration.
	// When empty, the recognized candidate locations are probed.
	ConfigPath string
}

// ErrChecksFailed is returned when at least one check failed.
// Warnings never produce this error.
var ErrChecksFailed = errors.New("environment checks failed")

// Checker evaluates the full catalog against a host.
type Checker struct {
	cfg        *config.Config
	host       Host
	configPath string
}

// NewChecker creates a checker for the provided configuration and host probes.
// A non-empty configPath is probed before the recognized candidate locations
// by the configuration check.
func NewChecker(cfg *config.Config, host Host, configPath string) *Checker {
	return &Checker{cfg: cfg, host: host, configPath: configPath}
}

// Run executes the full readiness verification and is the CLI entry point.
// The returned error is non-nil iff any check failed.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "backup-checker")

	// An unloadable configuration must not abort verification: the catalog
	// still runs against defaults and the configuration check reports the
	// broken file among the other results.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		logger.WarnKV(ctx, "Configuration is not loadable, verifying with defaults", "error", err)

		cfg = config.Default()
	}

	report := NewChecker(cfg, SystemHost(), opts.ConfigPath).Execute(ctx)

	logger.InfoKV(ctx, "Verification finished",
		"checks", len(report.Results),
		"failed", report.FailCount(),
		"warnings", report.WarnCount())

	if !report.OK() {
		return fmt.Errorf("%d of %d checks failed: %w",
			report.FailCount(), len(report.Results), ErrChecksFailed)
	}

	return nil
}

// Execute evaluates every spec in catalog order. It never short-circuits:
// all checks run even when earlier ones fail, and their results are reported
// in catalog order.
func (c *Checker) Execute(ctx context.Context) *check.Report {
	report := new(check.Report)

	for _, spec := range Catalog(c.cfg) {
		result := c.evaluate(ctx, spec)
		logResult(ctx, result)
		report.Append(result)
	}

	return report
}

func (c *Checker) evaluate(ctx context.Context, spec check.Spec) check.Result {
	switch spec.Category {
	case check.CategoryTool:
		return c.evaluateTool(spec)
	case check.CategoryModule:
		return c.evaluateModule(ctx, spec)
	case check.CategoryDevice:
		return c.evaluateDevice(spec)
	case check.CategoryDirectory:
		return c.evaluateDirectory(spec)
	case check.CategoryConfig:
		return c.evaluateConfig(spec)
	default:
		return check.Result{Spec: spec, Status: check.StatusFail, Detail: "unknown check category"}
	}
}

func (c *Checker) evaluateTool(spec check.Spec) check.Result {
	if err := c.host.LookupTool(spec.Name); err != nil {
		if spec.Optional {
			return check.Result{
				Spec:   spec,
				Status: check.StatusWarn,
				Detail: "optional utility not found on PATH",
			}
		}

		return check.Result{
			Spec:   spec,
			Status: check.StatusFail,
			Detail: "required utility not found on PATH; " + spec.Hint,
		}
	}

	return check.Result{Spec: spec, Status: check.StatusPass, Detail: "found on PATH"}
}

func (c *Checker) evaluateModule(ctx context.Context, spec check.Spec) check.Result {
	if err := c.host.LoadModule(ctx, spec.Name); err != nil {
		return check.Result{
			Spec:   spec,
			Status: check.StatusFail,
			Detail: fmt.Sprintf("module cannot be loaded: %v; %s", err, spec.Hint),
		}
	}

	return check.Result{Spec: spec, Status: check.StatusPass, Detail: "module loads"}
}

// evaluateDevice treats both absence and denied write access as failures:
// the backup engine cannot operate without a writable tape device.
func (c *Checker) evaluateDevice(spec check.Spec) check.Result {
	if _, err := c.host.Stat(spec.Name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return check.Result{
				Spec:   spec,
				Status: check.StatusFail,
				Detail: "tape device not found",
			}
		}

		return check.Result{
			Spec:   spec,
			Status: check.StatusFail,
			Detail: fmt.Sprintf("tape device not accessible: %v", err),
		}
	}

	if err := c.host.ProbeDeviceWrite(spec.Name); err != nil {
		return check.Result{
			Spec:   spec,
			Status: check.StatusFail,
			Detail: "no write access to tape device; " + spec.Hint,
		}
	}

	return check.Result{Spec: spec, Status: check.StatusPass, Detail: "device is writable"}
}

// evaluateDirectory only warns: runtime directories are created lazily on
// first real use, so absence does not block startup.
func (c *Checker) evaluateDirectory(spec check.Spec) check.Result {
	info, err := c.host.Stat(spec.Name)
	if err != nil {
		return check.Result{
			Spec:   spec,
			Status: check.StatusWarn,
			Detail: "directory missing, will be created on first use; " + spec.Hint,
		}
	}

	if !info.IsDir() {
		return check.Result{
			Spec:   spec,
			Status: check.StatusWarn,
			Detail: "path exists but is not a directory",
		}
	}

	if err := c.host.ProbeDirWrite(spec.Name); err != nil {
		return check.Result{
			Spec:   spec,
			Status: check.StatusWarn,
			Detail: "directory is not writable",
		}
	}

	return check.Result{Spec: spec, Status: check.StatusPass, Detail: "directory is writable"}
}

// evaluateConfig probes the explicitly requested path, then the recognized
// candidate locations in order, and parses the first hit. Absence blocks
// startup, so it is a failure rather than a warning.
func (c *Checker) evaluateConfig(spec check.Spec) check.Result {
	paths := config.CandidatePaths()
	if c.configPath != "" {
		paths = append([]string{c.configPath}, paths...)
	}

	for _, path := range paths {
		info, err := c.host.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		contents, err := c.host.ReadFile(path)
		if err != nil {
			return check.Result{
				Spec:   spec,
				Status: check.StatusFail,
				Detail: fmt.Sprintf("configuration %s not readable: %v", path, err),
			}
		}

		var parsed map[string]any
		if err := yaml.Unmarshal(contents, &parsed); err != nil {
			return check.Result{
				Spec:   spec,
				Status: check.StatusFail,
				Detail: fmt.Sprintf("configuration %s has invalid syntax: %v", path, err),
			}
		}

		return check.Result{Spec: spec, Status: check.StatusPass, Detail: "parsed " + path}
	}

	return check.Result{
		Spec:   spec,
		Status: check.StatusFail,
		Detail: "no configuration file found; " + spec.Hint,
	}
}

func logResult(ctx context.Context, result check.Result) {
	switch result.Status {
	case check.StatusPass:
		logger.InfoKV(ctx, "Check passed", "check", result.Spec.ID, "detail", result.Detail)
	case check.StatusWarn:
		logger.WarnKV(ctx, "Check warning", "check", result.Spec.ID, "detail", result.Detail)
	case check.StatusFail:
		logger.ErrorKV(ctx, "Check failed", "check", result.Spec.ID, "detail", result.Detail)
	}
}
