package checker

import (
	"github.com/tapeops/lto-backup/internal/config"
	"github.com/tapeops/lto-backup/internal/domain/check"
)

// Catalog order is fixed: later checks (configuration syntax) assume earlier
// ones (tool and file presence) already ran, and every check runs regardless
// of prior failures so a single pass surfaces the full defect list.
var (
	// requiredTools are utilities the backup engine cannot run without.
	//nolint:gochecknoglobals // Static catalog, never mutated.
	requiredTools = []string{"tar", "mbuffer", "mt", "tapeinfo"}

	// optionalTools improve diagnostics and compression but are not mandatory.
	//nolint:gochecknoglobals // Static catalog, never mutated.
	optionalTools = []string{"mtx", "smartctl", "lsscsi", "curl", "gzip", "bzip2", "xz"}

	// runtimeModules must be importable by the interpreter that runs the application.
	//nolint:gochecknoglobals // Static catalog, never mutated.
	runtimeModules = []string{"yaml", "telegram", "requests"}
)

// Catalog builds the ordered list of checks for the provided configuration.
// The same configuration always yields the same catalog.
func Catalog(cfg *config.Config) []check.Spec {
	specs := make([]check.Spec, 0,
		len(requiredTools)+len(optionalTools)+len(runtimeModules)+4)

	for _, tool := range requiredTools {
		specs = append(specs, check.Spec{
			ID:       "tool:" + tool,
			Category: check.CategoryTool,
			Name:     tool,
			Hint:     "install it: apt-get install tar mt-st mbuffer mtx-tools",
		})
	}

	for _, tool := range optionalTools {
		specs = append(specs, check.Spec{
			ID:       "tool:" + tool,
			Category: check.CategoryTool,
			Name:     tool,
			Optional: true,
		})
	}

	for _, module := range runtimeModules {
		specs = append(specs, check.Spec{
			ID:       "module:" + module,
			Category: check.CategoryModule,
			Name:     module,
			Hint:     "install it: pip install PyYAML python-telegram-bot requests",
		})
	}

	specs = append(specs,
		check.Spec{
			ID:       "device:" + cfg.Hardware.TapeDevice,
			Category: check.CategoryDevice,
			Name:     cfg.Hardware.TapeDevice,
			Hint:     "grant access: sudo chmod 666 " + cfg.Hardware.TapeDevice,
		},
		check.Spec{
			ID:       "dir:" + cfg.Paths.LogDir,
			Category: check.CategoryDirectory,
			Name:     cfg.Paths.LogDir,
			Hint:     "create it: sudo mkdir -p " + cfg.Paths.LogDir,
		},
		check.Spec{
			ID:       "dir:" + cfg.Paths.WorkDir,
			Category: check.CategoryDirectory,
			Name:     cfg.Paths.WorkDir,
			Hint:     "create it: sudo mkdir -p " + cfg.Paths.WorkDir,
		},
		check.Spec{
			ID:       "config",
			Category: check.CategoryConfig,
			Name:     config.DefaultConfigFilename,
			Hint:     "copy config.yaml.example to config.yaml and edit it",
		},
	)

	return specs
}
