package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Hardware holds tape hardware settings used by the readiness checks.
type Hardware struct {
	// TapeDevice is the non-rewinding tape device node the backup engine writes to.
	TapeDevice string `yaml:"tape_dev"`
}

// Paths holds directories the backup application uses at runtime.
// They are created lazily on first use, so the checker only warns about them.
type Paths struct {
	// LogDir is where the backup application writes its logs.
	LogDir string `yaml:"log_dir"`
	// WorkDir is the staging directory for backup jobs.
	WorkDir string `yaml:"work_dir"`
}

// Packaging describes how the application is bundled into a single artifact.
// HiddenImports and ExcludedModules are fixed catalogs; the manifest builder
// never derives them from the file walk.
type Packaging struct {
	// Tool is the packaging tool executable invoked by the build orchestrator.
	Tool string `yaml:"tool"`
	// AppName is the base name of the produced artifact.
	AppName string `yaml:"app_name"`
	// EntryPoint is the application's main script.
	EntryPoint string `yaml:"entry_point"`
	// SourceExtension selects which files the module-root walk bundles.
	SourceExtension string `yaml:"source_ext"`
	// ModuleRoots are directories walked recursively for source files.
	ModuleRoots []string `yaml:"module_roots"`
	// StaticFiles are bundled into the artifact root when present on disk.
	StaticFiles []string `yaml:"static_files"`
	// IconCandidates are probed in priority order; the first existing one wins.
	IconCandidates []string `yaml:"icon_candidates"`
	// HiddenImports are modules the packaging tool cannot discover by itself.
	HiddenImports []string `yaml:"hidden_imports"`
	// ExcludedModules are left out of the artifact to keep it small.
	ExcludedModules []string `yaml:"excluded_modules"`
	// DistDir is where the finished artifact is placed.
	DistDir string `yaml:"dist_dir"`
	// WorkPath is the packaging tool's scratch directory.
	WorkPath string `yaml:"work_path"`
}

// Config is the backup application configuration consumed by the toolkit.
type Config struct {
	Hardware  Hardware  `yaml:"hardware"`
	Paths     Paths     `yaml:"paths"`
	Packaging Packaging `yaml:"packaging"`
}

const (
	// DefaultConfigFilename is the primary recognized configuration name.
	DefaultConfigFilename = "config.yaml"

	// DefaultTapeDevice is probed when no configuration overrides it.
	DefaultTapeDevice = "/dev/nst0"

	// DefaultLogDir is the backup application's log directory.
	DefaultLogDir = "/var/log/lto_backup"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errAppNameWithSeparator rejects artifact names that would escape the dist directory.
var errAppNameWithSeparator = errors.New("app name must not contain path separators")

// CandidatePaths lists recognized configuration locations in lookup order.
// Mirrors the backup application's own resolution order.
func CandidatePaths() []string {
	paths := []string{"config.yaml", "config.yml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lto_backup", "config.yaml"))
	}

	return append(paths, "/etc/lto_backup/config.yaml")
}

// Resolve returns the first existing candidate configuration path.
func Resolve() (string, bool) {
	for _, path := range CandidatePaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}

	return "", false
}

// Default returns a configuration with every field set to its built-in value.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// An empty path resolves through CandidatePaths; when no candidate exists,
// the built-in defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		resolved, found := Resolve()
		if !found {
			return Default(), nil
		}

		path = resolved
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks fields that have no sensible fallback.
func Validate(cfg *Config) error {
	applyDefaults(cfg)

	if strings.ContainsRune(cfg.Packaging.AppName, os.PathSeparator) {
		return errAppNameWithSeparator
	}

	return nil
}

// applyDefaults mirrors the defaults shipped with the backup application.
//
//nolint:cyclop // A flat list of fallbacks is clearer than splitting it up.
func applyDefaults(cfg *Config) {
	if cfg.Hardware.TapeDevice == "" {
		cfg.Hardware.TapeDevice = DefaultTapeDevice
	}

	if cfg.Paths.LogDir == "" {
		cfg.Paths.LogDir = DefaultLogDir
	}

	if cfg.Paths.WorkDir == "" {
		cfg.Paths.WorkDir = "/var/spool/lto_backup"
	}

	pk := &cfg.Packaging
	if pk.Tool == "" {
		pk.Tool = "pyinstaller"
	}

	if pk.AppName == "" {
		pk.AppName = "lto_backup"
	}

	if pk.EntryPoint == "" {
		pk.EntryPoint = "lto_backup.py"
	}

	if pk.SourceExtension == "" {
		pk.SourceExtension = ".py"
	}

	if len(pk.ModuleRoots) == 0 {
		pk.ModuleRoots = []string{"core", "hardware", "notification", "utils"}
	}

	if len(pk.StaticFiles) == 0 {
		pk.StaticFiles = []string{"config.yaml.example", "requirements.txt", "README.md"}
	}

	if len(pk.IconCandidates) == 0 {
		// Priority order: ico, then plain image, then icon bundle.
		pk.IconCandidates = []string{
			filepath.Join("assets", "icon.ico"),
			filepath.Join("assets", "icon.png"),
			filepath.Join("assets", "icon.icns"),
		}
	}

	if len(pk.HiddenImports) == 0 {
		pk.HiddenImports = []string{"yaml", "telegram", "telegram.ext", "requests"}
	}

	if len(pk.ExcludedModules) == 0 {
		pk.ExcludedModules = []string{"tkinter", "matplotlib", "numpy", "PIL"}
	}

	if pk.DistDir == "" {
		pk.DistDir = "dist"
	}

	if pk.WorkPath == "" {
		pk.WorkPath = "build"
	}
}
