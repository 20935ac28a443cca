package packager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tapeops/lto-backup/internal/config"
)

// bundleRoot is the in-artifact destination for static files.
const bundleRoot = "."

// DataFile maps a source file into the artifact, preserving its directory.
type DataFile struct {
	// Source is the path of the file on disk.
	Source string
	// DestDir is where the file lands inside the artifact.
	DestDir string
}

// Manifest is the declarative description of what gets bundled.
// DataFiles and IconPath are computed from the filesystem; HiddenImports and
// ExcludedModules come straight from the configured catalogs.
type Manifest struct {
	DataFiles       []DataFile
	HiddenImports   []string
	ExcludedModules []string
	// IconPath is empty when no icon candidate exists.
	IconPath string
}

// BuildManifest walks the configured module roots and static files.
// Every source file keeps its original relative directory inside the artifact;
// static files land in the bundle root. The manifest never references a path
// outside the configured roots and static list.
func BuildManifest(pk *config.Packaging) (*Manifest, error) {
	manifest := &Manifest{
		HiddenImports:   append([]string(nil), pk.HiddenImports...),
		ExcludedModules: append([]string(nil), pk.ExcludedModules...),
	}

	seen := make(map[string]struct{})

	for _, root := range pk.ModuleRoots {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				// A missing module root is not an error: the application may
				// not ship every optional subsystem.
				if os.IsNotExist(err) {
					return nil
				}

				return err
			}

			if entry.IsDir() || filepath.Ext(path) != pk.SourceExtension {
				return nil
			}

			if _, dup := seen[path]; dup {
				return nil
			}

			seen[path] = struct{}{}
			manifest.DataFiles = append(manifest.DataFiles, DataFile{
				Source:  path,
				DestDir: filepath.Dir(path),
			})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk module root %s: %w", root, err)
		}
	}

	for _, static := range pk.StaticFiles {
		info, err := os.Stat(static)
		if err != nil || info.IsDir() {
			continue
		}

		if _, dup := seen[static]; dup {
			continue
		}

		seen[static] = struct{}{}
		manifest.DataFiles = append(manifest.DataFiles, DataFile{Source: static, DestDir: bundleRoot})
	}

	manifest.IconPath = selectIcon(pk.IconCandidates)

	return manifest, nil
}

// selectIcon returns the first existing candidate in priority order.
// At most one icon is ever selected; absence of all candidates is not an error.
func selectIcon(candidates []string) string {
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return ""
}
