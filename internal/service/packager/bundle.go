package packager

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tapeops/lto-backup/internal/version"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// BundleFilename stores the bundle description next to the artifact.
	BundleFilename = "lto-backup-bundle.yaml"

	// DefaultChecksumFunction is used to hash the produced artifact.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// bundleFileMode is used when writing the bundle description.
	bundleFileMode os.FileMode = 0o644
)

var errHashUnavailable = errors.New("hash function unavailable")

// BundleDescription records what a packaging run produced. The deployer's
// install mode verifies the artifact against the checksum before applying it.
type BundleDescription struct {
	// VersionNumber is the toolkit version that produced the bundle.
	VersionNumber string `yaml:"version"`
	// Artifact is the artifact's base name inside the dist directory.
	Artifact string `yaml:"artifact"`
	// SizeBytes is the artifact size at packaging time.
	SizeBytes int64 `yaml:"size_bytes"`
	// Checksum is the base64-encoded SHA-512 of the artifact.
	Checksum string `yaml:"checksum"`
	// SmokeTestPassed records the advisory post-build invocation outcome.
	SmokeTestPassed bool `yaml:"smoke_test_passed"`
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// SaveBundleDescription writes the bundle description into the dist directory
// and returns its path.
func SaveBundleDescription(distDir string, report *BuildReport) (string, error) {
	checksum, err := GetFileChecksum(report.ArtifactPath)
	if err != nil {
		return "", fmt.Errorf("hash artifact: %w", err)
	}

	description := &BundleDescription{
		VersionNumber:   version.Short(),
		Artifact:        filepath.Base(report.ArtifactPath),
		SizeBytes:       report.SizeBytes,
		Checksum:        base64.StdEncoding.EncodeToString(checksum),
		SmokeTestPassed: report.SmokeTestPassed,
	}

	contents, err := yaml.Marshal(description)
	if err != nil {
		return "", fmt.Errorf("marshal bundle description: %w", err)
	}

	path := filepath.Join(distDir, BundleFilename)
	if err := os.WriteFile(path, contents, bundleFileMode); err != nil {
		return "", fmt.Errorf("write bundle description: %w", err)
	}

	return path, nil
}

// LoadBundleDescription reads a bundle description written by a packaging run.
func LoadBundleDescription(path string) (*BundleDescription, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read bundle description: %w", err)
	}

	var description BundleDescription
	if err := yaml.Unmarshal(contents, &description); err != nil {
		return nil, fmt.Errorf("unmarshal bundle description: %w", err)
	}

	return &description, nil
}
