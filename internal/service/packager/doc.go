// Package packager builds the artifact manifest and drives the external
// packaging tool that bundles the backup application into a single
// distributable binary.
//
// The manifest walk selects source files from the configured module roots
// (preserving their directory layout) and existing static files; the icon is
// the first existing candidate in priority order. The orchestrator streams
// the tool's output line by line, classifies each line by severity, and
// decides success solely by the presence of the expected artifact - the
// tool's own exit code is not trusted. A successful run ends with an
// advisory smoke test and a bundle description consumed by the deployer.
package packager
