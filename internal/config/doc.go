// Package config defines the backup application configuration consumed by the
// distribution toolkit and provides helpers to load, validate and save it in
// YAML format.
//
// The checker reads hardware and path settings from it, the packager reads the
// packaging catalogs (module roots, static files, icon candidates, hidden
// imports, exclusions). Every field has a built-in default matching what the
// backup application ships with, so the toolkit works on a bare source tree.
package config
