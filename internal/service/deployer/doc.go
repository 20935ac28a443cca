// Package deployer emits the deployment helpers for a packaged build: an
// operator README, an installation script, and a systemd service unit that
// keeps the scheduler running across reboots.
//
// Generation is pure templating over the fixed installation layout; whether a
// service unit is emitted is decided by an explicit capability flag rather
// than probing the filesystem inside the generator. The package also offers a
// direct install mode that applies the artifact with checksum verification.
package deployer
