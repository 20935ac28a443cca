package deployer

import (
	"fmt"
	"strings"
	"text/template"
)

// Fixed installation layout of the backup application.
const (
	// InstallDir is the system directory the artifact is installed into.
	InstallDir = "/opt/lto_backup"

	// BinSymlink makes the installed artifact available on PATH.
	BinSymlink = "/usr/local/bin/lto_backup"

	// LogDir is the backup application's log directory, created at install time.
	LogDir = "/var/log/lto_backup"

	// ServiceManagerDir is where systemd unit definitions live on the target host.
	ServiceManagerDir = "/usr/lib/systemd/system"

	// UnitFilename is the name of the generated service unit.
	UnitFilename = "lto-backup.service"

	// restartDelaySeconds is the fixed delay before the service manager restarts
	// a failed scheduler.
	restartDelaySeconds = 10
)

// templateData feeds the three deployment templates.
type templateData struct {
	ArtifactName  string
	InstallDir    string
	InstalledPath string
	BinSymlink    string
	LogDir        string
	UnitDir       string
	UnitName      string
	UnitText      string
	RestartDelay  int
	Version       string
}

const serviceUnitTemplate = `[Unit]
Description=LTO Backup System Scheduler
After=network.target

[Service]
Type=simple
User=root
WorkingDirectory={{.InstallDir}}
ExecStart={{.InstalledPath}} scheduler
Restart=on-failure
RestartSec={{.RestartDelay}}

[Install]
WantedBy=multi-user.target
`

const installScriptTemplate = `#!/bin/sh
# Installer for the LTO backup application, generated by backup-deployer.
set -eu

if [ "$(id -u)" -ne 0 ]; then
    echo "this installer must be run as root" >&2
    exit 1
fi

install_dir="{{.InstallDir}}"
log_dir="{{.LogDir}}"

mkdir -p "$install_dir" "$log_dir"
chmod 755 "$log_dir"

cp "{{.ArtifactName}}" "$install_dir/{{.ArtifactName}}"
chmod 755 "$install_dir/{{.ArtifactName}}"
ln -sf "$install_dir/{{.ArtifactName}}" "{{.BinSymlink}}"

# Never overwrite an existing configuration.
if [ ! -f "$install_dir/config.yaml" ]; then
    if [ -f "config.yaml.example" ]; then
        cp "config.yaml.example" "$install_dir/config.yaml"
        echo "seeded default configuration, edit $install_dir/config.yaml before use"
    fi
else
    echo "existing configuration kept: $install_dir/config.yaml"
fi

if [ -d "{{.UnitDir}}" ]; then
    cat > "{{.UnitDir}}/{{.UnitName}}" <<'UNIT'
{{.UnitText}}UNIT
    echo "service unit installed, enable with: systemctl enable lto-backup"
fi

echo "installation finished: {{.InstalledPath}}"
`

const readmeTemplate = `# LTO Backup System - Operator Guide

Version: {{.Version}}

## Installation

Run the bundled installer as root from this directory:

    sudo ./install.sh

The installer places the artifact at {{.InstalledPath}}, links it as
{{.BinSymlink}}, creates {{.LogDir}}, and seeds a default configuration
into {{.InstallDir}} unless one already exists.

## First steps

1. Edit the configuration:

       sudo nano {{.InstallDir}}/config.yaml

2. Verify the host is ready:

       lto_backup check

3. Create a first backup:

       lto_backup backup /path/to/data 'First_backup'

## Scheduler service

When {{.UnitDir}} exists, the installer also installs {{.UnitName}}.
The unit keeps the scheduler alive across reboots and restarts it
{{.RestartDelay}} seconds after a failure:

    sudo systemctl enable lto-backup
    sudo systemctl start lto-backup
`

func render(name, text string, data *templateData) (string, error) {
	tpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}

	var out strings.Builder
	if err := tpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}

	return out.String(), nil
}
