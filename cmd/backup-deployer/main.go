package main

import "github.com/tapeops/lto-backup/cmd/backup-deployer/cmd"

func main() {
	cmd.Execute()
}
