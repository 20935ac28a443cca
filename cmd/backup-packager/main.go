package main

import "github.com/tapeops/lto-backup/cmd/backup-packager/cmd"

func main() {
	cmd.Execute()
}
