package main

import "github.com/tapeops/lto-backup/cmd/backup-checker/cmd"

func main() {
	cmd.Execute()
}
