package packager

import (
	"context"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/tapeops/lto-backup/internal/logger"
)

// IsApplicationRunningNow reports whether the backup application is currently
// running on this machine. Packaging while the scheduler holds the previous
// artifact open would bundle inconsistent state, so the packager refuses to
// start in that case.
func IsApplicationRunningNow(ctx context.Context, appName string) bool {
	processList, err := ps.Processes()
	if err != nil {
		logger.Warnf(ctx, "Unable to inspect process list: %v", err)

		return false
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == appName {
			return true
		}
	}

	return false
}
