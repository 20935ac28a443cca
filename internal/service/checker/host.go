package checker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/tapeops/lto-backup/internal/logger"
)

// moduleProbeTimeout bounds the runtime-module import probe.
const moduleProbeTimeout = 10 * time.Second

// Host abstracts the probes the checker performs against the machine,
// so the catalog can be evaluated hermetically in tests.
type Host interface {
	// LookupTool reports whether an executable is resolvable on PATH.
	LookupTool(name string) error
	// LoadModule reports whether the runtime can import the named module.
	LoadModule(ctx context.Context, name string) error
	// Stat returns file information for a path.
	Stat(path string) (os.FileInfo, error)
	// ProbeDeviceWrite verifies the device node can be opened for writing.
	ProbeDeviceWrite(path string) error
	// ProbeDirWrite verifies a file can be created inside the directory.
	ProbeDirWrite(path string) error
	// ReadFile returns the contents of a file.
	ReadFile(path string) ([]byte, error)
}

// systemHost performs real probes against the local machine.
type systemHost struct {
	// runtime is the interpreter used for module probes.
	runtime string
}

// SystemHost returns a Host probing the local machine with python3.
func SystemHost() Host {
	return &systemHost{runtime: "python3"}
}

func (h *systemHost) LookupTool(name string) error {
	_, err := exec.LookPath(name)

	return err
}

func (h *systemHost) LoadModule(ctx context.Context, name string) error {
	probeCtx, cancel := context.WithTimeout(ctx, moduleProbeTimeout)
	defer cancel()

	logger.Debugf(ctx, "Probing module %s with %s", name, h.runtime)

	//nolint:gosec // Module names come from the fixed catalog, not user input.
	cmd := exec.CommandContext(probeCtx, h.runtime, "-c", fmt.Sprintf("import %s", name))

	return cmd.Run()
}

func (h *systemHost) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (h *systemHost) ProbeDeviceWrite(path string) error {
	// Open without writing anything; closing a non-rewinding tape device
	// opened this way leaves the medium untouched.
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	return file.Close()
}

func (h *systemHost) ProbeDirWrite(path string) error {
	probe, err := os.CreateTemp(path, ".lto-writable-*")
	if err != nil {
		return err
	}

	name := probe.Name()
	_ = probe.Close()

	return os.Remove(name)
}

func (h *systemHost) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
