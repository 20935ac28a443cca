package check

// Category classifies what aspect of the host a check verifies.
type Category string

const (
	// CategoryTool verifies an external executable is resolvable on PATH.
	CategoryTool Category = "tool"
	// CategoryModule verifies a runtime module can be loaded.
	CategoryModule Category = "module"
	// CategoryDevice verifies a device node exists and is writable.
	CategoryDevice Category = "device"
	// CategoryDirectory verifies a directory exists and is writable.
	CategoryDirectory Category = "directory"
	// CategoryConfig verifies a configuration file exists and parses.
	CategoryConfig Category = "config"
)

// Status is the outcome of a single check.
type Status string

const (
	// StatusPass means the requirement is satisfied.
	StatusPass Status = "PASS"
	// StatusWarn means the requirement is unmet but does not block operation.
	StatusWarn Status = "WARN"
	// StatusFail means the requirement is unmet and the application cannot run.
	StatusFail Status = "FAIL"
)

// Spec describes one verification step. Specs are immutable and defined when
// the catalog is built; the same catalog is evaluated on every run.
type Spec struct {
	// ID uniquely identifies the check within the catalog.
	ID string
	// Category selects the evaluation rule applied to Name.
	Category Category
	// Name is the subject of the check: an executable, module, or path.
	Name string
	// Hint tells the operator how to fix a failure.
	Hint string
	// Optional degrades a tool-presence failure to a warning.
	Optional bool
}

// Result pairs a spec with its evaluated outcome.
type Result struct {
	// Spec is the check that produced this result.
	Spec Spec
	// Status is the evaluated outcome.
	Status Status
	// Detail is a human-readable explanation of the outcome.
	Detail string
}
