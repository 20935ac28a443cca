package packager

import "strings"

// Severity ranks a packaging-tool output line.
type Severity string

const (
	// SeverityError marks lines reporting build errors.
	SeverityError Severity = "error"
	// SeverityWarning marks lines reporting build warnings.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks regular progress lines.
	SeverityInfo Severity = "info"
	// SeverityUnclassified marks lines with no recognized marker;
	// they are passed through untouched.
	SeverityUnclassified Severity = ""
)

// LogLine is one classified line of packaging-tool output.
type LogLine struct {
	Severity Severity
	Text     string
}

// severityMarkers is scanned in priority order: when a line carries several
// markers the highest-ranked one wins.
//
//nolint:gochecknoglobals // Static classification table, never mutated.
var severityMarkers = []struct {
	marker   string
	severity Severity
}{
	{"ERROR", SeverityError},
	{"WARNING", SeverityWarning},
	{"INFO", SeverityInfo},
}

// ClassifyLine assigns a severity to one output line by scanning for embedded
// marker substrings. Lines without any marker stay unclassified.
func ClassifyLine(line string) Severity {
	for _, entry := range severityMarkers {
		if strings.Contains(line, entry.marker) {
			return entry.severity
		}
	}

	return SeverityUnclassified
}
