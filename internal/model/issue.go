package model

import (
	"fmt"
	"strings"
)

// Severity classifies an Issue.
type Severity string

const (
	SeverityError Severity = "ERROR" // identity-breaking or structurally invalid
	SeverityWarn  Severity = "WARN"  // suspicious but non-fatal
	SeverityInfo  Severity = "INFO"  // difference that may be intentional
)

// ParseSeverity accepts ERROR, WARN (or WARNING) and INFO in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARN", "WARNING":
		return SeverityWarn, nil
	case "INFO":
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rank orders severities from most to least serious.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarn:
		return 1
	default:
		return 2
	}
}

// Issue is one finding of an audit pass. Issues are values; once appended to
// a log they are never changed.
type Issue struct {
	Pass        int      `json:"pass"`
	Severity    Severity `json:"severity"`
	Check       string   `json:"check"`   // Rule identifier, e.g. "name_mismatch"
	Subject     string   `json:"subject"` // e.g. "12.json", "collection"
	Description string   `json:"description"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[Pass %d] %s: %s", i.Pass, i.Subject, i.Description)
}
