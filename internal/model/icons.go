package model

// Centralized icons for the report and TUI.
// Single-width characters keep terminal columns aligned.
const (
	IconError = "✗" // Thin X
	IconWarn  = "!"
	IconInfo  = "≈" // Almost equal (differs from backup)
	IconOK    = "✓"
)

// SeverityIcon returns the icon used for a severity.
func SeverityIcon(s Severity) string {
	switch s {
	case SeverityError:
		return IconError
	case SeverityWarn:
		return IconWarn
	case SeverityInfo:
		return IconInfo
	}
	return IconOK
}
