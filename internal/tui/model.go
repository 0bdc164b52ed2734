// Package tui is the interactive issue browser of the audit command.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"assetaudit/internal/audit"
	"assetaudit/internal/model"
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Result  *audit.Result
	Issues  []model.Issue
	Loading bool
	Err     error

	auditor *audit.Auditor

	// UI State
	SelectedIdx int
	WindowSize  tea.WindowSizeMsg

	// View Modes
	SeverityFilter model.Severity // empty shows every severity
	ShowPasses     bool           // pass summaries instead of issue details
	ShowHelp       bool

	// Search State
	InputMode       bool
	InputBuffer     textinput.Model
	FilteredIndices []int // indices into Issues
	SearchActive    bool

	// Components
	DetailsViewport viewport.Model
}

// InitialModel returns the initial state. The audit starts from Init.
func InitialModel(a *audit.Auditor) AppModel {
	ti := textinput.New()
	ti.Placeholder = "subject or text..."
	ti.CharLimit = 50
	ti.Width = 30

	return AppModel{
		Loading:         true,
		auditor:         a,
		InputBuffer:     ti,
		DetailsViewport: viewport.New(0, 0),
	}
}

// Selected returns the issue under the cursor.
func (m AppModel) Selected() (model.Issue, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.FilteredIndices) {
		return model.Issue{}, false
	}
	return m.Issues[m.FilteredIndices[m.SelectedIdx]], true
}
