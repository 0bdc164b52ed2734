package tui

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"assetaudit/internal/audit"
	"assetaudit/internal/model"
)

// MsgAuditReady indicates that the audit has completed.
type MsgAuditReady struct{ Result *audit.Result }

// MsgError indicates an error occurred.
type MsgError struct{ Err error }

// severityCycle is the order the 's' key steps through.
var severityCycle = []model.Severity{"", model.SeverityError, model.SeverityWarn, model.SeverityInfo}

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.DetailsViewport.Width = msg.Width / 2
		m.DetailsViewport.Height = msg.Height - 6
		m.refreshDetails()
		return m, nil

	case MsgAuditReady:
		m.Loading = false
		m.Result = msg.Result
		m.Issues = msg.Result.Log.Issues()
		// Most serious first, append order within a severity.
		sort.SliceStable(m.Issues, func(i, j int) bool {
			return m.Issues[i].Severity.Rank() < m.Issues[j].Severity.Rank()
		})
		m.applyFilter()
		return m, nil

	case MsgError:
		m.Err = msg.Err
		m.Loading = false
		return m, nil

	case tea.KeyMsg:
		if m.InputMode {
			switch msg.Type {
			case tea.KeyEnter:
				m.InputMode = false
				m.InputBuffer.Blur()
				m.applyFilter()
				return m, nil
			case tea.KeyEsc:
				m.clearSearch()
				return m, nil
			}
			m.InputBuffer, cmd = m.InputBuffer.Update(msg)
			return m, cmd
		}

		if m.ShowHelp {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "?", "esc":
				m.ShowHelp = false
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.SearchActive {
				m.clearSearch()
				return m, nil
			}
			if m.ShowPasses {
				m.ShowPasses = false
				m.refreshDetails()
			}
		case "up", "k":
			if m.ShowPasses {
				m.DetailsViewport.LineUp(1)
			} else if m.SelectedIdx > 0 {
				m.SelectedIdx--
				m.refreshDetails()
			}
		case "down", "j":
			if m.ShowPasses {
				m.DetailsViewport.LineDown(1)
			} else if m.SelectedIdx < len(m.FilteredIndices)-1 {
				m.SelectedIdx++
				m.refreshDetails()
			}
		case "home", "g":
			m.SelectedIdx = 0
			m.refreshDetails()
		case "end", "G":
			if n := len(m.FilteredIndices); n > 0 {
				m.SelectedIdx = n - 1
			}
			m.refreshDetails()
		case "s":
			m.SeverityFilter = nextSeverity(m.SeverityFilter)
			m.applyFilter()
		case "p":
			m.ShowPasses = !m.ShowPasses
			m.refreshDetails()
		case "/", "w":
			m.InputMode = true
			m.InputBuffer.Focus()
			m.InputBuffer.SetValue("")
			return m, textinput.Blink
		case "?":
			m.ShowHelp = true
		}
	}

	return m, cmd
}

func nextSeverity(cur model.Severity) model.Severity {
	for i, s := range severityCycle {
		if s == cur {
			return severityCycle[(i+1)%len(severityCycle)]
		}
	}
	return ""
}

func (m *AppModel) clearSearch() {
	m.InputMode = false
	m.InputBuffer.Blur()
	m.InputBuffer.SetValue("")
	m.applyFilter()
}

// applyFilter rebuilds FilteredIndices from the severity filter and the
// search term, which matches subject, description or check id.
func (m *AppModel) applyFilter() {
	term := strings.ToLower(strings.TrimSpace(m.InputBuffer.Value()))
	m.SearchActive = term != ""

	var filtered []int
	for i, issue := range m.Issues {
		if m.SeverityFilter != "" && issue.Severity != m.SeverityFilter {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(issue.Subject), term) &&
			!strings.Contains(strings.ToLower(issue.Description), term) &&
			!strings.Contains(issue.Check, term) {
			continue
		}
		filtered = append(filtered, i)
	}
	m.FilteredIndices = filtered

	// Bounds check
	if m.SelectedIdx >= len(m.FilteredIndices) {
		if len(m.FilteredIndices) > 0 {
			m.SelectedIdx = len(m.FilteredIndices) - 1
		} else {
			m.SelectedIdx = 0
		}
	}
	m.refreshDetails()
}

// refreshDetails puts the right-hand content into the viewport.
func (m *AppModel) refreshDetails() {
	if m.ShowPasses {
		m.DetailsViewport.SetContent(m.passesContent())
	} else {
		m.DetailsViewport.SetContent(m.issueContent())
	}
}

// InitAuditCmd runs the audit in the background.
func InitAuditCmd(a *audit.Auditor) tea.Cmd {
	return func() tea.Msg {
		res, err := a.Run(context.Background())
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgAuditReady{Result: res}
	}
}
