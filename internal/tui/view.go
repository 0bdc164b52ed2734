package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"assetaudit/internal/audit"
	"assetaudit/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Sky Blue/Cyan
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const (
	borderColor = lipgloss.Color("63")
	activeColor = lipgloss.Color("205")
)

func (m AppModel) View() string {
	if m.Loading {
		return "\n  Auditing collection... please wait.\n"
	}
	if m.Err != nil {
		return fmt.Sprintf("\n  Error: %v\n", m.Err)
	}
	if m.ShowHelp {
		return m.renderHelpDialog()
	}

	// Subtracting 6 for horizontal margin (borders x2 + buffer)
	width := m.WindowSize.Width
	height := m.WindowSize.Height

	netWidth := width - 6
	if netWidth < 40 {
		netWidth = 40
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	boxHeight := height - 6
	if boxHeight < 6 {
		boxHeight = 6
	}
	interiorHeight := boxHeight - 2

	// LEFT PANEL: issue list
	var leftView strings.Builder
	leftView.WriteString(titleStyle.Render(m.listTitle()))
	leftView.WriteString("\n\n")

	// Windowing: header is 2 lines
	visibleItems := interiorHeight - 2
	if visibleItems < 1 {
		visibleItems = 1
	}
	startIdx := 0
	endIdx := len(m.FilteredIndices)
	if len(m.FilteredIndices) > visibleItems {
		if m.SelectedIdx >= visibleItems/2 {
			startIdx = m.SelectedIdx - (visibleItems / 2)
		}
		if startIdx+visibleItems > len(m.FilteredIndices) {
			startIdx = len(m.FilteredIndices) - visibleItems
		}
		endIdx = startIdx + visibleItems
	}

	if len(m.FilteredIndices) == 0 {
		if len(m.Issues) == 0 {
			leftView.WriteString(audit.SeverityStyle(model.SeverityInfo).Render(model.IconOK + " No issues found"))
		} else {
			leftView.WriteString(dimStyle.Render("No issues match the current filter."))
		}
	}
	for i := startIdx; i < endIdx; i++ {
		issue := m.Issues[m.FilteredIndices[i]]
		line := fmt.Sprintf("%s P%d %s", model.SeverityIcon(issue.Severity), issue.Pass, issue.Subject)
		line = truncate(line, leftWidth-2)

		if i == m.SelectedIdx {
			leftView.WriteString(selectedStyle.Render(line))
		} else {
			leftView.WriteString(audit.SeverityStyle(issue.Severity).Render(line))
		}
		leftView.WriteString("\n")
	}

	lBorder := activeColor
	if m.ShowPasses {
		lBorder = borderColor
	}
	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lBorder).
		Render(strings.TrimSuffix(leftView.String(), "\n"))

	// RIGHT PANEL: issue details or pass summaries
	title := "Details"
	if m.ShowPasses {
		title = "Pass Summaries"
	}
	vp := m.DetailsViewport
	vp.Width = rightWidth
	vp.Height = interiorHeight - 2
	rBorder := borderColor
	if m.ShowPasses {
		rBorder = activeColor
	}
	right := lipgloss.NewStyle().
		Width(rightWidth).
		Height(interiorHeight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(rBorder).
		Render(titleStyle.Render(title) + "\n\n" + vp.View())

	// Footer
	help := "↑/↓: Navigate • s: Severity • /: Search • p: Passes • ?: Help • q: Quit"
	if m.ShowPasses {
		help = "Pass Summaries: ↑/↓: Scroll • p/Esc: Back to issues • q: Quit"
	}
	footer := "\n" + m.countsLine() + "\n" + footerStyle.Render(help)
	if m.InputMode {
		footer = fmt.Sprintf("\n%s\nSearch: %s", m.countsLine(), m.InputBuffer.View())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + footer
}

func (m AppModel) listTitle() string {
	title := "Issues"
	if m.SeverityFilter != "" {
		title += " [" + string(m.SeverityFilter) + "]"
	}
	if m.SearchActive {
		title += fmt.Sprintf(" matching %q", m.InputBuffer.Value())
	}
	return fmt.Sprintf("%s (%d/%d)", title, len(m.FilteredIndices), len(m.Issues))
}

func (m AppModel) countsLine() string {
	if m.Result == nil {
		return ""
	}
	counts := m.Result.Log.Counts()
	return fmt.Sprintf("%s  %s  %s  valid indices: %d",
		audit.SeverityStyle(model.SeverityError).Render(fmt.Sprintf("%s %d errors", model.IconError, counts[model.SeverityError])),
		audit.SeverityStyle(model.SeverityWarn).Render(fmt.Sprintf("%s %d warnings", model.IconWarn, counts[model.SeverityWarn])),
		audit.SeverityStyle(model.SeverityInfo).Render(fmt.Sprintf("%s %d info", model.IconInfo, counts[model.SeverityInfo])),
		len(m.Result.Valid))
}

// issueContent renders the selected issue for the details panel.
func (m AppModel) issueContent() string {
	issue, ok := m.Selected()
	if !ok {
		return "No issue selected."
	}
	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Severity:", audit.SeverityStyle(issue.Severity).Render(string(issue.Severity)))
	field("Pass:", fmt.Sprintf("%d", issue.Pass))
	field("Subject:", issue.Subject)
	field("Check:", issue.Check)
	b.WriteString("\n")
	b.WriteString(issue.Description)
	b.WriteString("\n")

	if m.Result != nil {
		for _, p := range m.Result.Passes {
			if p.Pass == issue.Pass {
				b.WriteString("\n--- PASS " + fmt.Sprint(p.Pass) + ": " + p.Title + " ---\n")
				for _, line := range p.Lines {
					b.WriteString(dimStyle.Render(line))
					b.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// passesContent renders every pass summary.
func (m AppModel) passesContent() string {
	if m.Result == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range m.Result.Passes {
		b.WriteString(labelStyle.Render(fmt.Sprintf("PASS %d: %s", p.Pass, p.Title)))
		b.WriteString("\n")
		for _, line := range p.Lines {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m AppModel) renderHelpDialog() string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Window too small"
	}
	helpWidth := w * 80 / 100
	if helpWidth < 40 {
		helpWidth = 40
	}
	if helpWidth > w-4 {
		helpWidth = w - 4
	}

	content := strings.Join([]string{
		titleStyle.Render("assetaudit issue browser"),
		"",
		"↑/k ↓/j     move through the issue list",
		"g / G       first / last issue",
		"s           cycle severity filter (all, ERROR, WARN, INFO)",
		"/ or w      search subject, description and check id",
		"Enter       apply search, Esc clears it",
		"p           toggle pass summaries",
		"?           close this help",
		"q           quit",
		"",
		model.IconError + " error   " + model.IconWarn + " warning   " + model.IconInfo + " info",
	}, "\n")

	dialog := lipgloss.NewStyle().
		Width(helpWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(content)

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, dialog)
}

func truncate(s string, n int) string {
	if n < 4 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-3 {
		r = r[:n-3]
	}
	return string(r) + "..."
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, InitAuditCmd(m.auditor))
}
