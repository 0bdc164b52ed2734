package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetaudit/internal/audit"
	"assetaudit/internal/model"
)

func ready(t *testing.T) AppModel {
	t.Helper()
	log := audit.NewIssueLog(nil, nil)
	log.Add(5, model.SeverityInfo, audit.CheckBackupOnlyMain, "3.json", "Present in main but not in backup")
	log.Add(1, model.SeverityError, audit.CheckSequenceGap, "2.json / 2.png", "Gap in sequence")
	log.Add(2, model.SeverityWarn, audit.CheckSymbolMismatch, "0.json", "Symbol is 'X' (expected 'SPRITE')")
	log.Add(4, model.SeverityError, audit.CheckInvalidImage, "7.png", "Invalid PNG: Not a valid PNG file")
	res := &audit.Result{
		Valid:  []int{0, 1, 3},
		Passes: []audit.PassSummary{{Pass: 1, Title: "File Pairing", Lines: []string{"[!!] 1 gaps in sequence: [2]"}}},
		Log:    log,
	}

	m := InitialModel(nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(MsgAuditReady{Result: res})
	return next.(AppModel)
}

func press(t *testing.T, m AppModel, keys ...string) AppModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(AppModel)
	}
	return m
}

func subjects(m AppModel) []string {
	var out []string
	for _, i := range m.FilteredIndices {
		out = append(out, m.Issues[i].Subject)
	}
	return out
}

func TestAuditReady_SortsBySeverity(t *testing.T) {
	m := ready(t)

	assert.False(t, m.Loading)
	assert.Equal(t, []string{"2.json / 2.png", "7.png", "0.json", "3.json"}, subjects(m))
	issue, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, audit.CheckSequenceGap, issue.Check)
}

func TestSeverityFilterCycle(t *testing.T) {
	m := ready(t)

	m = press(t, m, "s")
	assert.Equal(t, model.SeverityError, m.SeverityFilter)
	assert.Equal(t, []string{"2.json / 2.png", "7.png"}, subjects(m))

	m = press(t, m, "s")
	assert.Equal(t, []string{"0.json"}, subjects(m))

	m = press(t, m, "s", "s")
	assert.Equal(t, model.Severity(""), m.SeverityFilter)
	assert.Len(t, m.FilteredIndices, 4)
}

func TestSearch(t *testing.T) {
	m := ready(t)

	m = press(t, m, "/")
	require.True(t, m.InputMode)
	m = press(t, m, "i", "n", "v", "a", "l", "i", "d", "enter")

	assert.False(t, m.InputMode)
	assert.True(t, m.SearchActive)
	assert.Equal(t, []string{"7.png"}, subjects(m))

	m = press(t, m, "esc")
	assert.False(t, m.SearchActive)
	assert.Len(t, m.FilteredIndices, 4)
}

func TestNavigationBounds(t *testing.T) {
	m := ready(t)

	m = press(t, m, "k")
	assert.Equal(t, 0, m.SelectedIdx)
	m = press(t, m, "down", "down", "down", "down", "down")
	assert.Equal(t, 3, m.SelectedIdx)

	m = press(t, m, "s")
	assert.Equal(t, 1, m.SelectedIdx, "selection is clamped to the filtered list")
}

func TestView(t *testing.T) {
	m := ready(t)
	out := m.View()
	assert.Contains(t, out, "Issues (4/4)")
	assert.Contains(t, out, "Gap in sequence")

	m = press(t, m, "p")
	assert.Contains(t, m.View(), "Pass Summaries")

	m = press(t, m, "?")
	assert.Contains(t, m.View(), "cycle severity filter")
}

func TestView_Error(t *testing.T) {
	m := InitialModel(nil)
	assert.Contains(t, m.View(), "please wait")

	next, _ := m.Update(MsgError{Err: assert.AnError})
	assert.Contains(t, next.View(), assert.AnError.Error())
}
