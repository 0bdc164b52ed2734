package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"assetaudit/internal/config"
	"assetaudit/internal/model"
)

var (
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const ruleWidth = 70

// SeverityStyle returns the style used to render a severity.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityError:
		return errorStyle
	case model.SeverityWarn:
		return warnStyle
	default:
		return infoStyle
	}
}

// GenerateReport renders the pass summaries followed by the issue summary.
// verbose adds the check identifier to every issue line.
func GenerateReport(res *Result, opts config.ReportConfig, verbose bool) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("NFT Collection Audit — 5 Passes"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Assets dir: %s\n", res.AssetsDir)
	if verbose {
		fmt.Fprintf(&b, "Run: %s\n", res.RunID)
	}

	for _, p := range res.Passes {
		b.WriteString("\n")
		writeHeading(&b, fmt.Sprintf("PASS %d: %s", p.Pass, p.Title))
		for _, line := range p.Lines {
			b.WriteString("  ")
			b.WriteString(styleStatus(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	writeHeading(&b, "SUMMARY OF ALL ISSUES")
	if res.Log.Len() == 0 {
		b.WriteString(okStyle.Render("  NO ISSUES FOUND — Collection looks clean!"))
		b.WriteString("\n")
		return b.String()
	}

	errs := res.Log.BySeverity(model.SeverityError)
	warns := res.Log.BySeverity(model.SeverityWarn)
	infos := res.Log.BySeverity(model.SeverityInfo)
	fmt.Fprintf(&b, "  Total: %d issues (%d ERRORS, %d WARNINGS, %d INFO)\n",
		res.Log.Len(), len(errs), len(warns), len(infos))

	writeSection(&b, "ERRORS (must fix)", errs, 0, verbose)
	writeSection(&b, "WARNINGS (review recommended)", warns, 0, verbose)
	writeSection(&b, "INFO (differences from backup, may be intentional)", infos, opts.InfoLimit, verbose)
	return b.String()
}

func writeHeading(b *strings.Builder, title string) {
	rule := ruleStyle.Render(strings.Repeat("=", ruleWidth))
	b.WriteString(rule + "\n")
	b.WriteString(headerStyle.Render(title) + "\n")
	b.WriteString(rule + "\n")
}

func writeSection(b *strings.Builder, title string, issues []model.Issue, limit int, verbose bool) {
	if len(issues) == 0 {
		return
	}
	style := SeverityStyle(issues[0].Severity)
	b.WriteString("\n")
	b.WriteString(style.Render("  --- " + title + " ---"))
	b.WriteString("\n")

	shown := issues
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, i := range shown {
		line := "    " + i.String()
		if verbose {
			line += dimStyle.Render(" (" + i.Check + ")")
		}
		b.WriteString(line + "\n")
	}
	if rest := len(issues) - len(shown); rest > 0 {
		fmt.Fprintf(b, "    ... and %d more %s items\n", rest, issues[0].Severity)
	}
}

// styleStatus colors the [OK] / [!!] / [SKIP] / [INFO] markers of a summary line.
func styleStatus(line string) string {
	switch {
	case strings.HasPrefix(line, "[OK]"):
		return okStyle.Render("[OK]") + line[len("[OK]"):]
	case strings.HasPrefix(line, "[!!]"):
		return warnStyle.Render("[!!]") + line[len("[!!]"):]
	case strings.HasPrefix(line, "[SKIP]"):
		return dimStyle.Render("[SKIP]") + line[len("[SKIP]"):]
	case strings.HasPrefix(line, "[INFO]"):
		return infoStyle.Render("[INFO]") + line[len("[INFO]"):]
	}
	return line
}

// jsonReport is the machine-readable form of a Result.
type jsonReport struct {
	*Result
	Counts map[model.Severity]int `json:"counts"`
	Issues []model.Issue          `json:"issues"`
}

// WriteJSON encodes res, including every issue, as indented JSON.
func WriteJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Result: res,
		Counts: res.Log.Counts(),
		Issues: res.Log.Issues(),
	})
}
