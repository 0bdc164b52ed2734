package scan

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport prints res in the plain-text layout of the scan command.
func WriteReport(w io.Writer, res *Result) error {
	var b strings.Builder
	if len(res.Mismatches) == 0 {
		b.WriteString("No Type/Strain mismatches found.\n")
	} else {
		fmt.Fprintf(&b, "Found %d potential Type mismatches:\n", len(res.Mismatches))
		for _, m := range res.Mismatches {
			fmt.Fprintf(&b, "  %d.json / %d.png: Type='%s' but Strain='%s' suggests Type='%s'\n",
				m.Index, m.Index, m.Type, m.Strain, m.Expected)
			fmt.Fprintf(&b, "    source: %s\n", m.Source)
		}
	}

	b.WriteString("\nDuplicate Strain check:\n")
	if len(res.MultiStrains) == 0 {
		b.WriteString("  No records with multiple strains.\n")
	}
	for _, ms := range res.MultiStrains {
		list := "['" + strings.Join(ms.Strains, "', '") + "']"
		if ms.Redundant {
			var parts []string
			for _, s := range ms.Strains {
				if !strings.Contains(s, " ") {
					parts = append(parts, s)
				}
			}
			fmt.Fprintf(&b, "  %d.json: REDUNDANT strains %s, '%s' already contains %s\n",
				ms.Index, list, ms.Compound, "['"+strings.Join(parts, "', '")+"']")
		} else {
			fmt.Fprintf(&b, "  %d.json: Multiple strains %s\n", ms.Index, list)
		}
	}
	fmt.Fprintf(&b, "\nScanned %d records.\n", res.Scanned)
	_, err := io.WriteString(w, b.String())
	return err
}
