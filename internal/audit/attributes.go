package audit

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"assetaudit/internal/model"
	"assetaudit/internal/store"
)

// Duplicate is one trait type repeated within a record.
type Duplicate struct {
	Index     int
	TraitType string
	Count     int
}

func (d Duplicate) String() string {
	return fmt.Sprintf("(%d, %s, %d)", d.Index, d.TraitType, d.Count)
}

// AttributeStats aggregates PASS 3 for the summary, in index order. Every
// entry here also has an issue in the log.
type AttributeStats struct {
	MissingByTrait map[string][]int // required trait -> indices lacking it
	Duplicates     []Duplicate
}

// CheckAttributes is PASS 3: validates every record's attribute list
// against the configured trait schema.
func (a *Auditor) CheckAttributes(dir *store.Dir, valid []int, log *IssueLog) (PassSummary, AttributeStats) {
	sum := PassSummary{Pass: 3, Title: "Attribute Validity — required traits, valid values, schema"}
	schema := a.cfg.Schema
	stats := AttributeStats{MissingByTrait: make(map[string][]int)}

	known := toSet(schema.KnownTraitTypes)
	allowed := make(map[string]map[string]bool, len(schema.AllowedValues))
	for tt, values := range schema.AllowedValues {
		allowed[tt] = toSet(values)
	}

	errs, warns := 0, 0
	for _, idx := range valid {
		subject := model.RecordName(idx)
		rec, err := dir.LoadRecord(idx)
		if err != nil {
			// Already reported by PASS 2.
			a.logger.Debug("Skipping unreadable record", zap.Int("index", idx), zap.Error(err))
			continue
		}

		attrs := rec.Attributes()
		if len(attrs) == 0 {
			log.Add(3, model.SeverityError, CheckAttributesMissing, subject, "No attributes at all")
			errs++
			continue
		}

		counts := make(map[string]int)
		var order []string
		for _, attr := range attrs {
			tt := attr.TraitType
			if tt == "" {
				log.Addf(3, model.SeverityError, CheckTraitTypeMissing, subject,
					"Attribute with empty trait_type: %s", attr.Raw)
				errs++
				continue
			}
			if attr.Empty() {
				log.Addf(3, model.SeverityWarn, CheckEmptyValue, subject, "Attribute '%s' has empty value", tt)
				warns++
			}

			if counts[tt] == 0 {
				order = append(order, tt)
			}
			counts[tt]++

			if !known[tt] {
				log.Addf(3, model.SeverityWarn, CheckUnknownTraitType, subject, "Unknown trait_type: '%s'", tt)
				warns++
			}
			if values, ok := allowed[tt]; ok && !values[attr.Value] {
				log.Addf(3, model.SeverityWarn, CheckUnusualValue, subject, "Unusual %s value: '%s'", tt, attr.Value)
				warns++
			}
		}

		for _, req := range schema.RequiredTraits {
			if counts[req] == 0 {
				log.Addf(3, model.SeverityError, CheckRequiredTrait, subject, "Missing required trait: %s", req)
				errs++
				stats.MissingByTrait[req] = append(stats.MissingByTrait[req], idx)
			}
		}

		for _, tt := range order {
			if n := counts[tt]; n > 1 {
				log.Addf(3, model.SeverityWarn, CheckDuplicateTrait, subject,
					"Duplicate trait_type '%s' appears %d times", tt, n)
				warns++
				stats.Duplicates = append(stats.Duplicates, Duplicate{Index: idx, TraitType: tt, Count: n})
			}
		}
	}

	if errs == 0 && warns == 0 {
		sum.addf("[OK] All %d records have valid attributes", len(valid))
		return sum, stats
	}

	limit := a.cfg.Report.SummaryLimit
	sum.addf("[!!] %d errors, %d warnings in attribute validation", errs, warns)
	for _, req := range schema.RequiredTraits {
		if missing := stats.MissingByTrait[req]; len(missing) > 0 {
			sum.addf("     Missing %s: indices %s", req, capInts(missing, limit))
		}
	}
	if len(stats.Duplicates) > 0 {
		shown := stats.Duplicates
		more := ""
		if limit > 0 && len(shown) > limit {
			shown, more = shown[:limit], "..."
		}
		parts := make([]string, len(shown))
		for i, d := range shown {
			parts[i] = d.String()
		}
		sum.addf("     Duplicate traits: [%s]%s", strings.Join(parts, " "), more)
	}
	return sum, stats
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
