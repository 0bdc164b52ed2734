package audit

import (
	"fmt"

	"assetaudit/internal/model"
)

// Pair is PASS 1. From the names in the collection directory it reports
// records without an image, images without a record and gaps in the paired
// sequence, and returns the sorted valid index set.
func Pair(names []string, log *IssueLog) ([]int, PassSummary) {
	sum := PassSummary{Pass: 1, Title: "File Pairing — every N.json must have a matching N.png"}

	records := model.IndexSet(names, model.RecordExt)
	images := model.IndexSet(names, model.ImageExt)

	valid := make(map[int]bool)
	mismatches := 0
	for _, idx := range model.SortedIndices(records) {
		if images[idx] {
			valid[idx] = true
			continue
		}
		log.Addf(1, model.SeverityError, CheckImageMissing, model.RecordName(idx),
			"Record exists but %s is missing", model.ImageName(idx))
		mismatches++
	}
	for _, idx := range model.SortedIndices(images) {
		if records[idx] {
			continue
		}
		log.Addf(1, model.SeverityError, CheckRecordMissing, model.ImageName(idx),
			"Image exists but %s is missing", model.RecordName(idx))
		mismatches++
	}

	sorted := model.SortedIndices(valid)
	if len(sorted) == 0 {
		if mismatches > 0 {
			sum.addf("[!!] Found %d unpaired files", mismatches)
		}
		sum.addf("[!!] No index has both a record and an image")
		return sorted, sum
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	var gaps []int
	for idx := lo; idx <= hi; idx++ {
		if valid[idx] {
			continue
		}
		gaps = append(gaps, idx)
		log.Addf(1, model.SeverityError, CheckSequenceGap,
			fmt.Sprintf("%s / %s", model.RecordName(idx), model.ImageName(idx)),
			"Gap in sequence: index %d has no complete record/image pair", idx)
	}

	if mismatches == 0 {
		sum.addf("[OK] All %d indices (%d-%d) have matching .json and .png files", len(sorted), lo, hi)
	} else {
		sum.addf("[!!] Found %d unpaired files", mismatches)
	}
	if len(gaps) == 0 {
		sum.addf("[OK] No gaps in sequence %d-%d", lo, hi)
	} else {
		sum.addf("[!!] %d gaps in sequence: %s", len(gaps), capInts(gaps, 20))
	}
	return sorted, sum
}

// capInts formats the first n values of xs, marking truncation. n <= 0
// shows everything.
func capInts(xs []int, n int) string {
	if n <= 0 || len(xs) <= n {
		return fmt.Sprint(xs)
	}
	return fmt.Sprint(xs[:n]) + "..."
}
