package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"assetaudit/internal/model"
	"assetaudit/internal/store"
	"assetaudit/internal/traitaudit"
)

// CrossReference is PASS 5. Each of its three sub-checks is skipped, with a
// note in the summary, when its input does not exist.
func (a *Auditor) CrossReference(dir *store.Dir, valid []int, log *IssueLog) PassSummary {
	sum := PassSummary{Pass: 5, Title: "Cross-Reference — source images, backup consistency, trait audit"}
	a.checkSourceMap(&sum, log)
	a.checkBackup(dir, &sum, log)
	a.checkTraitAudit(dir, valid, &sum, log)
	return sum
}

func (a *Auditor) checkSourceMap(sum *PassSummary, log *IssueLog) {
	path := a.cfg.IndexMapPath()
	if !fileExists(path) {
		sum.addf("[SKIP] No %s found", filepath.Base(path))
		return
	}

	data, err := os.ReadFile(path)
	var entries []model.IndexMapEntry
	if err == nil {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		log.Addf(5, model.SeverityError, CheckIndexMapUnreadable, filepath.Base(path), "Cannot read index map: %v", err)
		sum.addf("[!!] Index map unreadable")
		return
	}
	sum.addf("Index map loaded: %d entries", len(entries))

	missing := 0
	for _, e := range entries {
		src := filepath.Join(a.cfg.Paths.SourceImagesDir, e.SrcFile)
		if !fileExists(src) {
			log.Addf(5, model.SeverityWarn, CheckSourceMissing, model.ImageName(e.FinalIdx),
				"Source file missing: %s", e.SrcFile)
			missing++
		}
	}
	if missing == 0 {
		sum.addf("[OK] All %d source files present", len(entries))
	} else {
		sum.addf("[!!] %d source files missing", missing)
	}
}

func (a *Auditor) checkBackup(dir *store.Dir, sum *PassSummary, log *IssueLog) {
	backupRoot := a.cfg.Paths.BackupAssetsDir
	if !store.Exists(backupRoot) {
		sum.addf("[SKIP] No backup directory found")
		return
	}
	backup, err := store.Open(backupRoot)
	if err != nil {
		sum.addf("[SKIP] Backup unreadable: %v", err)
		return
	}
	mainNames, err := dir.Names()
	if err != nil {
		sum.addf("[SKIP] Collection unreadable: %v", err)
		return
	}
	backupNames, err := backup.Names()
	if err != nil {
		sum.addf("[SKIP] Backup unreadable: %v", err)
		return
	}

	mainRecords := model.IndexSet(mainNames, model.RecordExt)
	backupRecords := model.IndexSet(backupNames, model.RecordExt)
	onlyMain, shared, onlyBackup := split(mainRecords, backupRecords)
	for _, idx := range onlyMain {
		log.Add(5, model.SeverityInfo, CheckBackupOnlyMain, model.RecordName(idx), "Present in main but not in backup")
	}
	for _, idx := range onlyBackup {
		log.Add(5, model.SeverityInfo, CheckBackupOnlyBackup, model.RecordName(idx), "Present in backup but not in main")
	}
	limit := a.cfg.Report.SummaryLimit
	if len(onlyMain) > 0 {
		sum.addf("[INFO] Records only in main (not in backup): %s", capInts(onlyMain, limit))
	}
	if len(onlyBackup) > 0 {
		sum.addf("[INFO] Records only in backup (not in main): %s", capInts(onlyBackup, limit))
	}

	differ := 0
	for _, idx := range shared {
		mainRec, err := dir.LoadRecord(idx)
		if err != nil {
			a.logger.Debug("Skipping backup comparison", zap.Int("index", idx), zap.Error(err))
			continue
		}
		backupRec, err := backup.LoadRecord(idx)
		if err != nil {
			a.logger.Debug("Skipping backup comparison", zap.Int("index", idx), zap.Error(err))
			continue
		}
		added, removed := attributeDiff(mainRec.Attributes(), backupRec.Attributes())
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		var details []string
		if len(added) > 0 {
			details = append(details, "added: "+formatPairs(added))
		}
		if len(removed) > 0 {
			details = append(details, "removed: "+formatPairs(removed))
		}
		log.Addf(5, model.SeverityInfo, CheckBackupDiffers, model.RecordName(idx),
			"Differs from backup: %s", strings.Join(details, "; "))
		differ++
	}
	if differ == 0 {
		sum.addf("[OK] All %d shared records match between main and backup", len(shared))
	} else {
		sum.addf("[!!] %d records differ between main and backup", differ)
	}

	_, sharedImages, _ := split(model.IndexSet(mainNames, model.ImageExt), model.IndexSet(backupNames, model.ImageExt))
	sizeDiffs := 0
	for _, idx := range sharedImages {
		mainSize, err1 := dir.ImageSize(idx)
		backupSize, err2 := backup.ImageSize(idx)
		if err1 != nil || err2 != nil {
			continue
		}
		if mainSize != backupSize {
			log.Addf(5, model.SeverityWarn, CheckBackupImageSize, model.ImageName(idx),
				"PNG differs from backup: main=%sB backup=%sB", humanize.Comma(mainSize), humanize.Comma(backupSize))
			sizeDiffs++
		}
	}
	if sizeDiffs == 0 {
		sum.addf("[OK] All %d shared PNGs match (size) between main and backup", len(sharedImages))
	} else {
		sum.addf("[!!] %d PNGs differ in size between main and backup", sizeDiffs)
	}
}

func (a *Auditor) checkTraitAudit(dir *store.Dir, valid []int, sum *PassSummary, log *IssueLog) {
	path := a.cfg.TraitAuditPath()
	subject := filepath.Base(path)
	if !fileExists(path) {
		sum.addf("[SKIP] No %s found", subject)
		return
	}
	snap, err := traitaudit.Load(path)
	if err != nil {
		log.Addf(5, model.SeverityError, CheckAuditUnreadable, subject, "Cannot read trait audit: %v", err)
		sum.addf("[!!] Trait audit unreadable")
		return
	}

	if snap.ItemsWritten != len(valid) {
		log.Addf(5, model.SeverityError, CheckAuditCount, subject,
			"items_written=%d but found %d actual items", snap.ItemsWritten, len(valid))
	} else {
		sum.addf("[OK] Trait audit items_written (%d) matches actual count", snap.ItemsWritten)
	}

	live := traitaudit.Compute(dir, valid, a.logger)
	drifts := traitaudit.Diff(snap, live)
	for _, d := range drifts {
		switch d.Kind {
		case traitaudit.DriftCount:
			log.Addf(5, model.SeverityWarn, CheckTraitCountDrift, subject,
				"Trait count mismatch for '%s': audit says %d, actual records have %d", d.TraitType, d.Snapshot, d.Live)
		case traitaudit.DriftOnlyLive:
			log.Addf(5, model.SeverityWarn, CheckTraitValuesDrift, subject,
				"Values in records but not in audit for '%s': %s", d.TraitType, strings.Join(d.Values, ", "))
		case traitaudit.DriftOnlySnapshot:
			log.Addf(5, model.SeverityWarn, CheckTraitValuesDrift, subject,
				"Values in audit but not in records for '%s': %s", d.TraitType, strings.Join(d.Values, ", "))
		}
	}
	if len(drifts) == 0 {
		sum.addf("[OK] Trait counts and values match %s", subject)
	} else {
		sum.addf("[!!] %d trait drifts against %s", len(drifts), subject)
	}
}

// split partitions two index sets into sorted only-left, both and only-right.
func split(left, right map[int]bool) (onlyLeft, both, onlyRight []int) {
	for _, idx := range model.SortedIndices(left) {
		if right[idx] {
			both = append(both, idx)
		} else {
			onlyLeft = append(onlyLeft, idx)
		}
	}
	for _, idx := range model.SortedIndices(right) {
		if !left[idx] {
			onlyRight = append(onlyRight, idx)
		}
	}
	return onlyLeft, both, onlyRight
}

// attributeDiff compares two attribute lists as unordered sets of
// (trait_type, value) pairs.
func attributeDiff(current, previous []model.Attribute) (added, removed []model.TraitPair) {
	cur := pairSet(current)
	prev := pairSet(previous)
	for p := range cur {
		if !prev[p] {
			added = append(added, p)
		}
	}
	for p := range prev {
		if !cur[p] {
			removed = append(removed, p)
		}
	}
	sortPairs(added)
	sortPairs(removed)
	return added, removed
}

func pairSet(attrs []model.Attribute) map[model.TraitPair]bool {
	set := make(map[model.TraitPair]bool, len(attrs))
	for _, a := range attrs {
		set[a.Pair()] = true
	}
	return set
}

func sortPairs(ps []model.TraitPair) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].TraitType != ps[j].TraitType {
			return ps[i].TraitType < ps[j].TraitType
		}
		return ps[i].Value < ps[j].Value
	})
}

func formatPairs(ps []model.TraitPair) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
