// Package traitaudit computes trait frequencies across a collection and
// maintains the persisted _trait_audit.json snapshot they are compared to.
package traitaudit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"assetaudit/internal/store"
)

// Snapshot is the persisted baseline. Keys other than the three below are
// kept as they were when the file is rewritten.
type Snapshot struct {
	ItemsWritten        int                 `json:"items_written"`
	TraitTypesSeen      map[string]int      `json:"trait_types_seen"`
	UniqueValuesByTrait map[string][]string `json:"unique_values_by_trait"`

	raw []byte
}

// Live holds trait statistics recomputed from the records.
type Live struct {
	Items  int                        // number of indices scanned
	Counts map[string]int             // trait_type -> occurrences
	Values map[string]map[string]bool // trait_type -> non-empty values
}

// Compute scans the records of valid. Unreadable records are skipped; they
// are reported by the consistency pass.
func Compute(dir *store.Dir, valid []int, logger *zap.Logger) *Live {
	live := &Live{
		Items:  len(valid),
		Counts: make(map[string]int),
		Values: make(map[string]map[string]bool),
	}
	for _, idx := range valid {
		rec, err := dir.LoadRecord(idx)
		if err != nil {
			logger.Debug("Skipping unreadable record in trait count", zap.Int("index", idx), zap.Error(err))
			continue
		}
		for _, a := range rec.Attributes() {
			if a.TraitType == "" {
				continue
			}
			live.Counts[a.TraitType]++
			if a.Empty() {
				continue
			}
			if live.Values[a.TraitType] == nil {
				live.Values[a.TraitType] = make(map[string]bool)
			}
			live.Values[a.TraitType][a.Value] = true
		}
	}
	return live
}

// SortedValues returns the value set of traitType in ascending order.
func (l *Live) SortedValues(traitType string) []string {
	return sortedKeys(l.Values[traitType])
}

// Load reads a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.raw = data
	return &s, nil
}

// Apply replaces the recomputed sections of s with live. ItemsWritten is
// only filled in for a snapshot that has never been written.
func (s *Snapshot) Apply(live *Live) {
	s.TraitTypesSeen = make(map[string]int, len(live.Counts))
	for tt, n := range live.Counts {
		s.TraitTypesSeen[tt] = n
	}
	s.UniqueValuesByTrait = make(map[string][]string, len(live.Values))
	for tt := range live.Values {
		s.UniqueValuesByTrait[tt] = live.SortedValues(tt)
	}
	if s.raw == nil {
		s.ItemsWritten = live.Items
	}
}

// Save writes s to path with 2-space indentation, keeping unrelated keys of
// the document it was loaded from.
func (s *Snapshot) Save(path string) error {
	doc := s.raw
	if doc == nil {
		doc = []byte(`{}`)
	}
	var err error
	if s.raw == nil {
		if doc, err = sjson.SetBytes(doc, "items_written", s.ItemsWritten); err != nil {
			return err
		}
	}
	if doc, err = sjson.SetBytes(doc, "trait_types_seen", s.TraitTypesSeen); err != nil {
		return err
	}
	if doc, err = sjson.SetBytes(doc, "unique_values_by_trait", s.UniqueValuesByTrait); err != nil {
		return err
	}
	out, err := store.Indent(doc)
	if err != nil {
		return err
	}
	if err := store.WriteFileAtomic(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.raw = out
	return nil
}

// Refresh recomputes the snapshot at path from the records of valid and
// rewrites it. A missing file is created.
func Refresh(dir *store.Dir, valid []int, path string, logger *zap.Logger) (*Snapshot, *Live, error) {
	snap, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, err
		}
		logger.Info("Creating new trait audit snapshot", zap.String("path", path))
		snap = &Snapshot{}
	}
	live := Compute(dir, valid, logger)
	snap.Apply(live)
	if err := snap.Save(path); err != nil {
		return nil, nil, err
	}
	logger.Debug("Trait audit snapshot written",
		zap.String("path", path),
		zap.Int("trait_types", len(live.Counts)))
	return snap, live, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
