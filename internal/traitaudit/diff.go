package traitaudit

import "sort"

// DriftKind says how a trait type diverges from the snapshot.
type DriftKind int

const (
	DriftCount        DriftKind = iota // occurrence count differs
	DriftOnlyLive                      // values present in records but not in the snapshot
	DriftOnlySnapshot                  // values present in the snapshot but not in records
)

// Drift is one divergence between the snapshot and the live records.
type Drift struct {
	TraitType string
	Kind      DriftKind
	Snapshot  int      // DriftCount only
	Live      int      // DriftCount only
	Values    []string // sorted; value drifts only
}

// Diff compares snap against live for every trait type known to either.
// Results are ordered by trait type, then kind.
func Diff(snap *Snapshot, live *Live) []Drift {
	var drifts []Drift

	countTypes := make(map[string]bool)
	for tt := range live.Counts {
		countTypes[tt] = true
	}
	for tt := range snap.TraitTypesSeen {
		countTypes[tt] = true
	}
	for _, tt := range sortedKeys(countTypes) {
		if a, b := snap.TraitTypesSeen[tt], live.Counts[tt]; a != b {
			drifts = append(drifts, Drift{TraitType: tt, Kind: DriftCount, Snapshot: a, Live: b})
		}
	}

	valueTypes := make(map[string]bool)
	for tt := range live.Values {
		valueTypes[tt] = true
	}
	for tt := range snap.UniqueValuesByTrait {
		valueTypes[tt] = true
	}
	for _, tt := range sortedKeys(valueTypes) {
		recorded := make(map[string]bool)
		for _, v := range snap.UniqueValuesByTrait[tt] {
			recorded[v] = true
		}
		var onlyLive, onlySnap []string
		for v := range live.Values[tt] {
			if !recorded[v] {
				onlyLive = append(onlyLive, v)
			}
		}
		for v := range recorded {
			if !live.Values[tt][v] {
				onlySnap = append(onlySnap, v)
			}
		}
		if len(onlyLive) > 0 {
			sort.Strings(onlyLive)
			drifts = append(drifts, Drift{TraitType: tt, Kind: DriftOnlyLive, Values: onlyLive})
		}
		if len(onlySnap) > 0 {
			sort.Strings(onlySnap)
			drifts = append(drifts, Drift{TraitType: tt, Kind: DriftOnlySnapshot, Values: onlySnap})
		}
	}

	sort.SliceStable(drifts, func(i, j int) bool {
		if drifts[i].TraitType != drifts[j].TraitType {
			return drifts[i].TraitType < drifts[j].TraitType
		}
		return drifts[i].Kind < drifts[j].Kind
	})
	return drifts
}
