package model

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Extensions of the paired files.
const (
	RecordExt = ".json"
	ImageExt  = ".png"
)

// IndexFromName returns the integer index of a file such as "12.json" when
// its extension is ext and its stem is made only of ASCII digits.
func IndexFromName(name, ext string) (int, bool) {
	if filepath.Ext(name) != ext {
		return 0, false
	}
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		return 0, false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(stem)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IndexSet collects the indices of names carrying ext.
func IndexSet(names []string, ext string) map[int]bool {
	set := make(map[int]bool)
	for _, name := range names {
		if idx, ok := IndexFromName(name, ext); ok {
			set[idx] = true
		}
	}
	return set
}

// SortedIndices returns the members of set in ascending order.
func SortedIndices(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// RecordName returns "<idx>.json".
func RecordName(idx int) string {
	return strconv.Itoa(idx) + RecordExt
}

// ImageName returns "<idx>.png".
func ImageName(idx int) string {
	return strconv.Itoa(idx) + ImageExt
}
