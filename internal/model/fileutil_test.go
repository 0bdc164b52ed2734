package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexFromName(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want int
		ok   bool
	}{
		{"0.json", RecordExt, 0, true},
		{"12.json", RecordExt, 12, true},
		{"007.png", ImageExt, 7, true},
		{"12.png", RecordExt, 0, false},
		{".json", RecordExt, 0, false},
		{"-1.json", RecordExt, 0, false},
		{"+1.json", RecordExt, 0, false},
		{"1a.json", RecordExt, 0, false},
		{"collection.json", RecordExt, 0, false},
		{"index_map.json", RecordExt, 0, false},
		{"1.json.bak", RecordExt, 0, false},
		{"99999999999999999999999.json", RecordExt, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IndexFromName(tt.name, tt.ext)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexSetAndSortedIndices(t *testing.T) {
	names := []string{"10.json", "2.json", "2.png", "notes.txt", "1.json", "x.json"}

	set := IndexSet(names, RecordExt)
	assert.Equal(t, map[int]bool{1: true, 2: true, 10: true}, set)
	assert.Equal(t, []int{1, 2, 10}, SortedIndices(set))
	assert.Empty(t, SortedIndices(nil))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "3.json", RecordName(3))
	assert.Equal(t, "3.png", ImageName(3))
}
