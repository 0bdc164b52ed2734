package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetaudit/internal/model"
)

func TestPair_Gap(t *testing.T) {
	log := NewIssueLog(nil, nil)
	names := []string{"0.json", "0.png", "1.json", "1.png", "3.json", "3.png"}

	valid, sum := Pair(names, log)

	assert.Equal(t, []int{0, 1, 3}, valid)
	require.Equal(t, 1, log.Len())
	gap := log.Issues()[0]
	assert.Equal(t, CheckSequenceGap, gap.Check)
	assert.Equal(t, model.SeverityError, gap.Severity)
	assert.Equal(t, "2.json / 2.png", gap.Subject)
	assert.Contains(t, sum.Lines, "[!!] 1 gaps in sequence: [2]")
}

func TestPair_Orphans(t *testing.T) {
	log := NewIssueLog(nil, nil)
	names := []string{"0.json", "0.png", "1.json", "2.png", "_trait_audit.json", "index_map.json", "cover.png", "01.txt"}

	valid, sum := Pair(names, log)

	assert.Equal(t, []int{0}, valid)
	assert.Equal(t, []string{CheckImageMissing, CheckRecordMissing}, checks(log.Issues()))
	assert.Equal(t, "1.json", log.Issues()[0].Subject)
	assert.Equal(t, "2.png", log.Issues()[1].Subject)
	assert.Contains(t, sum.Lines, "[!!] Found 2 unpaired files")
	assert.Contains(t, sum.Lines, "[OK] No gaps in sequence 0-0")
}

func TestPair_EmptyValidSet(t *testing.T) {
	log := NewIssueLog(nil, nil)

	valid, sum := Pair([]string{"4.json", "9.png"}, log)

	assert.Empty(t, valid)
	assert.Empty(t, log.ByCheck(CheckSequenceGap))
	assert.Equal(t, 2, log.Len())
	assert.Contains(t, sum.Lines, "[!!] No index has both a record and an image")
}

func TestPair_Clean(t *testing.T) {
	log := NewIssueLog(nil, nil)

	valid, sum := Pair([]string{"2.png", "1.json", "2.json", "1.png"}, log)

	assert.Equal(t, []int{1, 2}, valid)
	assert.Zero(t, log.Len())
	assert.Equal(t, []string{
		"[OK] All 2 indices (1-2) have matching .json and .png files",
		"[OK] No gaps in sequence 1-2",
	}, sum.Lines)
}

func TestCapInts(t *testing.T) {
	assert.Equal(t, "[1 2 3]", capInts([]int{1, 2, 3}, 3))
	assert.Equal(t, "[1 2]...", capInts([]int{1, 2, 3}, 2))
	assert.Equal(t, "[1 2 3]", capInts([]int{1, 2, 3}, 0))
}
