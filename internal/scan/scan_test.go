package scan

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assetaudit/internal/config"
	"assetaudit/internal/testutil"
)

func newScanner(t *testing.T) (*Scanner, *testutil.Collection, *testutil.Collection) {
	t.Helper()
	c := testutil.NewCollection(t)
	src := testutil.At(t, filepath.Join(t.TempDir(), "images"))
	cfg := config.DefaultConfig()
	cfg.Paths.AssetsDir = c.Root
	cfg.Paths.SourceImagesDir = src.Root
	return New(cfg, zap.NewNop()), c, src
}

func write(c *testutil.Collection, idx int, attrs ...testutil.Attr) {
	c.WriteRecord(idx, testutil.Record(idx, attrs...))
	c.WritePNG(idx, 800, 800, 1000)
}

func TestScanner_Run(t *testing.T) {
	s, c, src := newScanner(t)
	write(c, 0, testutil.A("Type", "Sprite"), testutil.A("Strain", "Golden Teacher"))
	write(c, 1, testutil.A("Type", "Cannabis"), testutil.A("Strain", "Pink Kush"), testutil.A("Strain", "Kush"))
	write(c, 2, testutil.A("Type", "Sprite"), testutil.A("Strain", "Borneo"), testutil.A("Strain", "Kratom"))
	write(c, 3, testutil.A("Type", "Sprite"), testutil.A("Strain", "Unlisted"))
	c.WriteRecord(4, testutil.Record(4, testutil.A("Type", "Sprite"), testutil.A("Strain", "Kush")))
	src.WriteFile("0_golden.png", testutil.PNG(10, 10, 100))
	sub := testutil.At(t, filepath.Join(src.Root, "plants"))
	sub.WriteFile("2_borneo.png", testutil.PNG(10, 10, 100))

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scanned, "4.json has no image and is not scanned")
	want := []Mismatch{
		{Index: 0, Type: "Sprite", Strain: "Golden Teacher", Expected: "Mushroom", Source: "0_golden.png"},
		{Index: 2, Type: "Sprite", Strain: "Borneo", Expected: "Plant", Source: filepath.Join("plants", "2_borneo.png")},
		{Index: 2, Type: "Sprite", Strain: "Kratom", Expected: "Plant", Source: filepath.Join("plants", "2_borneo.png")},
	}
	if diff := cmp.Diff(want, res.Mismatches); diff != "" {
		t.Errorf("mismatches (-want +got):\n%s", diff)
	}
	require.Len(t, res.MultiStrains, 2)
	assert.True(t, res.MultiStrains[0].Redundant)
	assert.Equal(t, "Pink Kush", res.MultiStrains[0].Compound)
	assert.False(t, res.MultiStrains[1].Redundant)
}

func TestScanner_SourceNotFound(t *testing.T) {
	s, c, _ := newScanner(t)
	write(c, 7, testutil.A("Type", "Sprite"), testutil.A("Strain", "Kush"))

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, "?", res.Mismatches[0].Source)
}

func TestScanner_FirstTypeCounts(t *testing.T) {
	s, c, _ := newScanner(t)
	write(c, 0, testutil.A("Type", "Mushroom"), testutil.A("Type", "Sprite"), testutil.A("Strain", "Cubensis"))

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Mismatches)
}

func TestScanner_MissingCollection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.AssetsDir = filepath.Join(t.TempDir(), "missing")

	_, err := New(cfg, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		strains   []string
		compound  string
		redundant bool
	}{
		{[]string{"Psilocyben Cubensis", "Psilocyben", "Cubensis"}, "Psilocyben Cubensis", true},
		{[]string{"Kush", "pink kush"}, "pink kush", true},
		{[]string{"Borneo", "Kratom"}, "", false},
		{[]string{"Pink Kush", "Indica"}, "Pink Kush", false},
		{[]string{"Golden Teacher", "Z Strain"}, "Z Strain", false},
	}
	for _, tt := range tests {
		ms := Classify(1, tt.strains)
		assert.Equal(t, tt.compound, ms.Compound, tt.strains)
		assert.Equal(t, tt.redundant, ms.Redundant, tt.strains)
	}
}

func TestExpectedType_FirstGroupWins(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scan.StrainGroups = []config.StrainGroup{
		{Type: "Cannabis", Strains: []string{"Kush"}},
		{Type: "Plant", Strains: []string{"Kush", "Kratom"}},
	}
	s := New(cfg, nil)

	typ, ok := s.ExpectedType("Kush")
	assert.True(t, ok)
	assert.Equal(t, "Cannabis", typ)
	_, ok = s.ExpectedType("Unknown")
	assert.False(t, ok)
}

func TestWriteReport(t *testing.T) {
	res := &Result{
		Scanned:    3,
		Mismatches: []Mismatch{{Index: 5, Type: "Sprite", Strain: "Kush", Expected: "Cannabis", Source: "?"}},
		MultiStrains: []MultiStrain{
			Classify(1, []string{"Pink Kush", "Kush"}),
			Classify(2, []string{"Borneo", "Kratom"}),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "Found 1 potential Type mismatches:")
	assert.Contains(t, out, "5.json / 5.png: Type='Sprite' but Strain='Kush' suggests Type='Cannabis'")
	assert.Contains(t, out, "    source: ?")
	assert.Contains(t, out, "1.json: REDUNDANT strains ['Pink Kush', 'Kush'], 'Pink Kush' already contains ['Kush']")
	assert.Contains(t, out, "2.json: Multiple strains ['Borneo', 'Kratom']")
	assert.Contains(t, out, "Scanned 3 records.")
}

func TestWriteReport_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, &Result{}))
	assert.Contains(t, buf.String(), "No Type/Strain mismatches found.")
	assert.Contains(t, buf.String(), "No records with multiple strains.")
}
