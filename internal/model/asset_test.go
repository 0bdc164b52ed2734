package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord(4, []byte(`{"name": "SolSprites #4"}`))
	require.NoError(t, err)
	assert.Equal(t, 4, r.Index)
	assert.Equal(t, "SolSprites #4", r.Get("name").String())

	_, err = ParseRecord(4, []byte(`{"name": `))
	assert.EqualError(t, err, "invalid JSON in 4.json")

	_, err = ParseRecord(4, []byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParseRecord(4, []byte("{\"bad\": \"\xff\xfe\"}"))
	assert.EqualError(t, err, "invalid UTF-8 in 4.json")
}

func TestAttribute_Empty(t *testing.T) {
	tests := []struct {
		entry string
		empty bool
	}{
		{`{"trait_type": "A", "value": "x"}`, false},
		{`{"trait_type": "A", "value": "0"}`, false},
		{`{"trait_type": "A", "value": 3}`, false},
		{`{"trait_type": "A", "value": true}`, false},
		{`{"trait_type": "A", "value": [1]}`, false},
		{`{"trait_type": "A", "value": ""}`, true},
		{`{"trait_type": "A", "value": 0}`, true},
		{`{"trait_type": "A", "value": false}`, true},
		{`{"trait_type": "A", "value": null}`, true},
		{`{"trait_type": "A", "value": []}`, true},
		{`{"trait_type": "A", "value": {}}`, true},
		{`{"trait_type": "A"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			assert.Equal(t, tt.empty, AttributeFrom(gjson.Parse(tt.entry)).Empty())
		})
	}

	missing := AttributeFrom(gjson.Parse(`{"trait_type": "A"}`))
	blank := AttributeFrom(gjson.Parse(`{"trait_type": "A", "value": ""}`))
	assert.False(t, missing.HasValue)
	assert.True(t, blank.HasValue)
	assert.Equal(t, missing.Value, blank.Value)
}

func TestAttributes(t *testing.T) {
	r, err := ParseRecord(0, []byte(`{"attributes": [
		{"trait_type": "Element", "value": "Fire"},
		"loose",
		{"trait_type": "Level", "value": 3}
	]}`))
	require.NoError(t, err)

	attrs := r.Attributes()
	require.Len(t, attrs, 3)
	assert.Equal(t, TraitPair{"Element", "Fire"}, attrs[0].Pair())
	assert.Equal(t, Attribute{Raw: `"loose"`}, attrs[1])
	assert.Equal(t, "3", attrs[2].Value)

	r, err = ParseRecord(0, []byte(`{"attributes": {"trait_type": "Element"}}`))
	require.NoError(t, err)
	assert.Nil(t, r.Attributes())
}

func TestAttributeFrom_NonObject(t *testing.T) {
	a := AttributeFrom(gjson.Parse(`42`))
	assert.Empty(t, a.TraitType)
	assert.Empty(t, a.Value)
	assert.Equal(t, "42", a.Raw)
}

func TestTraitPairAndDimension(t *testing.T) {
	assert.Equal(t, "(Strain, Pink Kush)", TraitPair{"Strain", "Pink Kush"}.String())
	assert.Equal(t, "800x600", PNGHeader{Width: 800, Height: 600}.Dimension())
}

func TestSeverity(t *testing.T) {
	s, err := ParseSeverity(" warning ")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarn, s)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)

	assert.Less(t, SeverityError.Rank(), SeverityWarn.Rank())
	assert.Less(t, SeverityWarn.Rank(), SeverityInfo.Rank())
	assert.Equal(t, "[Pass 1] 2.json: Missing",
		Issue{Pass: 1, Severity: SeverityError, Subject: "2.json", Description: "Missing"}.String())
}
