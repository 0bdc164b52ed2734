package model

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Version of the assetaudit tool.
const Version = "0.4.1"

// Record is a single N.json descriptor. The raw document is kept so that
// rewrites preserve key order and fields this tool does not know about.
type Record struct {
	Index int    // Index taken from the filename, never from the document
	Raw   []byte // Document bytes exactly as read
}

// ErrNotObject is returned when a record decodes to something other than a JSON object.
var ErrNotObject = errors.New("record is not a JSON object")

// ParseRecord validates data as a JSON object and wraps it as the record for index.
func ParseRecord(index int, data []byte) (*Record, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid UTF-8 in %d.json", index)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %d.json", index)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, ErrNotObject
	}
	return &Record{Index: index, Raw: data}, nil
}

// Get returns the value at a gjson path such as "properties.files.0.uri".
func (r *Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// Attributes returns the attribute list in document order, or nil when the
// record has no attributes array. Non-object entries are returned with an empty trait type.
func (r *Record) Attributes() []Attribute {
	list := r.Get("attributes")
	if !list.IsArray() {
		return nil
	}
	var attrs []Attribute
	list.ForEach(func(_, v gjson.Result) bool {
		attrs = append(attrs, AttributeFrom(v))
		return true
	})
	return attrs
}

// Attribute is one {trait_type, value} pair. Value is the string rendering of
// whatever JSON value the document holds.
type Attribute struct {
	TraitType string
	Value     string
	HasValue  bool   // false when the entry has no "value" key
	Raw       string // Original JSON of the entry
}

// AttributeFrom converts a gjson attribute entry.
func AttributeFrom(v gjson.Result) Attribute {
	a := Attribute{Raw: v.Raw}
	if v.IsObject() {
		a.TraitType = v.Get("trait_type").String()
		value := v.Get("value")
		a.Value = value.String()
		a.HasValue = value.Exists()
	}
	return a
}

// Empty reports whether the value is missing or falsy: null, false, 0, "",
// [] or {}.
func (a Attribute) Empty() bool {
	if !a.HasValue {
		return true
	}
	v := gjson.Get(a.Raw, "value")
	switch v.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.Number:
		return v.Float() == 0
	case gjson.String:
		return v.Str == ""
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) == 0
		}
		return len(v.Map()) == 0
	}
	return false
}

// Pair is the (trait_type, value) identity used for set comparisons.
func (a Attribute) Pair() TraitPair {
	return TraitPair{TraitType: a.TraitType, Value: a.Value}
}

// TraitPair identifies an attribute by content.
type TraitPair struct {
	TraitType string
	Value     string
}

func (p TraitPair) String() string {
	return fmt.Sprintf("(%s, %s)", p.TraitType, p.Value)
}

// PNGHeader is the structural header of an image. Pixel data is never read.
type PNGHeader struct {
	Width     uint32 `json:"width"`
	Height    uint32 `json:"height"`
	BitDepth  uint8  `json:"bit_depth"`
	ColorType uint8  `json:"color_type"`
	FileSize  int64  `json:"file_size"`
}

// Dimension returns the "<width>x<height>" key used for consistency checks.
func (h PNGHeader) Dimension() string {
	return fmt.Sprintf("%dx%d", h.Width, h.Height)
}

// IndexMapEntry records which source image produced a final index.
type IndexMapEntry struct {
	FinalIdx int    `json:"final_idx"`
	SrcFile  string `json:"src_file"`
}
