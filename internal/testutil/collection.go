// Package testutil builds throwaway collections on disk for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Attr is a {trait_type, value} pair as written to a record.
type Attr struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// A is shorthand for an Attr.
func A(traitType, value string) Attr {
	return Attr{TraitType: traitType, Value: value}
}

// Collection is a directory populated with records and images.
type Collection struct {
	t    testing.TB
	Root string
}

// NewCollection creates an empty collection under t.TempDir().
func NewCollection(t testing.TB) *Collection {
	t.Helper()
	return &Collection{t: t, Root: t.TempDir()}
}

// At wraps an existing directory, creating it if needed.
func At(t testing.TB, root string) *Collection {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	return &Collection{t: t, Root: root}
}

// Record returns a well-formed SolSprites record for idx.
func Record(idx int, attrs ...Attr) map[string]any {
	if attrs == nil {
		attrs = DefaultAttrs()
	}
	image := fmt.Sprintf("%d.png", idx)
	return map[string]any{
		"name":                    fmt.Sprintf("SolSprites #%d", idx),
		"symbol":                  "SPRITE",
		"description":             "A sprite.",
		"seller_fee_basis_points": 1000,
		"image":                   image,
		"attributes":              attrs,
		"properties": map[string]any{
			"files": []map[string]any{{"uri": image, "type": "image/png"}},
			"creators": []map[string]any{
				{"address": "777ePKXhcxMdJPMA22YeiR6pdMUTadnpT7AUyto2Y24N", "share": 100},
			},
		},
	}
}

// DefaultAttrs satisfies the required traits.
func DefaultAttrs() []Attr {
	return []Attr{
		{"Element", "Fire"},
		{"Type", "Sprite"},
		{"Background", "Blue"},
	}
}

// WriteRecord writes doc as <idx>.json with 2-space indentation.
func (c *Collection) WriteRecord(idx int, doc any) string {
	c.t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		c.t.Fatalf("marshal record %d: %v", idx, err)
	}
	return c.WriteFile(fmt.Sprintf("%d.json", idx), data)
}

// WriteFile writes data under name.
func (c *Collection) WriteFile(name string, data []byte) string {
	c.t.Helper()
	path := filepath.Join(c.Root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WritePNG writes <idx>.png with the given dimensions, padded to size bytes.
func (c *Collection) WritePNG(idx int, width, height uint32, size int) string {
	c.t.Helper()
	return c.WriteFile(fmt.Sprintf("%d.png", idx), PNG(width, height, size))
}

// Add writes a valid record and a 800x800 image of 1000 bytes for each idx.
func (c *Collection) Add(indices ...int) {
	c.t.Helper()
	for _, idx := range indices {
		c.WriteRecord(idx, Record(idx))
		c.WritePNG(idx, 800, 800, 1000)
	}
}

// ReadFile returns the content of name.
func (c *Collection) ReadFile(name string) []byte {
	c.t.Helper()
	data, err := os.ReadFile(filepath.Join(c.Root, name))
	if err != nil {
		c.t.Fatalf("read %s: %v", name, err)
	}
	return data
}

// PNG returns a minimal PNG header padded with zeros to size bytes.
func PNG(width, height uint32, size int) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.WriteString("IHDR")
	_ = binary.Write(&buf, binary.BigEndian, width)
	_ = binary.Write(&buf, binary.BigEndian, height)
	buf.Write([]byte{8, 6, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, 0})
	if pad := size - buf.Len(); pad > 0 {
		buf.Write(make([]byte, pad))
	}
	return buf.Bytes()
}
