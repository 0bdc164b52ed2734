package pngmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(width, height uint32, bitDepth, colorType byte) []byte {
	var buf bytes.Buffer
	buf.Write(signature)
	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.WriteString("IHDR")
	binary.Write(&buf, binary.BigEndian, width)
	binary.Write(&buf, binary.BigEndian, height)
	buf.Write([]byte{bitDepth, colorType, 0, 0, 0})
	buf.Write([]byte{0, 0, 0, 0}) // CRC, not checked
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	h, err := Parse(bytes.NewReader(header(800, 600, 8, 6)))
	require.NoError(t, err)
	assert.EqualValues(t, 800, h.Width)
	assert.EqualValues(t, 600, h.Height)
	assert.EqualValues(t, 8, h.BitDepth)
	assert.EqualValues(t, 6, h.ColorType)
	assert.Equal(t, "800x600", h.Dimension())
}

func TestParse_Failures(t *testing.T) {
	good := header(10, 10, 8, 2)

	wrongChunk := append([]byte(nil), good...)
	copy(wrongChunk[12:16], "IDAT")

	shortLen := append([]byte(nil), good...)
	binary.BigEndian.PutUint32(shortLen[8:12], 4)

	tests := []struct {
		name   string
		data   []byte
		reason string
	}{
		{"empty", nil, ReasonNotPNG},
		{"bad signature", []byte("GIF89a.........."), ReasonNotPNG},
		{"signature only", signature, ReasonMissingIHDR},
		{"wrong first chunk", wrongChunk, ReasonMissingIHDR},
		{"short length", shortLen, ReasonShortIHDR},
		{"truncated payload", good[:20], ReasonShortIHDR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bytes.NewReader(tt.data))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
			assert.Equal(t, tt.reason, pe.Reason)
		})
	}
}

func TestReadHeader_FileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.png")
	data := append(header(400, 400, 8, 6), make([]byte, 200)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), h.FileSize)
	assert.Equal(t, "400x400", h.Dimension())
}

func TestReadHeader_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.png")
	_, err := ReadHeader(path)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.NotEmpty(t, pe.Reason)
}

func TestReadHeader_ReasonCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png at all"), 0o644))

	_, err := ReadHeader(path)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.Equal(t, ReasonNotPNG, pe.Reason)
}
