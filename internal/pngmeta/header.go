// Package pngmeta reads the structural header of a PNG file (signature and
// IHDR chunk) without decoding pixel data.
package pngmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"assetaudit/internal/model"
)

var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Reasons reported in ParseError.
const (
	ReasonNotPNG      = "Not a valid PNG file"
	ReasonMissingIHDR = "Missing IHDR chunk"
	ReasonShortIHDR   = "Truncated IHDR chunk"
)

// ihdrMinLen covers width, height, bit depth, color type, compression,
// filter and interlace.
const ihdrMinLen = 13

// ParseError describes why a header could not be read. Callers decide the
// severity from Reason.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// ReadHeader opens path and parses its PNG header.
func ReadHeader(path string) (model.PNGHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.PNGHeader{}, &ParseError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.PNGHeader{}, &ParseError{Path: path, Reason: err.Error()}
	}

	h, err := Parse(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return model.PNGHeader{}, err
	}
	h.FileSize = info.Size()
	return h, nil
}

// Parse reads the signature and first chunk from r. FileSize is left zero.
func Parse(r io.Reader) (model.PNGHeader, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return model.PNGHeader{}, &ParseError{Reason: ReasonNotPNG}
	}
	if !bytes.Equal(sig[:], signature) {
		return model.PNGHeader{}, &ParseError{Reason: ReasonNotPNG}
	}

	// Chunk: 4-byte length, 4-byte type, payload.
	var chunk [8]byte
	if _, err := io.ReadFull(r, chunk[:]); err != nil {
		return model.PNGHeader{}, &ParseError{Reason: ReasonMissingIHDR}
	}
	length := binary.BigEndian.Uint32(chunk[0:4])
	if string(chunk[4:8]) != "IHDR" {
		return model.PNGHeader{}, &ParseError{Reason: ReasonMissingIHDR}
	}
	if length < ihdrMinLen {
		return model.PNGHeader{}, &ParseError{Reason: ReasonShortIHDR}
	}

	var data [ihdrMinLen]byte
	if _, err := io.ReadFull(r, data[:]); err != nil {
		return model.PNGHeader{}, &ParseError{Reason: ReasonShortIHDR}
	}

	return model.PNGHeader{
		Width:     binary.BigEndian.Uint32(data[0:4]),
		Height:    binary.BigEndian.Uint32(data[4:8]),
		BitDepth:  data[8],
		ColorType: data[9],
	}, nil
}
