// Package store gives read and write access to a collection directory of
// paired N.json records and N.png images.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"assetaudit/internal/model"
)

// ErrCollectionMissing is returned when a collection root does not exist or
// is not a directory. It is the only condition that stops an audit.
var ErrCollectionMissing = errors.New("collection directory missing")

// Dir is a collection rooted at a directory.
type Dir struct {
	root string
}

// Open returns the collection at root after checking that it is a directory.
func Open(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCollectionMissing, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCollectionMissing, root)
	}
	return &Dir{root: root}, nil
}

// Exists reports whether root is an existing directory.
func Exists(root string) bool {
	if root == "" {
		return false
	}
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Names lists the regular file names in the collection directory.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Indices returns the set of numeric indices for files with ext.
func (d *Dir) Indices(ext string) (map[int]bool, error) {
	names, err := d.Names()
	if err != nil {
		return nil, err
	}
	return model.IndexSet(names, ext), nil
}

// Paired returns, without reporting anything, the sorted indices that have
// both a record and an image.
func (d *Dir) Paired() ([]int, error) {
	records, err := d.Indices(model.RecordExt)
	if err != nil {
		return nil, err
	}
	images, err := d.Indices(model.ImageExt)
	if err != nil {
		return nil, err
	}
	both := make(map[int]bool)
	for idx := range records {
		if images[idx] {
			both[idx] = true
		}
	}
	return model.SortedIndices(both), nil
}

// Path joins name onto the collection root.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// RecordPath returns the path of <idx>.json.
func (d *Dir) RecordPath(idx int) string {
	return d.Path(model.RecordName(idx))
}

// ImagePath returns the path of <idx>.png.
func (d *Dir) ImagePath(idx int) string {
	return d.Path(model.ImageName(idx))
}

// LoadRecord reads and validates <idx>.json.
func (d *Dir) LoadRecord(idx int) (*model.Record, error) {
	data, err := os.ReadFile(d.RecordPath(idx))
	if err != nil {
		return nil, err
	}
	return model.ParseRecord(idx, data)
}

// SaveRecord replaces <idx>.json with rec.Raw.
func (d *Dir) SaveRecord(rec *model.Record) error {
	return WriteFileAtomic(d.RecordPath(rec.Index), rec.Raw, 0o644)
}

// ImageSize returns the byte size of <idx>.png.
func (d *Dir) ImageSize(idx int) (int64, error) {
	info, err := os.Stat(d.ImagePath(idx))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
