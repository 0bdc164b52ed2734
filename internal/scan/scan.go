// Package scan looks for records whose Type disagrees with their Strain and
// for records that carry more than one Strain.
package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"assetaudit/internal/config"
	"assetaudit/internal/model"
	"assetaudit/internal/store"
)

// Mismatch is one Strain whose implied Type differs from the record's Type.
type Mismatch struct {
	Index    int    `json:"index"`
	Type     string `json:"type"` // first Type value, empty when absent
	Strain   string `json:"strain"`
	Expected string `json:"expected"`
	Source   string `json:"source"` // source image relative to the source dir, "?" when not found
}

// MultiStrain is a record with several Strain values.
type MultiStrain struct {
	Index     int      `json:"index"`
	Strains   []string `json:"strains"`
	Compound  string   `json:"compound,omitempty"`
	Redundant bool     `json:"redundant"` // the single-word strains are all words of Compound
}

// Result is the outcome of a scan.
type Result struct {
	Scanned      int           `json:"scanned"`
	Mismatches   []Mismatch    `json:"mismatches"`
	MultiStrains []MultiStrain `json:"multi_strains"`
}

// Scanner runs the Type/Strain scan over a collection.
type Scanner struct {
	cfg    *config.Config
	logger *zap.Logger
	types  map[string]string // strain -> expected type
}

// New returns a Scanner. Strain groups are matched in config order, so a
// strain listed in two groups takes the first.
func New(cfg *config.Config, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	types := make(map[string]string)
	for _, g := range cfg.Scan.StrainGroups {
		for _, s := range g.Strains {
			if _, ok := types[s]; !ok {
				types[s] = g.Type
			}
		}
	}
	return &Scanner{cfg: cfg, logger: logger, types: types}
}

// ExpectedType returns the Type implied by strain.
func (s *Scanner) ExpectedType(strain string) (string, bool) {
	t, ok := s.types[strain]
	return t, ok
}

// Run scans every paired index of the configured collection.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	dir, err := store.Open(s.cfg.Paths.AssetsDir)
	if err != nil {
		return nil, err
	}
	valid, err := dir.Paired()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, idx := range valid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := dir.LoadRecord(idx)
		if err != nil {
			s.logger.Debug("Skipping unreadable record", zap.Int("index", idx), zap.Error(err))
			continue
		}
		res.Scanned++

		typ, strains := traits(rec.Attributes())
		for _, strain := range strains {
			expected, ok := s.ExpectedType(strain)
			if !ok || expected == typ {
				continue
			}
			res.Mismatches = append(res.Mismatches, Mismatch{
				Index:    idx,
				Type:     typ,
				Strain:   strain,
				Expected: expected,
				Source:   s.FindSource(idx),
			})
		}
		if len(strains) > 1 {
			res.MultiStrains = append(res.MultiStrains, Classify(idx, strains))
		}
	}
	s.logger.Info("Scan finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("mismatches", len(res.Mismatches)),
		zap.Int("multi_strains", len(res.MultiStrains)))
	return res, nil
}

// traits returns the first Type value and every Strain value in order.
func traits(attrs []model.Attribute) (typ string, strains []string) {
	seenType := false
	for _, a := range attrs {
		switch a.TraitType {
		case "Type":
			if !seenType {
				typ, seenType = a.Value, true
			}
		case "Strain":
			strains = append(strains, a.Value)
		}
	}
	return typ, strains
}

// Classify decides whether the strains of one record are redundant: the last
// multi-word strain is the compound, and the rest are redundant when every
// single-word strain is one of its words, ignoring case.
func Classify(idx int, strains []string) MultiStrain {
	ms := MultiStrain{Index: idx, Strains: strains}
	var parts []string
	for _, s := range strains {
		if strings.Contains(s, " ") {
			ms.Compound = s
		} else {
			parts = append(parts, s)
		}
	}
	if ms.Compound == "" || len(parts) == 0 {
		return ms
	}
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(ms.Compound)) {
		words[w] = true
	}
	ms.Redundant = true
	for _, p := range parts {
		if !words[strings.ToLower(p)] {
			ms.Redundant = false
			break
		}
	}
	return ms
}

// FindSource returns the first "<idx>_*.png" under the source images
// directory, searched top level first and then recursively, as a path
// relative to that directory. It returns "?" when there is none.
func (s *Scanner) FindSource(idx int) string {
	root := s.cfg.Paths.SourceImagesDir
	prefix := strconv.Itoa(idx) + "_"
	match := func(name string) bool {
		return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, model.ImageExt)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "?"
	}
	for _, e := range entries {
		if !e.IsDir() && match(e.Name()) {
			return e.Name()
		}
	}

	found := "?"
	errFound := errors.New("found")
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !match(d.Name()) {
			return nil
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			found = rel
		}
		return errFound
	})
	return found
}
