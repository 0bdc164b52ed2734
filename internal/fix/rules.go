// Package fix applies declarative correction rules to collection records.
package fix

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules are the two correction tables, keyed by record index.
type Rules struct {
	// StrainKeep lists, per index, the Strain values to keep.
	StrainKeep map[int][]string `yaml:"strain_keep"`
	// TypeSet gives, per index, the value of the first Type entry.
	TypeSet map[int]string `yaml:"type_set"`
}

// DefaultRules returns the built-in tables.
func DefaultRules() (*Rules, error) {
	return parseRules(defaultRules, "built-in rules")
}

// LoadRules reads rule tables from path. An empty path yields the built-in tables.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return parseRules(data, path)
}

func parseRules(data []byte, name string) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &r, nil
}

// Validate rejects tables that would delete every Strain of a record or
// blank out a Type.
func (r *Rules) Validate() error {
	for idx, keep := range r.StrainKeep {
		if idx < 0 {
			return fmt.Errorf("strain_keep: negative index %d", idx)
		}
		if len(keep) == 0 {
			return fmt.Errorf("strain_keep.%d: keep list is empty", idx)
		}
	}
	for idx, value := range r.TypeSet {
		if idx < 0 {
			return fmt.Errorf("type_set: negative index %d", idx)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("type_set.%d: value is empty", idx)
		}
	}
	return nil
}

// Indices returns every index named by either table, ascending.
func (r *Rules) Indices() []int {
	seen := make(map[int]bool, len(r.StrainKeep)+len(r.TypeSet))
	for idx := range r.StrainKeep {
		seen[idx] = true
	}
	for idx := range r.TypeSet {
		seen[idx] = true
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
