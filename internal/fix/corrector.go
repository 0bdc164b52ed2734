package fix

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"assetaudit/internal/model"
	"assetaudit/internal/store"
)

// ChangeKind says what happened to one record.
type ChangeKind string

const (
	ChangeStrainRemoved ChangeKind = "strain_removed"
	ChangeTypeSet       ChangeKind = "type_set"
	ChangeSkipped       ChangeKind = "skipped"
)

// Change is one edit made, or one record that could not be edited.
type Change struct {
	Index  int        `json:"index"`
	Kind   ChangeKind `json:"kind"`
	Before string     `json:"before,omitempty"`
	After  string     `json:"after,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

func (c Change) String() string {
	name := model.RecordName(c.Index)
	switch c.Kind {
	case ChangeStrainRemoved:
		return fmt.Sprintf("%s: Removing redundant Strain='%s'", name, c.Before)
	case ChangeTypeSet:
		return fmt.Sprintf("%s: Type '%s' -> '%s'", name, c.Before, c.After)
	default:
		return fmt.Sprintf("%s: skipped (%s)", name, c.Reason)
	}
}

// Report is the outcome of one corrector run.
type Report struct {
	Fixed   int      `json:"fixed"` // records rewritten (or that would be, in a dry run)
	Changes []Change `json:"changes"`
}

// Skipped returns the records that could not be processed.
func (r *Report) Skipped() []Change {
	var out []Change
	for _, c := range r.Changes {
		if c.Kind == ChangeSkipped {
			out = append(out, c)
		}
	}
	return out
}

// Corrector rewrites the records named by its rules.
type Corrector struct {
	dir    *store.Dir
	rules  *Rules
	logger *zap.Logger
	dryRun bool
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithDryRun reports changes without writing them.
func WithDryRun(dryRun bool) Option {
	return func(c *Corrector) { c.dryRun = dryRun }
}

// WithLogger sets the logger. The default discards logs.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Corrector) { c.logger = logger }
}

// NewCorrector returns a Corrector for the collection in dir.
func NewCorrector(dir *store.Dir, rules *Rules, opts ...Option) *Corrector {
	c := &Corrector{dir: dir, rules: rules, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run applies the rules to every index they name, in ascending order. A
// record is written only when its attributes actually change, so a second
// run with the same rules writes nothing. Missing or unreadable records are
// reported as skipped; only write failures and cancellation abort the run.
func (c *Corrector) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	for _, idx := range c.rules.Indices() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, err := c.dir.LoadRecord(idx)
		if err != nil {
			reason := err.Error()
			if errors.Is(err, fs.ErrNotExist) {
				reason = "record not found"
			}
			c.logger.Warn("Skipping record", zap.Int("index", idx), zap.String("reason", reason))
			report.Changes = append(report.Changes, Change{Index: idx, Kind: ChangeSkipped, Reason: reason})
			continue
		}

		doc, changes, err := c.apply(idx, rec.Raw)
		if err != nil {
			return report, fmt.Errorf("fixing %s: %w", model.RecordName(idx), err)
		}
		if len(changes) == 0 {
			continue
		}
		report.Changes = append(report.Changes, changes...)
		report.Fixed++

		if c.dryRun {
			continue
		}
		out, err := store.Indent(doc)
		if err != nil {
			return report, fmt.Errorf("formatting %s: %w", model.RecordName(idx), err)
		}
		if err := c.dir.SaveRecord(&model.Record{Index: idx, Raw: out}); err != nil {
			return report, fmt.Errorf("writing %s: %w", model.RecordName(idx), err)
		}
		c.logger.Debug("Record rewritten", zap.Int("index", idx), zap.Int("changes", len(changes)))
	}
	c.logger.Info("Corrector finished",
		zap.Int("fixed", report.Fixed),
		zap.Int("skipped", len(report.Skipped())),
		zap.Bool("dry_run", c.dryRun))
	return report, nil
}

// apply returns doc with the rules for idx applied and the edits made. When
// nothing changes the returned document is the input.
func (c *Corrector) apply(idx int, doc []byte) ([]byte, []Change, error) {
	attrs := gjson.GetBytes(doc, "attributes")
	if !attrs.IsArray() {
		return doc, nil, nil
	}

	var changes []Change
	entries := attrs.Array()

	if keep, ok := c.rules.StrainKeep[idx]; ok {
		keepSet := make(map[string]bool, len(keep))
		for _, v := range keep {
			keepSet[v] = true
		}
		kept := make([]gjson.Result, 0, len(entries))
		for _, e := range entries {
			a := model.AttributeFrom(e)
			if a.TraitType == "Strain" && !keepSet[a.Value] {
				changes = append(changes, Change{Index: idx, Kind: ChangeStrainRemoved, Before: a.Value})
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) != len(entries) {
			raws := make([]string, len(kept))
			for i, e := range kept {
				raws[i] = e.Raw
			}
			var err error
			doc, err = sjson.SetRawBytes(doc, "attributes", []byte("["+strings.Join(raws, ",")+"]"))
			if err != nil {
				return nil, nil, err
			}
			entries = kept
		}
	}

	if want, ok := c.rules.TypeSet[idx]; ok {
		for i, e := range entries {
			if model.AttributeFrom(e).TraitType != "Type" {
				continue
			}
			value := e.Get("value")
			if value.Type != gjson.String || value.Str != want {
				var err error
				doc, err = sjson.SetBytes(doc, fmt.Sprintf("attributes.%d.value", i), want)
				if err != nil {
					return nil, nil, err
				}
				changes = append(changes, Change{Index: idx, Kind: ChangeTypeSet, Before: value.String(), After: want})
			}
			break
		}
	}
	return doc, changes, nil
}
