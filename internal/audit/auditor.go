// Package audit runs the five consistency passes over a collection and
// collects their findings in an IssueLog.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assetaudit/internal/config"
	"assetaudit/internal/model"
	"assetaudit/internal/store"
)

// PassSummary is the human-readable outcome of one pass.
type PassSummary struct {
	Pass  int      `json:"pass"`
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

func (s *PassSummary) addf(format string, args ...any) {
	s.Lines = append(s.Lines, fmt.Sprintf(format, args...))
}

// Result is everything one audit run produced.
type Result struct {
	RunID      string         `json:"run_id"`
	AssetsDir  string         `json:"assets_dir"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Valid      []int          `json:"valid_indices"`
	Passes     []PassSummary  `json:"passes"`
	Attributes AttributeStats `json:"-"`
	Images     ImageStats     `json:"-"`
	Log        *IssueLog      `json:"-"`
}

// Auditor runs the passes against the collection named in its config.
type Auditor struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New returns an Auditor. A nil logger discards logs.
func New(cfg *config.Config, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{cfg: cfg, logger: logger}
}

// Run executes PASS 1 and then PASS 2-5 over the valid index set. Apart from
// cancellation, the only error returned is an unreadable collection root;
// every per-record or per-image failure is logged as an issue instead.
func (a *Auditor) Run(ctx context.Context) (*Result, error) {
	dir, err := store.Open(a.cfg.Paths.AssetsDir)
	if err != nil {
		return nil, err
	}
	names, err := dir.Names()
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     uuid.NewString(),
		AssetsDir: dir.Root(),
		StartedAt: time.Now(),
		Log:       NewIssueLog(a.cfg, a.logger),
	}
	logger := a.logger.With(zap.String("run_id", res.RunID))
	logger.Info("Starting audit", zap.String("assets_dir", dir.Root()))

	valid, pairing := Pair(names, res.Log)
	res.Valid = valid
	res.Passes = append(res.Passes, pairing)
	logger.Debug("Pass complete", zap.Int("pass", 1), zap.Int("valid", len(valid)))

	steps := []func(){
		func() { res.Passes = append(res.Passes, a.CheckRecords(dir, valid, res.Log)) },
		func() {
			sum, stats := a.CheckAttributes(dir, valid, res.Log)
			res.Passes = append(res.Passes, sum)
			res.Attributes = stats
		},
		func() {
			sum, stats := a.CheckImages(dir, valid, res.Log)
			res.Passes = append(res.Passes, sum)
			res.Images = stats
		},
		func() { res.Passes = append(res.Passes, a.CrossReference(dir, valid, res.Log)) },
	}
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("audit interrupted before pass %d: %w", i+2, err)
		}
		step()
		logger.Debug("Pass complete", zap.Int("pass", i+2))
	}

	res.FinishedAt = time.Now()
	counts := res.Log.Counts()
	logger.Info("Audit finished",
		zap.Int("issues", res.Log.Len()),
		zap.Int("errors", counts[model.SeverityError]),
		zap.Int("warnings", counts[model.SeverityWarn]),
		zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}
