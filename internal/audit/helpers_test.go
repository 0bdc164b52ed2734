package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assetaudit/internal/config"
	"assetaudit/internal/model"
	"assetaudit/internal/store"
	"assetaudit/internal/testutil"
)

// newAuditor returns an auditor over root whose backup and source
// directories do not exist, so PASS 5 skips them unless a test creates them.
func newAuditor(t *testing.T, root string) (*Auditor, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths.AssetsDir = root
	cfg.Paths.BackupAssetsDir = filepath.Join(t.TempDir(), "backup")
	cfg.Paths.SourceImagesDir = filepath.Join(t.TempDir(), "images")
	return New(cfg, zap.NewNop()), cfg
}

func openDir(t *testing.T, c *testutil.Collection) *store.Dir {
	t.Helper()
	dir, err := store.Open(c.Root)
	require.NoError(t, err)
	return dir
}

func newLog(cfg *config.Config) *IssueLog {
	return NewIssueLog(cfg, zap.NewNop())
}

func checks(issues []model.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Check
	}
	return out
}
