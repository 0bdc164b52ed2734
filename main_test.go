package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"assetaudit/internal/config"
	"assetaudit/internal/testutil"
)

// setup points the package globals at a fresh collection.
func setup(t *testing.T) *testutil.Collection {
	t.Helper()
	c := testutil.NewCollection(t)
	cfg = config.DefaultConfig()
	cfg.Paths.AssetsDir = c.Root
	cfg.Paths.BackupAssetsDir = filepath.Join(t.TempDir(), "backup")
	cfg.Paths.SourceImagesDir = filepath.Join(t.TempDir(), "images")
	logger = zap.NewNop()

	t.Cleanup(func() {
		verbose, auditJSON, auditTUI, scanJSON, fixDryRun, configForce = false, false, false, false, false, false
		auditOutput, fixRules = "", ""
		configPath, assetsDir, backupDir, sourceDir = config.DefaultPath, "", "", ""
	})
	return c
}

func run(t *testing.T, fn func(*cobra.Command, []string) error) string {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	require.NoError(t, fn(cmd, nil))
	return buf.String()
}

func TestRunAudit_Clean(t *testing.T) {
	c := setup(t)
	c.Add(0, 1, 2)

	out := run(t, runAudit)

	assert.Contains(t, out, "PASS 1: File Pairing")
	assert.Contains(t, out, "PASS 5: Cross-Reference")
	assert.Contains(t, out, "NO ISSUES FOUND")
}

func TestRunAudit_JSON(t *testing.T) {
	c := setup(t)
	c.Add(0, 1, 3)
	auditJSON = true

	out := run(t, runAudit)

	var decoded struct {
		Valid  []int `json:"valid_indices"`
		Issues []struct {
			Check   string `json:"check"`
			Subject string `json:"subject"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []int{0, 1, 3}, decoded.Valid)
	require.Len(t, decoded.Issues, 1)
	assert.Equal(t, "sequence_gap", decoded.Issues[0].Check)
}

func TestRunAudit_Output(t *testing.T) {
	c := setup(t)
	c.Add(0)
	auditOutput = filepath.Join(t.TempDir(), "report.txt")

	out := run(t, runAudit)

	assert.Contains(t, out, "Report saved to")
	data, err := os.ReadFile(auditOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SUMMARY OF ALL ISSUES")
}

func TestRunAudit_JSONOutput(t *testing.T) {
	c := setup(t)
	c.Add(0, 1)
	auditJSON = true
	auditOutput = filepath.Join(t.TempDir(), "report.json")

	out := run(t, runAudit)

	assert.Equal(t, "Report saved to "+auditOutput+"\n", out)
	data, err := os.ReadFile(auditOutput)
	require.NoError(t, err)
	var decoded struct {
		Valid []int `json:"valid_indices"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []int{0, 1}, decoded.Valid)
}

func TestRunAudit_MissingCollection(t *testing.T) {
	setup(t)
	cfg.Paths.AssetsDir = filepath.Join(t.TempDir(), "missing")

	err := runAudit(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "collection directory missing")
}

func TestRunFix(t *testing.T) {
	c := setup(t)
	c.WriteRecord(3, testutil.Record(3,
		testutil.A("Type", "Sprite"), testutil.A("Strain", "Pink Kush"), testutil.A("Strain", "Kush")))
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("strain_keep:\n  3: [Pink Kush]\ntype_set:\n  3: Cannabis\n"), 0o644))
	cfg.Fix.RulesPath = rules

	fixDryRun = true
	out := run(t, runFix)
	assert.Contains(t, out, "3.json: Removing redundant Strain='Kush'")
	assert.Contains(t, out, "Would fix 1 files.")

	fixDryRun = false
	out = run(t, runFix)
	assert.Contains(t, out, "3.json: Type 'Sprite' -> 'Cannabis'")
	assert.Contains(t, out, "Fixed 1 files.")

	out = run(t, runFix)
	assert.Contains(t, out, "Fixed 0 files.")
}

func TestRunScan(t *testing.T) {
	c := setup(t)
	c.WriteRecord(0, testutil.Record(0, testutil.A("Type", "Sprite"), testutil.A("Strain", "Kratom")))
	c.WritePNG(0, 800, 800, 1000)

	out := run(t, runScan)

	assert.Contains(t, out, "0.json / 0.png: Type='Sprite' but Strain='Kratom' suggests Type='Plant'")
}

func TestRunRefreshAudit(t *testing.T) {
	c := setup(t)
	c.Add(0, 1)

	out := run(t, runRefreshAudit)

	assert.Contains(t, out, "Updated "+filepath.Join(c.Root, "_trait_audit.json"))
	assert.Contains(t, out, "  Element: 2")
	assert.Contains(t, out, "Type values: [Sprite]")
	_, err := os.Stat(filepath.Join(c.Root, "_trait_audit.json"))
	assert.NoError(t, err)
}

func TestConfigInit(t *testing.T) {
	setup(t)
	configPath = filepath.Join(t.TempDir(), "assetaudit.yaml")

	out := run(t, runConfigInit)
	assert.Contains(t, out, "Wrote ")

	err := runConfigInit(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "already exists")

	loaded, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "SPRITE", loaded.Collection.Symbol)
}

func TestRootCommand(t *testing.T) {
	c := setup(t)
	c.Add(0)
	cfgFile := filepath.Join(t.TempDir(), "assetaudit.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("collection:\n  symbol: OTHER\nlogging:\n  level: error\n"), 0o644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--config", cfgFile, "--assets-dir", c.Root, "--backup-dir", filepath.Join(t.TempDir(), "b"), "audit"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, c.Root, cfg.Paths.AssetsDir)
	assert.Contains(t, buf.String(), "Symbol is 'SPRITE' (expected 'OTHER')")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "assetaudit version ")
}
