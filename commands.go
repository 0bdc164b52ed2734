package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"assetaudit/internal/audit"
	"assetaudit/internal/config"
	"assetaudit/internal/fix"
	"assetaudit/internal/scan"
	"assetaudit/internal/store"
	"assetaudit/internal/traitaudit"
	"assetaudit/internal/tui"
)

var (
	auditJSON   bool
	auditOutput string
	auditTUI    bool

	scanJSON bool

	fixRules  string
	fixDryRun bool

	configForce bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the five-pass collection audit",
	Long: `Runs PASS 1-5 over the collection and prints a summary of every issue.

  PASS 1  file pairing and sequence gaps
  PASS 2  record internal consistency (name, image, uri, symbol, royalty, creators)
  PASS 3  attribute schema (required traits, allowed values, duplicates)
  PASS 4  PNG validity, dominant dimension, file size outliers
  PASS 5  cross reference with the index map, the backup and the trait audit`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find records whose Type disagrees with their Strain",
	Args:  cobra.NoArgs,
	RunE:  runScan,
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Apply the Strain and Type correction tables",
	Long: `Applies the strain_keep and type_set rule tables. Only records named by
the tables are read, and only records whose attributes change are written.
Running fix twice with the same tables writes nothing the second time.`,
	Args: cobra.NoArgs,
	RunE: runFix,
}

var refreshAuditCmd = &cobra.Command{
	Use:   "refresh-audit",
	Short: "Recompute trait counts and values in the trait audit snapshot",
	Args:  cobra.NoArgs,
	RunE:  runRefreshAudit,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAudit(cmd *cobra.Command, args []string) error {
	if auditTUI {
		// Logging to stderr would draw over the alternate screen.
		m := tui.InitialModel(audit.New(cfg, zap.NewNop()))
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := audit.New(cfg, logger).Run(ctx)
	if err != nil {
		return err
	}

	var report bytes.Buffer
	if auditJSON {
		if err := audit.WriteJSON(&report, res); err != nil {
			return err
		}
	} else {
		report.WriteString(audit.GenerateReport(res, cfg.Report, verbose))
	}

	if auditOutput != "" {
		if err := os.WriteFile(auditOutput, report.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing report to %s: %w", auditOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", auditOutput)
		return nil
	}
	_, err = report.WriteTo(cmd.OutOrStdout())
	return err
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	res, err := scan.New(cfg, logger).Run(ctx)
	if err != nil {
		return err
	}
	if scanJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	return scan.WriteReport(cmd.OutOrStdout(), res)
}

func runFix(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rulesPath := cfg.Fix.RulesPath
	if cmd.Flags().Changed("rules") {
		rulesPath = fixRules
	}
	rules, err := fix.LoadRules(rulesPath)
	if err != nil {
		return err
	}
	dir, err := store.Open(cfg.Paths.AssetsDir)
	if err != nil {
		return err
	}

	report, err := fix.NewCorrector(dir, rules, fix.WithDryRun(fixDryRun), fix.WithLogger(logger)).Run(ctx)
	out := cmd.OutOrStdout()
	if report != nil {
		for _, c := range report.Changes {
			fmt.Fprintf(out, "  %s\n", c)
		}
	}
	if err != nil {
		return err
	}
	if fixDryRun {
		fmt.Fprintf(out, "\nWould fix %d files.\n", report.Fixed)
	} else {
		fmt.Fprintf(out, "\nFixed %d files.\n", report.Fixed)
	}
	return nil
}

func runRefreshAudit(cmd *cobra.Command, args []string) error {
	dir, err := store.Open(cfg.Paths.AssetsDir)
	if err != nil {
		return err
	}
	valid, err := dir.Paired()
	if err != nil {
		return err
	}
	path := cfg.TraitAuditPath()
	_, live, err := traitaudit.Refresh(dir, valid, path, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Updated %s\n", path)
	types := make([]string, 0, len(live.Counts))
	for tt := range live.Counts {
		types = append(types, tt)
	}
	sort.Strings(types)
	for _, tt := range types {
		fmt.Fprintf(out, "  %s: %d\n", tt, live.Counts[tt])
	}
	fmt.Fprintf(out, "Type values: [%s]\n", strings.Join(live.SortedValues("Type"), ", "))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}
	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
