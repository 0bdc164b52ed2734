package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"assetaudit/internal/config"
	"assetaudit/internal/logging"
	"assetaudit/internal/model"
)

var (
	// Global flags
	configPath string
	verbose    bool
	assetsDir  string
	backupDir  string
	sourceDir  string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "assetaudit",
	Short: "Audit and repair an NFT asset collection",
	Long: `assetaudit checks a collection of paired N.json records and N.png images.

It runs a five-pass audit (pairing, record consistency, attribute schema,
PNG validity, cross reference against backup and trait audit), scans for
Type/Strain mismatches, applies rule-driven corrections and refreshes the
trait audit snapshot. Paths and collection constants come from the config
file; flags only override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded",
			zap.String("config", configPath),
			zap.String("assets_dir", cfg.Paths.AssetsDir))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "assetaudit version %s\n", model.Version)
	},
}

// pathFlags are the per-path overrides of the paths config section.
func pathFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("paths", pflag.ContinueOnError)
	fs.StringVar(&assetsDir, "assets-dir", "", "Collection directory (overrides paths.assets_dir)")
	fs.StringVar(&backupDir, "backup-dir", "", "Backup collection directory (overrides paths.backup_assets_dir)")
	fs.StringVar(&sourceDir, "source-dir", "", "Source images directory (overrides paths.source_images_dir)")
	return fs
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flags.Changed("assets-dir") {
		c.Paths.AssetsDir = assetsDir
	}
	if flags.Changed("backup-dir") {
		c.Paths.BackupAssetsDir = backupDir
	}
	if flags.Changed("source-dir") {
		c.Paths.SourceImagesDir = sourceDir
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return c, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and check ids in the report")
	rootCmd.PersistentFlags().AddFlagSet(pathFlags())

	// Audit flags
	auditCmd.Flags().BoolVarP(&auditJSON, "json", "j", false, "Output the result and every issue as JSON")
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "Save the report (text or JSON) to the specified file")
	auditCmd.Flags().BoolVarP(&auditTUI, "tui", "t", false, "Browse issues interactively")
	auditCmd.MarkFlagsMutuallyExclusive("json", "tui")

	// Scan flags
	scanCmd.Flags().BoolVarP(&scanJSON, "json", "j", false, "Output the scan result as JSON")

	// Fix flags
	fixCmd.Flags().StringVar(&fixRules, "rules", "", "Rule tables file (overrides fix.rules_path)")
	fixCmd.Flags().BoolVarP(&fixDryRun, "dry-run", "n", false, "Report changes without writing them")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(refreshAuditCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
