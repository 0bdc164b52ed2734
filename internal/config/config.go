// Package config holds the assetaudit configuration: collection constants,
// directory layout, trait schema, thresholds and the severity policy.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"assetaudit/internal/model"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "assetaudit.yaml"

// Config holds all assetaudit configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Paths      PathsConfig      `yaml:"paths"`
	Schema     SchemaConfig     `yaml:"schema"`
	Images     ImagesConfig     `yaml:"images"`
	Report     ReportConfig     `yaml:"report"`
	Scan       ScanConfig       `yaml:"scan"`
	Fix        FixConfig        `yaml:"fix"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Severity overrides the default severity of individual checks,
	// keyed by check identifier (e.g. symbol_mismatch: ERROR).
	Severity map[string]model.Severity `yaml:"severity"`
}

// CollectionConfig holds the values every record is expected to carry.
type CollectionConfig struct {
	Name                 string `yaml:"name"`
	NameTemplate         string `yaml:"name_template"` // {name} and {index} are substituted
	Symbol               string `yaml:"symbol"`
	SellerFeeBasisPoints int64  `yaml:"seller_fee_basis_points"`
	CreatorAddress       string `yaml:"creator_address"`
	CreatorShare         int64  `yaml:"creator_share"`
	FileType             string `yaml:"file_type"`
}

// PathsConfig locates the collection and its companions. IndexMap and
// TraitAudit are resolved against AssetsDir when relative.
type PathsConfig struct {
	AssetsDir       string `yaml:"assets_dir"`
	SourceImagesDir string `yaml:"source_images_dir"`
	BackupAssetsDir string `yaml:"backup_assets_dir"`
	IndexMap        string `yaml:"index_map"`
	TraitAudit      string `yaml:"trait_audit"`
}

// SchemaConfig is the trait schema checked by PASS 3.
type SchemaConfig struct {
	RequiredTraits  []string            `yaml:"required_traits"`
	KnownTraitTypes []string            `yaml:"known_trait_types"`
	AllowedValues   map[string][]string `yaml:"allowed_values"` // trait_type -> allowed values
}

// ImagesConfig holds the PASS 4 thresholds.
type ImagesConfig struct {
	MinFileSize int64   `yaml:"min_file_size"` // bytes
	SmallRatio  float64 `yaml:"small_ratio"`   // fraction of mean size
	LargeRatio  float64 `yaml:"large_ratio"`   // multiple of mean size
}

// ReportConfig caps what the text report prints. Issues are always logged.
type ReportConfig struct {
	SummaryLimit int `yaml:"summary_limit"`
	InfoLimit    int `yaml:"info_limit"`
}

// StrainGroup maps Strain values to the Type they imply.
type StrainGroup struct {
	Type    string   `yaml:"type"`
	Strains []string `yaml:"strains"`
}

// ScanConfig drives the Type/Strain mismatch scan. Groups are tried in order.
type ScanConfig struct {
	StrainGroups []StrainGroup `yaml:"strain_groups"`
}

// FixConfig points the corrector at its rule tables. Empty uses the
// built-in tables.
type FixConfig struct {
	RulesPath string `yaml:"rules_path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the configuration of the SolSprites collection.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Name:                 "SolSprites",
			NameTemplate:         "{name} #{index}",
			Symbol:               "SPRITE",
			SellerFeeBasisPoints: 1000,
			CreatorAddress:       "777ePKXhcxMdJPMA22YeiR6pdMUTadnpT7AUyto2Y24N",
			CreatorShare:         100,
			FileType:             "image/png",
		},
		Paths: PathsConfig{
			AssetsDir:       filepath.Join("candy_machine", "assets"),
			SourceImagesDir: "images",
			BackupAssetsDir: filepath.Join("backup_assets", "candy_machine", "assets"),
			IndexMap:        "index_map.json",
			TraitAudit:      "_trait_audit.json",
		},
		Schema: SchemaConfig{
			RequiredTraits: []string{"Element", "Type", "Background"},
			KnownTraitTypes: []string{
				"Element", "Type", "Strain", "Background", "Sprite Color",
				"Aura", "Aura Style", "Motif", "Accessory", "Variant",
			},
			AllowedValues: map[string][]string{
				"Element": {
					"Air", "Earth", "Electric", "Fire", "Light", "Magic", "Shadow", "Water",
					"Unknown", "Forest", "Fern", "Sunflower", "Spleenwort", "Calypso", "Void",
				},
				"Type": {"Cannabis", "Cubes", "Mushroom", "Plant", "Root", "Sprite", "Goblin", "Fairy"},
			},
		},
		Images: ImagesConfig{
			MinFileSize: 100,
			SmallRatio:  0.05,
			LargeRatio:  10,
		},
		Report: ReportConfig{
			SummaryLimit: 20,
			InfoLimit:    50,
		},
		Scan: ScanConfig{
			StrainGroups: []StrainGroup{
				{Type: "Cannabis", Strains: []string{
					"Pink Kush", "Kush", "Indica", "Sativa", "Gorilla Glue",
					"Girl Scout Cookies", "Death Star", "Green Md", "White Md",
				}},
				{Type: "Mushroom", Strains: []string{
					"Golden Teacher", "Psilocyben Cubensis", "Sacred Mexica", "Wavy Caps",
					"Shaggy Mane", "Liberty Cap", "Teonanacatl", "Agaric", "Bohemica",
					"Cyanscens", "Cubensis", "Psilocyben", "Psilocybin", "Reshi",
					"Flying Saucer", "Z Strain", "Knobby Tops", "Philosophers Stone",
					"Inky Cap", "Ink",
				}},
				{Type: "Plant", Strains: []string{
					"Khat Plant", "Cocoa Plant", "Poppy Plant", "Willow Tree",
					"San Pedro", "Kratom", "Borneo", "Dmt", "Ayahuasca Plant",
				}},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Severity: map[string]model.Severity{},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("ASSETAUDIT_ASSETS_DIR"); dir != "" {
		c.Paths.AssetsDir = dir
	}
	if dir := os.Getenv("ASSETAUDIT_SOURCE_DIR"); dir != "" {
		c.Paths.SourceImagesDir = dir
	}
	if dir := os.Getenv("ASSETAUDIT_BACKUP_DIR"); dir != "" {
		c.Paths.BackupAssetsDir = dir
	}
	if lvl := os.Getenv("ASSETAUDIT_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Validate checks the configuration for values no audit could run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.AssetsDir) == "" {
		return fmt.Errorf("paths.assets_dir is required")
	}
	if !strings.Contains(c.Collection.NameTemplate, "{index}") {
		return fmt.Errorf("collection.name_template %q must contain {index}", c.Collection.NameTemplate)
	}
	if c.Images.MinFileSize < 0 {
		return fmt.Errorf("images.min_file_size must not be negative")
	}
	if c.Images.SmallRatio < 0 || c.Images.LargeRatio <= 0 {
		return fmt.Errorf("images.small_ratio and images.large_ratio must be positive")
	}
	if c.Images.SmallRatio >= c.Images.LargeRatio {
		return fmt.Errorf("images.small_ratio (%v) must be below images.large_ratio (%v)", c.Images.SmallRatio, c.Images.LargeRatio)
	}
	for check, sev := range c.Severity {
		if _, err := model.ParseSeverity(string(sev)); err != nil {
			return fmt.Errorf("severity.%s: %w", check, err)
		}
	}
	return nil
}

// ExpectedName renders the name template for idx.
func (c *Config) ExpectedName(idx int) string {
	r := strings.NewReplacer("{name}", c.Collection.Name, "{index}", strconv.Itoa(idx))
	return r.Replace(c.Collection.NameTemplate)
}

// SeverityFor returns the configured severity of check, or def.
func (c *Config) SeverityFor(check string, def model.Severity) model.Severity {
	if sev, ok := c.Severity[check]; ok {
		if parsed, err := model.ParseSeverity(string(sev)); err == nil {
			return parsed
		}
	}
	return def
}

// IndexMapPath returns the index map location.
func (c *Config) IndexMapPath() string {
	return c.resolve(c.Paths.IndexMap)
}

// TraitAuditPath returns the trait audit snapshot location.
func (c *Config) TraitAuditPath() string {
	return c.resolve(c.Paths.TraitAudit)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.AssetsDir, p)
}
