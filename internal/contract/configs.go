package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/repotally/repotally/schema"
)

// Default values for configuration.
const (
	DefaultMaxCommits     = 5000
	DefaultMaxCommitFiles = 400
	DefaultMaxRows        = 1000
	DefaultModuleDepth    = 2
	DefaultMinCoupling    = 3
	DefaultThreshold      = 0.85
	DefaultShingleSize    = 8
	DefaultWindowBytes    = 64 * 1024
	DefaultGitTimeout     = 30 * time.Second
	MaxExportRows         = 100000
)

// DefaultWorkers is the default number of concurrent engine workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for a receipt run.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath string
	Preset   schema.PresetName

	ChildrenMode schema.ChildrenMode
	ModuleRoots  []string
	ModuleDepth  int
	StripPrefix  string

	MinCode uint64
	MaxRows int

	MaxCommits     int
	MaxCommitFiles int
	MinCoupling    int
	GitTimeout     time.Duration

	SimilarityScope     schema.SimilarityScope
	SimilarityThreshold float64
	ShingleSize         int
	WindowBytes         int

	Excludes []string
	Workers  int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	PolicyFile   string
	StoreReceipt bool

	StoreBackend schema.DatabaseBackend
	StoreConnect string // Please use env var as this is plaintext

	UseEmojis bool
	UseColors bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Preset       string  `mapstructure:"preset"`
	Children     string  `mapstructure:"children"`
	ModuleRoots  string  `mapstructure:"module-roots"`
	ModuleDepth  int     `mapstructure:"module-depth"`
	StripPrefix  string  `mapstructure:"strip-prefix"`
	MinCode      int64   `mapstructure:"min-code"`
	MaxRows      int     `mapstructure:"max-rows"`
	MaxCommits   int     `mapstructure:"max-commits"`
	MaxFiles     int     `mapstructure:"max-commit-files"`
	MinCoupling  int     `mapstructure:"min-coupling"`
	GitTimeout   string  `mapstructure:"git-timeout"`
	Scope        string  `mapstructure:"scope"`
	Threshold    float64 `mapstructure:"threshold"`
	Shingle      int     `mapstructure:"shingle"`
	WindowBytes  int     `mapstructure:"window-bytes"`
	Exclude      string  `mapstructure:"exclude"`
	Workers      int     `mapstructure:"workers"`
	Output       string  `mapstructure:"output"`
	OutputFile   string  `mapstructure:"output-file"`
	Width        int     `mapstructure:"width"`
	Policy       string  `mapstructure:"policy"`
	Store        bool    `mapstructure:"store"`
	StoreBackend string  `mapstructure:"store-backend"`
	StoreConnect string  `mapstructure:"store-db-connect"`
	Emoji        string  `mapstructure:"emoji"`
	Color        string  `mapstructure:"color"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	if c.ModuleRoots != nil {
		clone.ModuleRoots = make([]string, len(c.ModuleRoots))
		copy(clone.ModuleRoots, c.ModuleRoots)
	}
	return &clone
}

// CloneWithPreset creates a copy of the Config with a different preset.
func (c *Config) CloneWithPreset(preset schema.PresetName) *Config {
	clone := c.Clone()
	clone.Preset = preset
	return clone
}

// Limits returns the stream caps as a StreamLimits value.
func (c *Config) Limits() StreamLimits {
	return StreamLimits{MaxCommits: c.MaxCommits, MaxCommitFiles: c.MaxCommitFiles}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processModuleSettings(cfg, input); err != nil {
		return err
	}
	if err := processHistorySettings(cfg, input); err != nil {
		return err
	}
	if err := processSimilaritySettings(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.PolicyFile = input.Policy
	cfg.StoreReceipt = input.Store
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- Preset Validation ---
	cfg.Preset = schema.PresetName(strings.ToLower(input.Preset))
	if _, err := schema.LookupPreset(cfg.Preset); err != nil {
		return err
	}

	// --- Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- Excludes Processing ---
	defaults := []string{
		"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock",
		".min.js", ".min.css",
		".jpg", ".jpeg", ".png", ".gif", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
		".DS_Store",
		".git/", "dist/", "build/", "out/", "target/", "node_modules/", "vendor/",
	}
	cfg.Excludes = defaults

	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			trimmedP := strings.TrimSpace(p)
			if trimmedP != "" {
				cfg.Excludes = append(cfg.Excludes, trimmedP)
			}
		}
	}

	return nil
}

// processModuleSettings handles module key derivation and export filter settings.
func processModuleSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.ChildrenMode = schema.CollapseChildren
	if input.Children != "" {
		cfg.ChildrenMode = schema.ChildrenMode(strings.ToLower(input.Children))
		if _, ok := schema.ValidChildrenModes[cfg.ChildrenMode]; !ok {
			return fmt.Errorf("invalid children mode '%s'. must be collapse or separate", input.Children)
		}
	}

	cfg.ModuleRoots = nil
	if input.ModuleRoots != "" {
		for p := range strings.SplitSeq(input.ModuleRoots, ",") {
			trimmedP := strings.Trim(strings.TrimSpace(p), "/")
			if trimmedP != "" {
				cfg.ModuleRoots = append(cfg.ModuleRoots, trimmedP)
			}
		}
	}

	if input.ModuleDepth < 1 {
		return fmt.Errorf("module-depth must be at least 1 (received %d)", input.ModuleDepth)
	}
	cfg.ModuleDepth = input.ModuleDepth

	cfg.StripPrefix = strings.TrimPrefix(input.StripPrefix, "./")

	if input.MinCode < 0 {
		return fmt.Errorf("min-code cannot be negative (received %d)", input.MinCode)
	}
	cfg.MinCode = uint64(input.MinCode)

	if input.MaxRows <= 0 || input.MaxRows > MaxExportRows {
		return fmt.Errorf("max-rows must be greater than 0 and cannot exceed %d (received %d)", MaxExportRows, input.MaxRows)
	}
	cfg.MaxRows = input.MaxRows

	return nil
}

// processHistorySettings handles the commit stream caps and subprocess timeout.
func processHistorySettings(cfg *Config, input *ConfigRawInput) error {
	if input.MaxCommits <= 0 {
		return fmt.Errorf("max-commits must be greater than 0 (received %d)", input.MaxCommits)
	}
	cfg.MaxCommits = input.MaxCommits

	if input.MaxFiles <= 0 {
		return fmt.Errorf("max-commit-files must be greater than 0 (received %d)", input.MaxFiles)
	}
	cfg.MaxCommitFiles = input.MaxFiles

	if input.MinCoupling < 1 {
		return fmt.Errorf("min-coupling must be at least 1 (received %d)", input.MinCoupling)
	}
	cfg.MinCoupling = input.MinCoupling

	cfg.GitTimeout = DefaultGitTimeout
	if input.GitTimeout != "" {
		d, err := time.ParseDuration(input.GitTimeout)
		if err != nil {
			return fmt.Errorf("invalid git-timeout '%s': %w", input.GitTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("git-timeout must be positive (received %s)", d)
		}
		cfg.GitTimeout = d
	}

	return nil
}

// processSimilaritySettings handles the near-duplicate tuning knobs.
func processSimilaritySettings(cfg *Config, input *ConfigRawInput) error {
	cfg.SimilarityScope = schema.ModuleScope
	if input.Scope != "" {
		cfg.SimilarityScope = schema.SimilarityScope(strings.ToLower(input.Scope))
		if _, ok := schema.ValidSimilarityScopes[cfg.SimilarityScope]; !ok {
			return fmt.Errorf("invalid similarity scope '%s'. must be module, language, global", input.Scope)
		}
	}

	if input.Threshold <= 0 || input.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1] (received %.3f)", input.Threshold)
	}
	cfg.SimilarityThreshold = input.Threshold

	if input.Shingle < 2 {
		return fmt.Errorf("shingle must be at least 2 (received %d)", input.Shingle)
	}
	cfg.ShingleSize = input.Shingle

	if input.WindowBytes < 1024 {
		return fmt.Errorf("window-bytes must be at least 1024 (received %d)", input.WindowBytes)
	}
	cfg.WindowBytes = input.WindowBytes

	return nil
}

// validateBackendConfig validates the receipt store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreConnect = input.StoreConnect

	switch cfg.StoreBackend {
	case schema.MySQLBackend:
		if cfg.StoreConnect == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", cfg.StoreBackend)
		}
		if !strings.Contains(cfg.StoreConnect, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
	case schema.PostgreSQLBackend:
		if cfg.StoreConnect == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", cfg.StoreBackend)
		}
		if !strings.Contains(cfg.StoreConnect, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
	}

	return nil
}

// resolveRepoPath resolves the analysis root to an absolute directory path.
func resolveRepoPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, err := os.Stat(absSearchPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", absSearchPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absSearchPath)
	}

	cfg.RepoPath = absSearchPath
	return nil
}

// GetStoreDBFilePath returns the path to the SQLite DB file for receipt storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repotally_receipts.db"
	}
	return filepath.Join(homeDir, ".repotally_receipts.db")
}
