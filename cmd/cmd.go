// Package cmd defines the command-line interface for repotally.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(receiptsCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the receipts subcommands to the parent receipts command
	receiptsCmd.AddCommand(receiptsStatusCmd)
	receiptsCmd.AddCommand(receiptsClearCmd)
	receiptsCmd.AddCommand(receiptsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("preset", "p", string(schema.StandardPreset), "Receipt preset: minimal, standard, ci, context, full")
	rootCmd.PersistentFlags().String("children", string(schema.CollapseChildren), "Embedded fenced-block handling: collapse or separate")
	rootCmd.PersistentFlags().String("module-roots", "", "Comma-separated list of top-level directories treated as module roots")
	rootCmd.PersistentFlags().Int("module-depth", contract.DefaultModuleDepth, "Number of path segments in a derived module key")
	rootCmd.PersistentFlags().String("strip-prefix", "", "Path prefix to strip before module key derivation")
	rootCmd.PersistentFlags().Int64("min-code", 0, "Minimum code lines for a file to appear in export rows")
	rootCmd.PersistentFlags().Int("max-rows", contract.DefaultMaxRows, "Maximum number of export rows")
	rootCmd.PersistentFlags().Int("max-commits", contract.DefaultMaxCommits, "Maximum commits streamed from history")
	rootCmd.PersistentFlags().Int("max-commit-files", contract.DefaultMaxCommitFiles, "Maximum file paths read per commit")
	rootCmd.PersistentFlags().Int("min-coupling", contract.DefaultMinCoupling, "Minimum co-occurrences for a coupling pair")
	rootCmd.PersistentFlags().String("git-timeout", "", "Bound on git subprocess calls (e.g. 30s)")
	rootCmd.PersistentFlags().String("scope", string(schema.ModuleScope), "Near-duplicate comparison scope: module, language, global")
	rootCmd.PersistentFlags().Float64("threshold", contract.DefaultThreshold, "Jaccard similarity threshold for near-duplicates")
	rootCmd.PersistentFlags().Int("shingle", contract.DefaultShingleSize, "Shingle size in bytes for similarity hashing")
	rootCmd.PersistentFlags().Int("window-bytes", contract.DefaultWindowBytes, "Content window read per file for hashing")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent section workers")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Receipt store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emoji notices on stderr (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Bool("store", false, "Persist the receipt keyed by repository state")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of gateCmd to Viper
	gateCmd.Flags().String("policy", "", "Path to the YAML or JSON policy file")
	if err := viper.BindPFlags(gateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding gate flags", err)
	}

	// Bind all flags of receiptsMigrateCmd to Viper
	receiptsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(receiptsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding receipts migrate flags", err)
	}
}
