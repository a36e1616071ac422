package cmd

import (
	"github.com/spf13/cobra"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
)

// analyzeCmd composes a receipt for a repository.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo-path]",
	Short: "Compose an analysis receipt for a repository.",
	Long: `Scan the repository, fold per-file stats into aggregates and compose
a schema-versioned receipt with the sections the preset enables.

The receipt is deterministic: two runs over the same input produce
byte-identical output, so receipts can be diffed and cached.

Examples:
  # Standard receipt for the current directory
  repotally analyze

  # Full receipt with every section
  repotally analyze --preset full

  # CI receipt as JSON for a policy gate downstream
  repotally analyze --preset ci --output json --output-file receipt.json

  # Persist the receipt keyed by the current commit hash
  repotally analyze --store`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot compose receipt", err)
		}
	},
}
