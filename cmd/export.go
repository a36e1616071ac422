package cmd

import (
	"github.com/spf13/cobra"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
)

// exportCmd writes the flat per-file rows to a Parquet file.
var exportCmd = &cobra.Command{
	Use:   "export [repo-path]",
	Short: "Export flat per-file rows to a Parquet file.",
	Long: `Compose a receipt and write its flat per-file rows to a Parquet file,
tagged with the repository hash and schema version for downstream joins.

Examples:
  # Export the current repository
  repotally export --output-file rows.parquet

  # Export with a minimum code floor
  repotally export --min-code 10 --output-file rows.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot export rows", err)
		}
	},
}
