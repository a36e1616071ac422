package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/schema"
)

// gateCmd evaluates a policy file against a freshly composed receipt.
var gateCmd = &cobra.Command{
	Use:   "gate [repo-path]",
	Short: "Evaluate a policy against a composed receipt.",
	Long: `Compose a receipt and evaluate a declarative policy file against it.

Rules address receipt fields with RFC 6901 JSON Pointers and compare
them with simple operators. A failing verdict exits non-zero, which
makes the command usable as a CI gate.

Examples:
  # Gate the current repository against a budget policy
  repotally gate --policy budgets.yaml

  # Gate with the full receipt so history rules can resolve
  repotally gate --preset full --policy budgets.yaml

  # Machine-readable verdicts for a pipeline
  repotally gate --policy budgets.yaml --output json`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Gate runs compose with the ci preset unless the user overrides it.
		viper.SetDefault("preset", string(schema.CIPreset))
		return sharedSetup(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteGate(rootCtx, cfg)
	},
}
