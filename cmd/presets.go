package cmd

import (
	"github.com/spf13/cobra"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
)

// presetsCmd lists the known presets and their sections.
var presetsCmd = &cobra.Command{
	Use:     "presets",
	Short:   "List presets and the receipt sections each enables.",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePresets(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list presets", err)
		}
	},
}
