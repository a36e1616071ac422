package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/repotally/repotally/core"
	"github.com/repotally/repotally/internal/contract"
)

// receiptsCmd groups receipt store management subcommands.
var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Manage the receipt store.",
	Long:  `Inspect, clear and migrate the store that persists composed receipts keyed by repository state.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// receiptsStatusCmd prints the store backend, location and receipt count.
var receiptsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the receipt store status.",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReceiptsStatus(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot read store status", err)
		}
	},
}

// receiptsClearCmd removes all stored receipts.
var receiptsClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove all stored receipts.",
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReceiptsClear(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot clear store", err)
		}
	},
}

// receiptsMigrateCmd applies store schema migrations.
var receiptsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply receipt store migrations.",
	Long: `Apply store schema migrations up or down.

The default target (-1) migrates to the latest version; 0 rolls the
schema back to its initial state.`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := core.ExecuteReceiptsMigrate(rootCtx, cfg, targetVersion); err != nil {
			contract.LogFatal("Cannot migrate store", err)
		}
	},
}
