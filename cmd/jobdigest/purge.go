package main

import (
	"os"

	"github.com/spf13/cobra"
)

var purgeDays int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored postings older than the retention window",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().IntVar(&purgeDays, "days", 0, "retention window in days (default: store.retention_days from config)")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	days := purgeDays
	if days <= 0 {
		days = cfg.Store.RetentionDays
	}

	sqlStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	removed, err := sqlStore.PurgeOlderThan(days)
	if err != nil {
		logger.Error("purge failed", "error", err)
		os.Exit(1)
	}

	logger.Info("purge complete", "removed", removed, "days", days)
	return nil
}
