package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print store statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	stats, err := sqlStore.GetStats()
	if err != nil {
		logger.Error("failed to read stats", "error", err)
		os.Exit(1)
	}

	fmt.Printf("total:   %d\n", stats.Total)
	fmt.Printf("sent:    %d\n", stats.Sent)
	fmt.Printf("pending: %d\n", stats.Unsent)
	return nil
}
