package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rmehta3/jobdigest/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse stored postings in an interactive terminal view",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
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

	records, err := sqlStore.ListAll()
	if err != nil {
		logger.Error("failed to load postings", "error", err)
		os.Exit(1)
	}

	return review.Run(records)
}
