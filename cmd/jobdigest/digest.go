package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var digestPreview bool

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the digest from already-stored postings",
	Long:  "Compose and deliver the digest from unsent stored postings without running discovery.",
	RunE:  runDigest,
}

func init() {
	digestCmd.Flags().BoolVar(&digestPreview, "preview", false, "write the digest HTML to a local file instead of sending")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
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

	pipe := buildPipeline(cfg, sqlStore, digestPreview, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pipe.SendDigest(ctx); err != nil {
		logger.Error("digest delivery failed", "error", err)
		os.Exit(1)
	}
	return nil
}
