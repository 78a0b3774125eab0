package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmehta3/jobdigest/internal/model"
	"github.com/rmehta3/jobdigest/internal/store"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one discovery cycle and send the digest, then exit",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "discover and score without persisting, write digest preview instead of sending")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// In dry-run mode, use a NopStore so nothing is persisted.
	var st model.Store
	if runDryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		st = store.NewNopStore()
	} else {
		sqlStore, err := openStore(cfg)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		st = sqlStore
	}

	pipe := buildPipeline(cfg, st, runDryRun, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inserted, err := pipe.RunCycle(ctx)
	if err != nil {
		logger.Error("discovery cycle failed", "error", err)
		os.Exit(1)
	}
	logger.Info("discovery cycle finished", "new", inserted)

	if err := pipe.SendDigest(ctx); err != nil {
		logger.Error("digest delivery failed", "error", err)
		os.Exit(1)
	}

	return nil
}
