package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmehta3/jobdigest/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daily digest daemon",
	Long:  "Run discovery and digest delivery on the configured daily schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"queries", len(cfg.Discovery.Queries),
		"max_age", cfg.Discovery.MaxAge.String(),
		"ai_enabled", cfg.AI.Enabled,
		"recipient", cfg.SMTP.Recipient,
		"discovery_time", cfg.Schedule.DiscoveryTime,
		"digest_time", cfg.Schedule.DigestTime,
	)

	sqlStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	pipe := buildPipeline(cfg, sqlStore, false, logger)

	sched, err := scheduler.New(pipe, cfg.Schedule.DiscoveryTime, cfg.Schedule.DigestTime, logger)
	if err != nil {
		logger.Error("failed to build scheduler", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
