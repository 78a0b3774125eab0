package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmehta3/jobdigest/internal/ai"
	"github.com/rmehta3/jobdigest/internal/classify"
	"github.com/rmehta3/jobdigest/internal/config"
	"github.com/rmehta3/jobdigest/internal/digest"
	"github.com/rmehta3/jobdigest/internal/discovery"
	"github.com/rmehta3/jobdigest/internal/model"
	"github.com/rmehta3/jobdigest/internal/pipeline"
	"github.com/rmehta3/jobdigest/internal/ratelimit"
	"github.com/rmehta3/jobdigest/internal/retry"
	"github.com/rmehta3/jobdigest/internal/score"
	"github.com/rmehta3/jobdigest/internal/sponsor"
	"github.com/rmehta3/jobdigest/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobdigest",
	Short: "Daily digest of entry-level data jobs with sponsorship signals",
	Long: "jobdigest searches job boards for entry-level data and quant roles, " +
		"estimates visa sponsorship likelihood, scores the results, and emails " +
		"a daily digest of what's new.",
	// Default to `start` so that `jobdigest` with no args runs the daemon.
	// This preserves compatibility with systemd unit files that invoke the binary directly.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBDIGEST_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBDIGEST_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotenv("config.env"); err != nil {
		return nil, err
	}
	if path == "" {
		if env := os.Getenv("JOBDIGEST_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func buildSearcher(cfg *config.Config, logger *slog.Logger) model.Searcher {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	limiter := ratelimit.New(cfg.Discovery.MinDelay)
	client := discovery.NewJSearchClient(cfg.Discovery.APIKey, cfg.Discovery.Queries, httpClient, limiter, logger)
	return retry.NewRetrySearcher(client, cfg.Discovery.MaxRetries, 5*time.Second, logger)
}

func buildProvider(cfg *config.Config) ai.LLMProvider {
	if !cfg.AI.Enabled {
		return ai.NewDisabledProvider()
	}
	return ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
}

// buildPipeline wires the whole pipeline from config. preview forces the
// digest to a local HTML file regardless of the configured recipient.
func buildPipeline(cfg *config.Config, st model.Store, preview bool, logger *slog.Logger) *pipeline.Pipeline {
	provider := buildProvider(cfg)

	recipient := cfg.SMTP.Recipient
	if preview {
		recipient = ""
	}

	sender := digest.NewSMTPSender(digest.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})

	return pipeline.New(
		buildSearcher(cfg, logger),
		discovery.NewFilter(cfg.Discovery.MaxAge, cfg.Discovery.BlockedEmployers),
		classify.New(provider, logger),
		sponsor.New(provider, logger),
		score.New(),
		st,
		sender,
		pipeline.Options{
			MaxJobs:       cfg.Digest.MaxJobs,
			Recipient:     recipient,
			PreviewPath:   cfg.Digest.PreviewPath,
			RetentionDays: cfg.Store.RetentionDays,
		},
		logger,
	)
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.Store.Path)
}
