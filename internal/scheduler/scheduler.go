// Package scheduler wires up the cron jobs that trigger the daily discovery
// cycle and digest delivery.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rmehta3/jobdigest/internal/pipeline"
)

// Runner is the subset of the pipeline the scheduler drives.
type Runner interface {
	RunCycle(ctx context.Context) (int, error)
	SendDigest(ctx context.Context) error
}

// Scheduler wraps robfig/cron with two daily jobs: discovery and digest.
type Scheduler struct {
	cron          *cron.Cron
	runner        Runner
	discoverySpec string
	digestSpec    string
	logger        *slog.Logger
}

// New creates a scheduler firing discovery and digest at the given local
// times, each "HH:MM" 24h.
func New(runner Runner, discoveryTime, digestTime string, logger *slog.Logger) (*Scheduler, error) {
	discoverySpec, err := cronSpec(discoveryTime)
	if err != nil {
		return nil, fmt.Errorf("discovery time: %w", err)
	}
	digestSpec, err := cronSpec(digestTime)
	if err != nil {
		return nil, fmt.Errorf("digest time: %w", err)
	}

	return &Scheduler{
		cron:          cron.New(),
		runner:        runner,
		discoverySpec: discoverySpec,
		digestSpec:    digestSpec,
		logger:        logger,
	}, nil
}

// cronSpec converts "HH:MM" into a standard five-field daily cron spec.
func cronSpec(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", hhmm, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// Run registers the jobs, runs one immediate discovery cycle so the store is
// populated without waiting for the first tick, and blocks until ctx is
// cancelled. It returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.discoverySpec, func() { s.runDiscovery(ctx) }); err != nil {
		return fmt.Errorf("register discovery job: %w", err)
	}
	if _, err := s.cron.AddFunc(s.digestSpec, func() { s.runDigest(ctx) }); err != nil {
		return fmt.Errorf("register digest job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"discovery_spec", s.discoverySpec,
		"digest_spec", s.digestSpec,
	)

	s.runDiscovery(ctx)

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) runDiscovery(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	inserted, err := s.runner.RunCycle(ctx)
	switch {
	case errors.Is(err, pipeline.ErrCycleRunning):
		s.logger.Warn("discovery tick skipped, cycle still running")
	case err != nil:
		s.logger.Error("discovery cycle failed", "error", err)
	default:
		s.logger.Info("discovery cycle finished", "new", inserted)
	}
}

func (s *Scheduler) runDigest(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.SendDigest(ctx); err != nil {
		s.logger.Error("digest delivery failed", "error", err)
		return
	}
	s.logger.Info("digest delivered")
}
