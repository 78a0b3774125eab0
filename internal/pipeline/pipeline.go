// Package pipeline runs the discovery cycle and the digest send, wiring
// search, classification, sponsorship estimation, scoring, and storage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/rmehta3/jobdigest/internal/classify"
	"github.com/rmehta3/jobdigest/internal/digest"
	"github.com/rmehta3/jobdigest/internal/discovery"
	"github.com/rmehta3/jobdigest/internal/model"
	"github.com/rmehta3/jobdigest/internal/score"
)

// ErrCycleRunning is returned when a discovery cycle is triggered while a
// previous one is still in progress.
var ErrCycleRunning = errors.New("discovery cycle already running")

// classifyBatchCap bounds LLM calls per cycle.
const classifyBatchCap = 20

// Options configures digest composition, delivery, and store retention.
type Options struct {
	MaxJobs       int    // postings per digest
	Recipient     string // empty enables preview mode
	PreviewPath   string // HTML output path in preview mode
	RetentionDays int    // stored postings older than this are purged each cycle
}

// Pipeline orchestrates one end-to-end pass over the job sources.
type Pipeline struct {
	searcher   model.Searcher
	filter     *discovery.Filter
	classifier model.Classifier
	analyzer   model.SponsorshipAnalyzer
	scorer     *score.Scorer
	store      model.Store
	sender     model.DigestSender
	opts       Options
	logger     *slog.Logger

	mu sync.Mutex // guards against overlapping cycles
}

func New(
	searcher model.Searcher,
	filter *discovery.Filter,
	classifier model.Classifier,
	analyzer model.SponsorshipAnalyzer,
	scorer *score.Scorer,
	store model.Store,
	sender model.DigestSender,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = 12
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = 30
	}
	return &Pipeline{
		searcher:   searcher,
		filter:     filter,
		classifier: classifier,
		analyzer:   analyzer,
		scorer:     scorer,
		store:      store,
		sender:     sender,
		opts:       opts,
		logger:     logger,
	}
}

// RunCycle executes one discovery cycle: search, filter, classify, estimate
// sponsorship, score, and store. It returns the number of new postings
// inserted. Upstream call failures degrade per posting and never abort the
// cycle; storage failures do.
func (p *Pipeline) RunCycle(ctx context.Context) (int, error) {
	if !p.mu.TryLock() {
		p.logger.Warn("skipping discovery cycle, previous one still running")
		return 0, ErrCycleRunning
	}
	defer p.mu.Unlock()

	postings, err := p.searcher.Search(ctx)
	if err != nil {
		return 0, fmt.Errorf("search: %w", err)
	}
	p.logger.Info("discovery complete", "postings", len(postings))
	if len(postings) == 0 {
		return 0, nil
	}

	postings = p.applyFilters(postings)
	p.logger.Info("filters applied", "remaining", len(postings))
	if len(postings) == 0 {
		return 0, nil
	}

	postings = p.classifyBatch(ctx, postings)
	p.logger.Info("classification complete", "entry_level", len(postings))
	if len(postings) == 0 {
		return 0, nil
	}

	postings = p.estimateSponsorship(ctx, postings)
	p.logger.Info("sponsorship estimated", "remaining", len(postings))
	if len(postings) == 0 {
		return 0, nil
	}

	postings = p.scorer.Rank(postings)

	inserted := 0
	for _, posting := range postings {
		_, isNew, err := p.store.InsertIfNew(posting)
		if err != nil {
			return inserted, fmt.Errorf("store posting %q at %q: %w", posting.Title, posting.Company, err)
		}
		if isNew {
			inserted++
		}
	}
	// Retention sweep rides on the cycle; a failure here is not worth
	// failing an otherwise successful run.
	if removed, err := p.store.PurgeOlderThan(p.opts.RetentionDays); err != nil {
		p.logger.Warn("retention purge failed", "error", err)
	} else if removed > 0 {
		p.logger.Info("purged stale postings", "removed", removed, "retention_days", p.opts.RetentionDays)
	}

	p.logger.Info("cycle complete", "new", inserted, "duplicates", len(postings)-inserted)
	return inserted, nil
}

func (p *Pipeline) applyFilters(postings []model.Posting) []model.Posting {
	kept := postings[:0]
	for _, posting := range postings {
		if !p.filter.IsUSLocation(posting.Location) {
			continue
		}
		if !p.filter.IsRecentEnough(posting.PostedAt) {
			continue
		}
		if p.filter.IsBlockedEmployer(posting.Company) {
			continue
		}
		kept = append(kept, posting)
	}
	return kept
}

func (p *Pipeline) classifyBatch(ctx context.Context, postings []model.Posting) []model.Posting {
	if len(postings) > classifyBatchCap {
		p.logger.Info("capping classification batch", "total", len(postings), "cap", classifyBatchCap)
		postings = postings[:classifyBatchCap]
	}

	kept := postings[:0]
	for _, posting := range postings {
		category, entryLevel, reasoning := p.classifier.Classify(ctx, posting)
		if classify.ShouldDiscard(category, entryLevel) {
			continue
		}
		posting.Category = category
		posting.IsEntryLevel = entryLevel
		posting.EntryLevelReasoning = reasoning
		kept = append(kept, posting)
	}
	return kept
}

func (p *Pipeline) estimateSponsorship(ctx context.Context, postings []model.Posting) []model.Posting {
	kept := postings[:0]
	for _, posting := range postings {
		confidence, reasoning := p.analyzer.Estimate(ctx, posting)
		if confidence == model.ConfidenceExcluded {
			continue
		}
		posting.SponsorConfidence = confidence
		posting.SponsorReasoning = reasoning
		kept = append(kept, posting)
	}
	return kept
}

// SendDigest composes the digest from unsent stored postings and delivers
// it. Records are marked sent only after successful delivery; an empty
// digest is still sent. Without a configured recipient the HTML is written
// to the preview path instead.
func (p *Pipeline) SendDigest(ctx context.Context) error {
	records, err := p.store.ListUnsent()
	if err != nil {
		return fmt.Errorf("list unsent: %w", err)
	}

	selected := make([]model.Record, 0, p.opts.MaxJobs)
	for _, rec := range records {
		if !score.ShouldInclude(rec.Posting) {
			continue
		}
		selected = append(selected, rec)
		if len(selected) == p.opts.MaxJobs {
			break
		}
	}

	html, err := digest.Build(selected)
	if err != nil {
		return err
	}
	subject := digest.Subject(len(selected))

	if p.opts.Recipient == "" {
		if err := os.WriteFile(p.opts.PreviewPath, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write digest preview: %w", err)
		}
		p.logger.Info("digest preview written", "path", p.opts.PreviewPath, "postings", len(selected))
		return nil
	}

	if err := p.sender.SendDigest(ctx, p.opts.Recipient, subject, html); err != nil {
		return err
	}
	p.logger.Info("digest sent", "recipient", p.opts.Recipient, "postings", len(selected))

	ids := make([]int64, len(selected))
	for i, rec := range selected {
		ids[i] = rec.ID
	}
	if len(ids) == 0 {
		return nil
	}
	if err := p.store.MarkSent(ids); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}
