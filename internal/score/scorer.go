// Package score ranks postings with a fixed additive formula: category
// weight + sponsorship weight + freshness decay + entry-level clarity bonus.
package score

import (
	"sort"
	"strings"
	"time"

	"github.com/rmehta3/jobdigest/internal/model"
)

var categoryWeights = map[model.Category]float64{
	model.CategoryDataScientist: 100,
	model.CategoryDataAnalyst:   80,
	model.CategoryQuantFinance:  60,
	model.CategoryDataEngineer:  40,
	model.CategoryOther:         0,
}

var sponsorWeights = map[model.Confidence]float64{
	model.ConfidenceHigh:   50,
	model.ConfidenceMedium: 25,
	model.ConfidenceLow:    5,
}

// clarityIndicators are phrases whose presence in the entry-level reasoning
// suggests a clearly scoped early-career role. Each distinct match is worth
// 3 points, capped at 10.
var clarityIndicators = []string{
	"new grad",
	"entry level",
	"junior",
	"recent graduate",
	"0-2 years",
	"bs/ms",
	"phd",
}

// lowConfidenceFloor is the score a LOW-confidence posting must exceed to
// make it into a digest.
const lowConfidenceFloor = 150

// Scorer computes posting scores. The zero value is not usable; construct
// with New so the clock can be stubbed in tests.
type Scorer struct {
	now func() time.Time
}

func New() *Scorer {
	return &Scorer{now: time.Now}
}

// NewWithClock returns a Scorer using the given clock. Test hook.
func NewWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the total score for a posting. Deterministic given the
// posting's category, sponsor confidence, posted date, and reasoning text.
func (s *Scorer) Score(p model.Posting) float64 {
	total := categoryWeights[p.Category]
	total += sponsorWeights[p.SponsorConfidence]
	total += s.freshness(p.PostedAt)
	total += clarity(p.EntryLevelReasoning)
	return total
}

// freshness decays linearly from 20 at zero hours to 0 at 24 hours.
// Postings without a timestamp, or older than 24h, score zero.
func (s *Scorer) freshness(postedAt *time.Time) float64 {
	if postedAt == nil {
		return 0
	}
	hours := s.now().Sub(*postedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	if hours > 24 {
		return 0
	}
	return 20 - hours*20/24
}

func clarity(reasoning string) float64 {
	if reasoning == "" {
		return 0
	}
	lower := strings.ToLower(reasoning)
	matches := 0
	for _, indicator := range clarityIndicators {
		if strings.Contains(lower, indicator) {
			matches++
		}
	}
	bonus := float64(matches * 3)
	if bonus > 10 {
		return 10
	}
	return bonus
}

// Rank scores every posting in place and returns the slice sorted by score
// descending. The sort is stable, so equal scores keep their input order.
func (s *Scorer) Rank(postings []model.Posting) []model.Posting {
	for i := range postings {
		postings[i].Score = s.Score(postings[i])
	}
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].Score > postings[j].Score
	})
	return postings
}

// ShouldInclude reports whether a posting belongs in the final digest. A
// LOW-confidence posting makes the cut only when its score is exceptional;
// every other tier always passes.
func ShouldInclude(p model.Posting) bool {
	if p.SponsorConfidence == model.ConfidenceLow {
		return p.Score > lowConfidenceFloor
	}
	return true
}
