package model

import (
	"context"
	"time"
)

// Category buckets postings into the role types we track.
type Category string

const (
	CategoryDataScientist Category = "Data Scientist"
	CategoryDataAnalyst   Category = "Data Analyst"
	CategoryQuantFinance  Category = "Quantitative Finance"
	CategoryDataEngineer  Category = "Data Engineer"
	CategoryOther         Category = "Other"
)

// Confidence is the estimated likelihood an employer sponsors H-1B visas.
type Confidence string

const (
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceLow      Confidence = "LOW"
	ConfidenceExcluded Confidence = "EXCLUDED" // explicit no-sponsorship language
)

// Posting is a single job listing as it moves through the pipeline.
// Identity fields come from discovery; the derived fields are filled in
// by classification, sponsorship analysis, and scoring, in that order.
// Score is only meaningful once Category and SponsorConfidence are set.
type Posting struct {
	Title       string
	Company     string
	Location    string
	Source      string // upstream API name
	URL         string // direct apply link
	Description string
	PostedAt    *time.Time // nullable (not all listings carry a date)

	Category            Category
	IsEntryLevel        bool
	EntryLevelReasoning string
	SponsorConfidence   Confidence
	SponsorReasoning    string
	Score               float64
}

// Record is a posting snapshot as persisted by the fingerprint store.
type Record struct {
	ID           int64
	Fingerprint  string
	Posting      Posting
	DiscoveredAt time.Time
	Sent         bool
	SentAt       *time.Time
}

// Searcher fetches raw postings from a job-search API.
type Searcher interface {
	Search(ctx context.Context) ([]Posting, error)
}

// Classifier assigns a category and an entry-level judgement to a posting.
// Implementations must tolerate a missing description.
type Classifier interface {
	Classify(ctx context.Context, p Posting) (Category, bool, string)
}

// SponsorshipAnalyzer estimates H-1B sponsorship confidence for a posting.
type SponsorshipAnalyzer interface {
	Estimate(ctx context.Context, p Posting) (Confidence, string)
}

// Store persists seen postings and their digest-send status.
type Store interface {
	InsertIfNew(p Posting) (int64, bool, error)
	ListUnsent() ([]Record, error)
	MarkSent(ids []int64) error
	PurgeOlderThan(days int) (int64, error)
}

// DigestSender delivers a rendered digest to a recipient.
type DigestSender interface {
	SendDigest(ctx context.Context, recipient, subject, htmlBody string) error
}
