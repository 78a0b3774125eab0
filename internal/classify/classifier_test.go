package classify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rmehta3/jobdigest/internal/ai"
	"github.com/rmehta3/jobdigest/internal/model"
)

// stubProvider returns a fixed response so tests never depend on live model
// output.
type stubProvider struct {
	response string
	err      error
	calls    int
}

func (s *stubProvider) Complete(_ context.Context, _ ai.Request) (string, error) {
	s.calls++
	return s.response, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuickClassify(t *testing.T) {
	tests := []struct {
		title string
		want  model.Category
	}{
		{"Data Scientist - New Grad", model.CategoryDataScientist},
		{"Machine Learning Engineer I", model.CategoryDataScientist},
		{"Junior Data Analyst", model.CategoryDataAnalyst},
		{"Analytics Associate", model.CategoryDataAnalyst},
		{"Quantitative Researcher", model.CategoryQuantFinance},
		{"Risk Analyst", model.CategoryQuantFinance},
		{"Data Engineer - ETL", model.CategoryDataEngineer},
		{"Marketing Coordinator", model.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := quickClassify(tt.title); got != tt.want {
				t.Errorf("quickClassify(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestClassifyUsesHeuristicsWhenTitleIsConfident(t *testing.T) {
	provider := &stubProvider{response: `{}`}
	c := New(provider, discardLogger())

	p := model.Posting{
		Title:       "Junior Data Scientist",
		Description: "We want a recent graduate with 0-2 years of experience.",
	}
	category, entry, reasoning := c.Classify(context.Background(), p)

	if category != model.CategoryDataScientist {
		t.Errorf("category = %v, want Data Scientist", category)
	}
	if !entry {
		t.Error("expected entry-level")
	}
	if reasoning == "" {
		t.Error("expected non-empty reasoning")
	}
	if provider.calls != 0 {
		t.Errorf("expected no LLM calls, got %d", provider.calls)
	}
}

func TestClassifyFallsBackToLLMForOther(t *testing.T) {
	provider := &stubProvider{
		response: `{"category":"Quantitative Finance","is_entry_level":true,"reasoning":"New grad trader role"}`,
	}
	c := New(provider, discardLogger())

	p := model.Posting{
		Title:       "Graduate Program 2026",
		Description: "Join our markets desk.",
	}
	category, entry, reasoning := c.Classify(context.Background(), p)

	if provider.calls != 1 {
		t.Fatalf("expected 1 LLM call, got %d", provider.calls)
	}
	if category != model.CategoryQuantFinance {
		t.Errorf("category = %v, want Quantitative Finance", category)
	}
	if !entry {
		t.Error("expected entry-level from LLM result")
	}
	if reasoning != "New grad trader role" {
		t.Errorf("reasoning = %q", reasoning)
	}
}

func TestClassifyUsesLLMWhenDescriptionMissing(t *testing.T) {
	provider := &stubProvider{
		response: `{"category":"Data Scientist","is_entry_level":false,"reasoning":"Seniority unclear"}`,
	}
	c := New(provider, discardLogger())

	_, entry, _ := c.Classify(context.Background(), model.Posting{Title: "Data Scientist"})

	if provider.calls != 1 {
		t.Fatalf("expected LLM call for missing description, got %d", provider.calls)
	}
	if entry {
		t.Error("expected not entry-level")
	}
}

func TestClassifyDegradesOnLLMFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream timeout")}
	c := New(provider, discardLogger())

	category, entry, reasoning := c.Classify(context.Background(), model.Posting{Title: "Data Scientist"})

	if category != model.CategoryDataScientist {
		t.Errorf("expected degraded fallback to title rules, got %v", category)
	}
	if entry {
		t.Error("degraded classification must not claim entry-level")
	}
	if reasoning != "classification unavailable" {
		t.Errorf("reasoning = %q", reasoning)
	}
}

func TestValidateEntryLevelSeniorTermsExclude(t *testing.T) {
	p := model.Posting{
		Title:       "Senior Data Scientist",
		Description: "0-2 years of experience welcome.",
	}
	entry, reasoning := validateEntryLevel(p)
	if entry {
		t.Error("senior title must not be entry-level")
	}
	if reasoning == "" {
		t.Error("expected reasoning to mention senior terminology")
	}
}

func TestValidateEntryLevelExperienceCeiling(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want bool
	}{
		{"two years ok", "Requires 2 years of experience.", true},
		{"five years too many", "Requires 5 years of experience.", false},
		{"highest requirement wins", "2 years of experience preferred, 7 years experience required for senior track.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.Posting{Title: "Data Scientist", Description: tt.desc}
			entry, _ := validateEntryLevel(p)
			if entry != tt.want {
				t.Errorf("entry = %v, want %v", entry, tt.want)
			}
		})
	}
}

func TestShouldDiscard(t *testing.T) {
	tests := []struct {
		name     string
		category model.Category
		entry    bool
		want     bool
	}{
		{"relevant entry-level kept", model.CategoryDataScientist, true, false},
		{"other discarded", model.CategoryOther, true, true},
		{"not entry-level discarded", model.CategoryDataAnalyst, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldDiscard(tt.category, tt.entry); got != tt.want {
				t.Errorf("ShouldDiscard = %v, want %v", got, tt.want)
			}
		})
	}
}
