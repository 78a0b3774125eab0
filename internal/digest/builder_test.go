package digest

import (
	"strings"
	"testing"

	"github.com/rmehta3/jobdigest/internal/model"
)

func record(title, company string, cat model.Category, conf model.Confidence, score float64) model.Record {
	return model.Record{
		Posting: model.Posting{
			Title:             title,
			Company:           company,
			Location:          "Remote",
			URL:               "https://example.com/apply",
			Category:          cat,
			SponsorConfidence: conf,
			Score:             score,
		},
	}
}

func TestBuildGroupsByCategoryInPriorityOrder(t *testing.T) {
	records := []model.Record{
		record("Data Engineer", "Pipeline Co", model.CategoryDataEngineer, model.ConfidenceMedium, 100),
		record("Data Scientist", "Model Co", model.CategoryDataScientist, model.ConfidenceHigh, 180),
		record("Data Analyst", "Dash Co", model.CategoryDataAnalyst, model.ConfidenceLow, 90),
	}

	html, err := Build(records)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	dsIdx := strings.Index(html, string(model.CategoryDataScientist))
	daIdx := strings.Index(html, string(model.CategoryDataAnalyst))
	deIdx := strings.Index(html, string(model.CategoryDataEngineer))
	if dsIdx < 0 || daIdx < 0 || deIdx < 0 {
		t.Fatalf("missing category section headings in rendered digest")
	}
	if !(dsIdx < daIdx && daIdx < deIdx) {
		t.Errorf("section order = DS:%d DA:%d DE:%d, want DS < DA < DE", dsIdx, daIdx, deIdx)
	}
}

func TestBuildRendersJobDetails(t *testing.T) {
	rec := record("ML Engineer", "Model Co", model.CategoryDataScientist, model.ConfidenceHigh, 187.5)
	rec.Posting.EntryLevelReasoning = "Title says new grad"

	html, err := Build([]model.Record{rec})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, want := range []string{
		"ML Engineer",
		"Model Co",
		"https://example.com/apply",
		"badge-high",
		"Title says new grad",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered digest missing %q", want)
		}
	}
}

func TestBuildEscapesHTMLInFields(t *testing.T) {
	rec := record("<script>alert(1)</script>", "Evil Co", model.CategoryOther, model.ConfidenceLow, 10)

	html, err := Build([]model.Record{rec})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("posting title was not HTML-escaped")
	}
}

func TestBuildEmptyState(t *testing.T) {
	html, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(html, "No new jobs found") {
		t.Error("empty digest missing empty-state message")
	}
	if !strings.Contains(html, "</html>") {
		t.Error("empty digest is not a complete HTML document")
	}
}

func TestBadgeClass(t *testing.T) {
	tests := []struct {
		conf model.Confidence
		want string
	}{
		{model.ConfidenceHigh, "high"},
		{model.ConfidenceMedium, "medium"},
		{model.ConfidenceLow, "low"},
		{model.ConfidenceExcluded, "low"},
	}
	for _, tt := range tests {
		if got := badgeClass(tt.conf); got != tt.want {
			t.Errorf("badgeClass(%s) = %q, want %q", tt.conf, got, tt.want)
		}
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "Job Digest: no new postings today"},
		{1, "Job Digest: 1 new posting"},
		{12, "Job Digest: 12 new postings"},
	}
	for _, tt := range tests {
		if got := Subject(tt.count); got != tt.want {
			t.Errorf("Subject(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}
