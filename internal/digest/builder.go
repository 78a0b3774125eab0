// Package digest renders ranked postings into the HTML email body and
// delivers it over SMTP.
package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/rmehta3/jobdigest/internal/model"
)

//go:embed templates/digest.html.tmpl
var digestTemplateRaw string

var digestTemplate = template.Must(template.New("digest").Parse(digestTemplateRaw))

// categoryOrder fixes the section order in the rendered digest.
var categoryOrder = []model.Category{
	model.CategoryDataScientist,
	model.CategoryDataAnalyst,
	model.CategoryQuantFinance,
	model.CategoryDataEngineer,
	model.CategoryOther,
}

type entry struct {
	Title      string
	Company    string
	Location   string
	URL        string
	Score      float64
	Confidence string
	BadgeClass string
	Reasoning  string
}

type section struct {
	Name    string
	Entries []entry
}

type digestData struct {
	Date     string
	Empty    bool
	Total    int
	Sections []section
}

// Build renders the digest HTML for the given records, grouped by category
// in priority order. Zero records produce a well-formed empty-state page,
// never a blank body.
func Build(records []model.Record) (string, error) {
	data := digestData{
		Date:  time.Now().Format("January 2, 2006"),
		Empty: len(records) == 0,
		Total: len(records),
	}

	grouped := make(map[model.Category][]entry)
	for _, rec := range records {
		p := rec.Posting
		grouped[p.Category] = append(grouped[p.Category], entry{
			Title:      p.Title,
			Company:    p.Company,
			Location:   p.Location,
			URL:        p.URL,
			Score:      p.Score,
			Confidence: string(p.SponsorConfidence),
			BadgeClass: badgeClass(p.SponsorConfidence),
			Reasoning:  p.EntryLevelReasoning,
		})
	}

	for _, cat := range categoryOrder {
		if entries, ok := grouped[cat]; ok {
			data.Sections = append(data.Sections, section{Name: string(cat), Entries: entries})
		}
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}

// Subject returns the digest email subject line for the given record count.
func Subject(count int) string {
	if count == 0 {
		return "Job Digest: no new postings today"
	}
	return fmt.Sprintf("Job Digest: %d new posting%s", count, plural(count))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func badgeClass(c model.Confidence) string {
	switch c {
	case model.ConfidenceHigh:
		return "high"
	case model.ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}
