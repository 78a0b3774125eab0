// Package sponsor estimates how likely an employer is to sponsor H-1B
// visas. It layers three signals: hard exclusion language in the
// description, a company-level reputation pass, and an LLM read of the
// posting text, combined into a single confidence tier.
package sponsor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rmehta3/jobdigest/internal/ai"
	"github.com/rmehta3/jobdigest/internal/model"
)

var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`no\s+visa\s+sponsorship`),
	regexp.MustCompile(`must\s+be\s+authorized\s+to\s+work\s+without\s+sponsorship`),
	regexp.MustCompile(`we\s+do\s+not\s+sponsor\s+visas`),
	regexp.MustCompile(`cannot\s+sponsor\s+work\s+authorization`),
	regexp.MustCompile(`us\s+citizenship\s+required`),
	regexp.MustCompile(`must\s+be\s+a\s+us\s+citizen`),
	regexp.MustCompile(`security\s+clearance\s+required`),
}

var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`open\s+to\s+international\s+candidates`),
	regexp.MustCompile(`visa\s+sponsorship\s+available`),
	regexp.MustCompile(`eligible\s+for\s+(future\s+)?visa\s+sponsorship`),
	regexp.MustCompile(`h-?1b\s+sponsorship`),
	regexp.MustCompile(`work\s+authorization\s+provided`),
}

// knownSponsors are employers with a consistent H-1B filing record.
var knownSponsors = []string{
	"google", "microsoft", "amazon", "meta", "apple", "netflix",
	"goldman sachs", "jpmorgan", "morgan stanley", "citadel",
	"jane street", "two sigma", "de shaw", "jump trading",
	"databricks", "snowflake", "stripe", "airbnb", "uber",
	"capital one", "american express", "visa", "mastercard",
}

// sponsorIndicators are company-name substrings typical of industries that
// file H-1B petitions at scale.
var sponsorIndicators = []string{
	"technologies", "tech", "software", "systems",
	"capital", "financial", "bank", "securities",
	"consulting", "analytics", "data", "research",
}

var sponsorshipSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"signal": map[string]any{
			"type": "string",
			"enum": []string{"HIGH", "MEDIUM", "LOW"},
		},
		"reasoning": map[string]any{"type": "string"},
	},
	"required": []string{"signal", "reasoning"},
}

type llmSignal struct {
	Signal    string `json:"signal"`
	Reasoning string `json:"reasoning"`
}

const maxDescriptionChars = 2000

// Analyzer estimates sponsorship confidence for postings.
type Analyzer struct {
	provider ai.LLMProvider
	logger   *slog.Logger
}

func New(provider ai.LLMProvider, logger *slog.Logger) *Analyzer {
	return &Analyzer{provider: provider, logger: logger}
}

// Estimate returns the sponsorship confidence tier and reasoning for a
// posting. EXCLUDED is returned only for explicit no-sponsorship language.
// LLM failures degrade the text signal to LOW; they never propagate.
func (a *Analyzer) Estimate(ctx context.Context, p model.Posting) (model.Confidence, string) {
	description := strings.ToLower(p.Description)

	for _, pattern := range exclusionPatterns {
		if pattern.MatchString(description) {
			return model.ConfidenceExcluded, "Job explicitly states no visa sponsorship"
		}
	}

	companySignal := companySignal(p.Company)
	textSignal, textReasoning := a.textSignal(ctx, p, description)

	return combine(companySignal, textSignal, textReasoning)
}

func companySignal(company string) model.Confidence {
	lower := strings.ToLower(company)
	for _, sponsor := range knownSponsors {
		if strings.Contains(lower, sponsor) {
			return model.ConfidenceHigh
		}
	}
	for _, indicator := range sponsorIndicators {
		if strings.Contains(lower, indicator) {
			return model.ConfidenceMedium
		}
	}
	return model.ConfidenceLow
}

func (a *Analyzer) textSignal(ctx context.Context, p model.Posting, descriptionLower string) (model.Confidence, string) {
	for _, pattern := range positivePatterns {
		if pattern.MatchString(descriptionLower) {
			return model.ConfidenceHigh, "Job description explicitly mentions visa sponsorship"
		}
	}

	desc := p.Description
	if len(desc) > maxDescriptionChars {
		desc = desc[:maxDescriptionChars]
	}

	var promptBuf bytes.Buffer
	err := sponsorshipTemplate.Execute(&promptBuf, struct {
		Title, Company, Description string
	}{p.Title, p.Company, desc})
	if err != nil {
		a.logger.Error("render sponsorship prompt", "company", p.Company, "error", err)
		return model.ConfidenceLow, "Unable to determine sponsorship likelihood"
	}

	raw, err := a.provider.Complete(ctx, ai.Request{
		System:     "You are an expert in H-1B visa sponsorship patterns and employer practices.",
		Prompt:     promptBuf.String(),
		SchemaName: "sponsorship_signal",
		Schema:     sponsorshipSchema,
		MaxTokens:  200,
	})
	if err != nil {
		a.logger.Warn("llm sponsorship analysis failed",
			"company", p.Company,
			"title", p.Title,
			"error", err,
		)
		return model.ConfidenceLow, "Unable to determine sponsorship likelihood"
	}

	var result llmSignal
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		a.logger.Warn("unparseable sponsorship response", "company", p.Company, "error", err)
		return model.ConfidenceLow, "Unable to determine sponsorship likelihood"
	}
	return model.Confidence(result.Signal), result.Reasoning
}

var signalScores = map[model.Confidence]float64{
	model.ConfidenceHigh:   3,
	model.ConfidenceMedium: 2,
	model.ConfidenceLow:    1,
}

// combine weights the company signal at 0.6 and the text signal at 0.4,
// then maps the blend back onto a tier.
func combine(company, text model.Confidence, textReasoning string) (model.Confidence, string) {
	companyScore, ok := signalScores[company]
	if !ok {
		companyScore = 1
	}
	textScore, ok := signalScores[text]
	if !ok {
		textScore = 1
	}
	blended := companyScore*0.6 + textScore*0.4

	var confidence model.Confidence
	switch {
	case blended >= 2.5:
		confidence = model.ConfidenceHigh
	case blended >= 1.8:
		confidence = model.ConfidenceMedium
	default:
		confidence = model.ConfidenceLow
	}

	var parts []string
	switch company {
	case model.ConfidenceHigh:
		parts = append(parts, "Known sponsor-friendly company")
	case model.ConfidenceMedium:
		parts = append(parts, "Company profile suggests potential sponsorship")
	}
	if textReasoning != "" {
		parts = append(parts, textReasoning)
	}
	if len(parts) == 0 {
		return confidence, "Limited sponsorship signals"
	}
	return confidence, strings.Join(parts, "; ")
}
