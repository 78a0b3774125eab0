// Package classify assigns a role category to each posting and judges
// whether it is an entry-level role. Cheap title rules run first; the LLM
// is consulted only when the rules are inconclusive.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/rmehta3/jobdigest/internal/ai"
	"github.com/rmehta3/jobdigest/internal/model"
)

// classificationSchema is enforced server-side via structured outputs.
var classificationSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"category": map[string]any{
			"type": "string",
			"enum": []string{
				"Data Scientist", "Data Analyst", "Quantitative Finance",
				"Data Engineer", "Other",
			},
		},
		"is_entry_level": map[string]any{"type": "boolean"},
		"reasoning":      map[string]any{"type": "string"},
	},
	"required": []string{"category", "is_entry_level", "reasoning"},
}

// llmResult is the JSON shape returned by the LLM (matches classificationSchema).
type llmResult struct {
	Category     string `json:"category"`
	IsEntryLevel bool   `json:"is_entry_level"`
	Reasoning    string `json:"reasoning"`
}

var titleRules = []struct {
	keywords []string
	category model.Category
}{
	{[]string{"data scientist", "ml engineer", "machine learning"}, model.CategoryDataScientist},
	{[]string{"data analyst", "business analyst", "analytics"}, model.CategoryDataAnalyst},
	{[]string{"quant", "quantitative", "financial engineer", "trading", "risk analyst"}, model.CategoryQuantFinance},
	{[]string{"data engineer", "etl", "data pipeline"}, model.CategoryDataEngineer},
}

var (
	entryIndicators = []string{"new grad", "entry level", "junior", " i ", "associate", "early career"}
	seniorTerms     = []string{"senior", "staff", "principal", "lead", "manager", "director"}
	expPattern      = regexp.MustCompile(`(\d+)\+?\s*years?\s*(of\s*)?experience`)
)

const maxDescriptionChars = 2000

// Classifier labels postings with a category and entry-level judgement.
type Classifier struct {
	provider ai.LLMProvider
	logger   *slog.Logger
}

func New(provider ai.LLMProvider, logger *slog.Logger) *Classifier {
	return &Classifier{provider: provider, logger: logger}
}

// Classify returns the posting's category, whether it is entry-level, and
// the reasoning behind the judgement. An LLM failure degrades to the quick
// title-based category with is_entry_level=false; it never propagates.
func (c *Classifier) Classify(ctx context.Context, p model.Posting) (model.Category, bool, string) {
	category := quickClassify(p.Title)

	// Title rules are inconclusive or there is no description to validate
	// against: ask the LLM.
	if category == model.CategoryOther || p.Description == "" {
		return c.llmClassify(ctx, p, category)
	}

	entry, reasoning := validateEntryLevel(p)
	return category, entry, reasoning
}

// ShouldDiscard reports whether a classified posting leaves the pipeline:
// anything uncategorized or above entry level is dropped.
func ShouldDiscard(category model.Category, isEntryLevel bool) bool {
	return category == model.CategoryOther || !isEntryLevel
}

// quickClassify is the rule-based title pass.
func quickClassify(title string) model.Category {
	lower := strings.ToLower(title)
	for _, rule := range titleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return model.CategoryOther
}

func (c *Classifier) llmClassify(ctx context.Context, p model.Posting, fallback model.Category) (model.Category, bool, string) {
	desc := p.Description
	if len(desc) > maxDescriptionChars {
		desc = desc[:maxDescriptionChars]
	}

	var promptBuf bytes.Buffer
	err := classifyTemplate.Execute(&promptBuf, struct {
		Title, Company, Description string
	}{p.Title, p.Company, desc})
	if err != nil {
		c.logger.Error("render classify prompt", "title", p.Title, "error", err)
		return fallback, false, "classification unavailable"
	}

	raw, err := c.provider.Complete(ctx, ai.Request{
		System:     "You are a job classification expert specializing in data and quantitative finance roles.",
		Prompt:     promptBuf.String(),
		SchemaName: "job_classification",
		Schema:     classificationSchema,
		MaxTokens:  300,
	})
	if err != nil {
		c.logger.Warn("llm classification failed, using title rules",
			"title", p.Title,
			"company", p.Company,
			"error", err,
		)
		return fallback, false, "classification unavailable"
	}

	var result llmResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Warn("unparseable classification response", "title", p.Title, "error", err)
		return fallback, false, "classification unavailable"
	}

	return model.Category(result.Category), result.IsEntryLevel, result.Reasoning
}

// validateEntryLevel applies heuristics when the title rules already gave a
// confident category: entry indicators in the title, years-of-experience
// requirements in the description, and senior-term exclusions.
func validateEntryLevel(p model.Posting) (bool, string) {
	title := strings.ToLower(p.Title)
	description := strings.ToLower(p.Description)

	titleMatch := false
	for _, indicator := range entryIndicators {
		if strings.Contains(title, indicator) {
			titleMatch = true
			break
		}
	}

	maxExp := 0
	for _, m := range expPattern.FindAllStringSubmatch(description, -1) {
		if years, err := strconv.Atoi(m[1]); err == nil && years > maxExp {
			maxExp = years
		}
	}

	hasSeniorTerm := false
	for _, term := range seniorTerms {
		if strings.Contains(title, term) {
			hasSeniorTerm = true
			break
		}
	}

	isEntryLevel := (titleMatch || maxExp <= 2) && !hasSeniorTerm

	var reasons []string
	if titleMatch {
		reasons = append(reasons, "Title indicates entry-level")
	}
	if maxExp > 0 && maxExp <= 2 {
		reasons = append(reasons, fmt.Sprintf("Requires %d years experience", maxExp))
	}
	if hasSeniorTerm {
		reasons = append(reasons, "Contains senior-level terminology")
	}
	if len(reasons) == 0 {
		return isEntryLevel, "Entry-level validation"
	}
	return isEntryLevel, strings.Join(reasons, "; ")
}
