package ai

import (
	"context"
	"errors"
)

// Request is a single structured-output completion request. Schema is a
// JSON Schema enforced server-side so the response needs no code-fence
// stripping or defensive trimming.
type Request struct {
	System     string
	Prompt     string
	SchemaName string
	Schema     map[string]any
	MaxTokens  int
}

// LLMProvider sends a prompt to an LLM and returns the raw JSON response.
// Used by the classifier and the sponsorship analyzer.
type LLMProvider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrDisabled is returned by the disabled provider for every request.
var ErrDisabled = errors.New("ai enrichment disabled")

type disabledProvider struct{}

func (disabledProvider) Complete(ctx context.Context, req Request) (string, error) {
	return "", ErrDisabled
}

// NewDisabledProvider returns a provider that always fails with ErrDisabled,
// pushing callers onto their heuristic fallback paths when AI enrichment is
// turned off.
func NewDisabledProvider() LLMProvider {
	return disabledProvider{}
}
