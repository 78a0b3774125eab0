package classify

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/classify.md
var classifyPromptRaw string

// classifyTemplate is the parsed classification prompt. Parsed once at
// package init; reused on every Classify call.
var classifyTemplate = template.Must(template.New("classify").Parse(classifyPromptRaw))
