package sponsor

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/sponsorship.md
var sponsorshipPromptRaw string

var sponsorshipTemplate = template.Must(template.New("sponsorship").Parse(sponsorshipPromptRaw))
