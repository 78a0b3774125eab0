package store

import (
	"testing"

	"github.com/rmehta3/jobdigest/internal/model"
)

func TestFingerprintNormalizesCaseAndWhitespace(t *testing.T) {
	a := Fingerprint(model.Posting{Company: "Google", Title: "Data Scientist"})
	b := Fingerprint(model.Posting{Company: "google", Title: " Data Scientist "})
	if a != b {
		t.Errorf("expected equal fingerprints for normalized-equal postings:\n  %s\n  %s", a, b)
	}
}

func TestFingerprintDiffersAcrossIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Posting
	}{
		{
			name: "different company",
			a:    model.Posting{Company: "Google", Title: "Data Scientist"},
			b:    model.Posting{Company: "Meta", Title: "Data Scientist"},
		},
		{
			name: "different title",
			a:    model.Posting{Company: "Google", Title: "Data Scientist"},
			b:    model.Posting{Company: "Google", Title: "Data Analyst"},
		},
		{
			name: "delimiter prevents field bleed",
			a:    model.Posting{Company: "ab", Title: "c"},
			b:    model.Posting{Company: "a", Title: "bc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Fingerprint(tt.a) == Fingerprint(tt.b) {
				t.Error("expected distinct fingerprints")
			}
		})
	}
}

func TestFingerprintIgnoresNonIdentityFields(t *testing.T) {
	a := model.Posting{Company: "Google", Title: "Data Scientist", Location: "NYC", URL: "https://a"}
	b := model.Posting{Company: "Google", Title: "Data Scientist", Location: "SF", URL: "https://b"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint must depend only on company and title")
	}
}
