package discovery

import (
	"testing"
	"time"
)

func TestIsUSLocation(t *testing.T) {
	f := NewFilter(72*time.Hour, nil)
	tests := []struct {
		location string
		want     bool
	}{
		{"New York, NY", true},
		{"Remote", true},
		{"United States", true},
		{"Austin, TX", true},
		{"London, United Kingdom", false},
		{"Toronto, Canada", false},
		{"Bangalore, India", false},
		{"", true},
		{"Somewhere Unrecognizable", true}, // upstream search is US-scoped
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := f.IsUSLocation(tt.location); got != tt.want {
				t.Errorf("IsUSLocation(%q) = %v, want %v", tt.location, got, tt.want)
			}
		})
	}
}

func TestIsRecentEnough(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := NewFilter(72*time.Hour, nil)
	f.now = func() time.Time { return now }

	within := now.Add(-48 * time.Hour)
	outside := now.Add(-96 * time.Hour)

	if !f.IsRecentEnough(&within) {
		t.Error("48h-old posting should pass a 72h window")
	}
	if f.IsRecentEnough(&outside) {
		t.Error("96h-old posting should fail a 72h window")
	}
	if !f.IsRecentEnough(nil) {
		t.Error("missing timestamp is assumed recent")
	}
}

func TestIsBlockedEmployer(t *testing.T) {
	f := NewFilter(72*time.Hour, nil)
	tests := []struct {
		company string
		want    bool
	}{
		{"ZipRecruiter", true},
		{"Lensa Partners", true},
		{"Google", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.company, func(t *testing.T) {
			if got := f.IsBlockedEmployer(tt.company); got != tt.want {
				t.Errorf("IsBlockedEmployer(%q) = %v, want %v", tt.company, got, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	got := extractText("<p>Build&nbsp;<b>models</b> with   us</p>")
	want := "Build models with us"
	if got != want {
		t.Errorf("extractText = %q, want %q", got, want)
	}
}
