package discovery

import (
	"strings"
	"time"
)

// nonUSIndicators mark a location as definitely outside the United States.
var nonUSIndicators = []string{
	"canada", "uk", "united kingdom", "india", "germany",
	"france", "australia", "singapore", "china", "japan",
}

var usIndicators = []string{"united states", "usa", "u.s.", "remote"}

var usStates = map[string]bool{
	"al": true, "ak": true, "az": true, "ar": true, "ca": true, "co": true,
	"ct": true, "de": true, "fl": true, "ga": true, "hi": true, "id": true,
	"il": true, "in": true, "ia": true, "ks": true, "ky": true, "la": true,
	"me": true, "md": true, "ma": true, "mi": true, "mn": true, "ms": true,
	"mo": true, "mt": true, "ne": true, "nv": true, "nh": true, "nj": true,
	"nm": true, "ny": true, "nc": true, "nd": true, "oh": true, "ok": true,
	"or": true, "pa": true, "ri": true, "sc": true, "tn": true, "sd": true,
	"tx": true, "ut": true, "vt": true, "va": true, "wa": true, "wv": true,
	"wi": true, "wy": true, "dc": true,
}

// defaultBlockedEmployers are job aggregators that relist postings behind
// paid subscriptions. Matching is substring, case-insensitive.
var defaultBlockedEmployers = []string{
	"virtualvocations", "ziprecruiter", "aborfy", "talent.com",
	"jobrapido", "jooble", "neuvoo", "adzuna", "glassdoor",
	"careerbuilder", "snagajob", "upward.net", "lensa",
	"bebee", "jobget", "climatebase",
}

// Filter applies the location, freshness, and employer gates.
type Filter struct {
	maxAge           time.Duration
	blockedEmployers []string
	now              func() time.Time
}

// NewFilter returns a filter admitting postings no older than maxAge. A nil
// blocked list falls back to the default aggregator list.
func NewFilter(maxAge time.Duration, blockedEmployers []string) *Filter {
	if blockedEmployers == nil {
		blockedEmployers = defaultBlockedEmployers
	}
	return &Filter{
		maxAge:           maxAge,
		blockedEmployers: blockedEmployers,
		now:              time.Now,
	}
}

// IsUSLocation reports whether a location string looks like the United
// States. The upstream search is already US-scoped, so unknown locations
// default to true; only explicit non-US markers reject.
func (f *Filter) IsUSLocation(location string) bool {
	if location == "" {
		return true
	}
	lower := strings.ToLower(location)

	for _, indicator := range nonUSIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	for _, indicator := range usIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	for _, word := range strings.Fields(strings.ReplaceAll(lower, ",", " ")) {
		if usStates[word] {
			return true
		}
	}
	return true
}

// IsRecentEnough reports whether a posting falls inside the freshness
// window. A missing timestamp is assumed recent.
func (f *Filter) IsRecentEnough(postedAt *time.Time) bool {
	if postedAt == nil {
		return true
	}
	return f.now().Sub(*postedAt) <= f.maxAge
}

// IsBlockedEmployer reports whether the company is a filtered aggregator.
func (f *Filter) IsBlockedEmployer(company string) bool {
	if company == "" {
		return false
	}
	lower := strings.ToLower(company)
	for _, blocked := range f.blockedEmployers {
		if strings.Contains(lower, blocked) {
			return true
		}
	}
	return false
}
