// Package discovery fetches raw postings from the JSearch API (RapidAPI)
// and applies the location, freshness, and employer filters that gate the
// rest of the pipeline.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rmehta3/jobdigest/internal/model"
	"github.com/rmehta3/jobdigest/internal/ratelimit"
)

const (
	jsearchBaseURL = "https://jsearch.p.rapidapi.com"
	jsearchHost    = "jsearch.p.rapidapi.com"

	// RateLimitKey identifies JSearch in the shared upstream rate limiter.
	RateLimitKey = "jsearch"
)

// jsearchJob represents a single job in the JSearch API response.
type jsearchJob struct {
	JobID          string `json:"job_id"`
	Title          string `json:"job_title"`
	EmployerName   string `json:"employer_name"`
	City           string `json:"job_city"`
	State          string `json:"job_state"`
	Country        string `json:"job_country"`
	IsRemote       bool   `json:"job_is_remote"`
	ApplyLink      string `json:"job_apply_link"`
	GoogleLink     string `json:"job_google_link"`
	Description    string `json:"job_description"`
	PostedAtUTC    string `json:"job_posted_at_datetime_utc"`
	EmploymentType string `json:"job_employment_type"`
}

// jsearchResponse is the top-level JSearch search response.
type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// JSearchClient fetches postings from the JSearch aggregator, one request
// per configured search query.
type JSearchClient struct {
	apiKey  string
	queries []string
	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewJSearchClient creates a client that searches each of the given queries
// per cycle. The limiter paces consecutive requests to the API.
func NewJSearchClient(apiKey string, queries []string, client *http.Client, limiter *ratelimit.Limiter, logger *slog.Logger) *JSearchClient {
	return &JSearchClient{
		apiKey:  apiKey,
		queries: queries,
		client:  client,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// Search runs every configured query and returns the union of results,
// deduplicated by upstream job id. A failed query is logged and skipped;
// Search fails only when no query could be executed at all.
func (c *JSearchClient) Search(ctx context.Context) ([]model.Posting, error) {
	var (
		postings []model.Posting
		seenIDs  = make(map[string]bool)
		lastErr  error
		failed   int
	)

	for _, query := range c.queries {
		if err := c.limiter.Wait(ctx, RateLimitKey); err != nil {
			return nil, err
		}

		results, err := c.search(ctx, query)
		if err != nil {
			c.logger.Warn("jsearch query failed", "query", query, "error", err)
			lastErr = err
			failed++
			continue
		}

		for _, raw := range results {
			if raw.JobID != "" && seenIDs[raw.JobID] {
				continue
			}
			seenIDs[raw.JobID] = true
			postings = append(postings, c.toPosting(raw))
		}
	}

	if failed == len(c.queries) && lastErr != nil {
		return nil, fmt.Errorf("all %d jsearch queries failed: %w", failed, lastErr)
	}

	c.logger.Info("jsearch discovery complete",
		"queries", len(c.queries),
		"failed_queries", failed,
		"postings", len(postings),
	)
	return postings, nil
}

func (c *JSearchClient) search(ctx context.Context, query string) ([]jsearchJob, error) {
	params := url.Values{}
	params.Set("query", query+" in United States")
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("date_posted", "week")
	params.Set("remote_jobs_only", "false")
	params.Set("employment_types", "FULLTIME")

	reqURL := jsearchBaseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w", query, err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", jsearchHost)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("jsearch query %q", query),
		}
	}

	var searchResp jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("jsearch response for %q: %w", query, err)
	}
	return searchResp.Data, nil
}

// toPosting normalizes a raw JSearch result. A missing posted date is
// treated as "now"; descriptions are stripped down to plain text.
func (c *JSearchClient) toPosting(raw jsearchJob) model.Posting {
	postedAt := c.now()
	if raw.PostedAtUTC != "" {
		if t, err := time.Parse(time.RFC3339, raw.PostedAtUTC); err == nil {
			postedAt = t
		}
	}

	applyURL := raw.ApplyLink
	if applyURL == "" {
		applyURL = raw.GoogleLink
	}

	title := raw.Title
	if title == "" {
		title = "Unknown"
	}
	company := raw.EmployerName
	if company == "" {
		company = "Unknown"
	}

	return model.Posting{
		Title:       title,
		Company:     company,
		Location:    buildLocation(raw),
		Source:      "JSearch",
		URL:         applyURL,
		Description: extractText(raw.Description),
		PostedAt:    &postedAt,
	}
}

func buildLocation(raw jsearchJob) string {
	switch {
	case raw.IsRemote:
		return "Remote"
	case raw.City != "" && raw.State != "":
		return raw.City + ", " + raw.State
	case raw.State != "":
		return raw.State
	case raw.Country != "":
		return raw.Country
	default:
		return "US"
	}
}
