package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rmehta3/jobdigest/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSearcher calls a function on each invocation, tracking call count.
type mockSearcher struct {
	calls int
	fn    func(attempt int) ([]model.Posting, error)
}

func (m *mockSearcher) Search(_ context.Context) ([]model.Posting, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	postings := []model.Posting{{Title: "Data Scientist", Company: "Google"}}
	mock := &mockSearcher{fn: func(_ int) ([]model.Posting, error) {
		return postings, nil
	}}

	rs := NewRetrySearcher(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.Search(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Company != "Google" {
		t.Fatalf("unexpected postings: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	postings := []model.Posting{{Title: "Data Analyst"}}
	mock := &mockSearcher{fn: func(attempt int) ([]model.Posting, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return postings, nil
	}}

	rs := NewRetrySearcher(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rs.Search(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockSearcher{fn: func(_ int) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 403, Err: errors.New("forbidden")}
	}}

	rs := NewRetrySearcher(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rs.Search(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 403 {
		t.Fatalf("expected HTTPError with status 403, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockSearcher{fn: func(_ int) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rs := NewRetrySearcher(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rs.Search(context.Background())
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockSearcher{fn: func(_ int) ([]model.Posting, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	rs := NewRetrySearcher(mock, 2, time.Second, discardLogger())
	_, err := rs.Search(ctx)
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_HonorsRetryAfterHeader(t *testing.T) {
	start := time.Now()
	mock := &mockSearcher{fn: func(attempt int) ([]model.Posting, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 429, RetryAfter: 50 * time.Millisecond}
		}
		return nil, nil
	}}

	rs := NewRetrySearcher(mock, 1, 10*time.Millisecond, discardLogger())
	if _, err := rs.Search(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected Retry-After delay to be honored, waited only %v", elapsed)
	}
}
