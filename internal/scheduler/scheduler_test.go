package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeRunner struct {
	mu      sync.Mutex
	cycles  int
	digests int
}

func (f *fakeRunner) RunCycle(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cycles++
	return 0, nil
}

func (f *fakeRunner) SendDigest(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digests++
	return nil
}

func (f *fakeRunner) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cycles, f.digests
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCronSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "0 8 * * *"},
		{in: "23:45", want: "45 23 * * *"},
		{in: "00:00", want: "0 0 * * *"},
		{in: "8am", wantErr: true},
		{in: "25:00", wantErr: true},
	}
	for _, tt := range tests {
		got, err := cronSpec(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("cronSpec(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("cronSpec(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("cronSpec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsBadTimes(t *testing.T) {
	if _, err := New(&fakeRunner{}, "nope", "08:30", discardLogger()); err == nil {
		t.Error("expected error for bad discovery time")
	}
	if _, err := New(&fakeRunner{}, "08:00", "nope", discardLogger()); err == nil {
		t.Error("expected error for bad digest time")
	}
}

func TestRunExecutesImmediateDiscoveryAndStopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	s, err := New(runner, "08:00", "08:30", discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// The immediate discovery run happens before Run blocks on ctx.
	deadline := time.After(2 * time.Second)
	for {
		if cycles, _ := runner.counts(); cycles >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("immediate discovery cycle never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on graceful shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	if _, digests := runner.counts(); digests != 0 {
		t.Errorf("digests = %d, want 0 before the scheduled time", digests)
	}
}
