package poller

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/b3signals/b3dash/internal/core"
)

type stubFetcher struct {
	fn func(ctx context.Context, minConfidence float64) ([]core.Signal, error)
}

func (s *stubFetcher) FetchLive(ctx context.Context, minConfidence float64) ([]core.Signal, error) {
	return s.fn(ctx, minConfidence)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func someSignals(n int) []core.Signal {
	out := make([]core.Signal, n)
	for i := range out {
		out[i] = core.Signal{Ticker: "PETR4", Strategy: fmt.Sprintf("s%d", i)}
	}
	return out
}

func TestPoller_SingleFetchInFlight(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 8)
	release := make(chan struct{})

	fetcher := &stubFetcher{fn: func(ctx context.Context, _ float64) ([]core.Signal, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return someSignals(2), nil
	}}

	p := New(fetcher, Config{Interval: time.Hour}, nil, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	<-started // initial fetch outstanding

	// A refresh while a fetch is outstanding is dropped, not queued.
	if p.Refresh() {
		t.Error("refresh during in-flight fetch should be dropped")
	}
	if p.Refresh() {
		t.Error("second refresh during in-flight fetch should be dropped")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 network call, got %d", got)
	}

	close(release)
	waitFor(t, "snapshot update", func() bool { return !p.Snapshot().UpdatedAt.IsZero() })

	// Idle again: a manual refresh starts a new fetch immediately.
	if !p.Refresh() {
		t.Error("refresh while idle should start a fetch")
	}
	waitFor(t, "second call", func() bool { return calls.Load() == 2 })
}

func TestPoller_FailureRetainsLastKnownGood(t *testing.T) {
	var fail atomic.Bool
	fetcher := &stubFetcher{fn: func(ctx context.Context, _ float64) ([]core.Signal, error) {
		if fail.Load() {
			return nil, core.WrapError(core.ErrNetwork, fmt.Errorf("connection refused"))
		}
		return someSignals(3), nil
	}}

	p := New(fetcher, Config{Interval: time.Hour}, nil, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	waitFor(t, "first success", func() bool { return len(p.Snapshot().Signals) == 3 })

	fail.Store(true)
	p.Refresh()
	waitFor(t, "error flag", func() bool { return p.Snapshot().Err != "" })

	snap := p.Snapshot()
	if len(snap.Signals) != 3 {
		t.Errorf("last known-good signals must be retained, got %d", len(snap.Signals))
	}

	// Next success clears the flag.
	fail.Store(false)
	p.Refresh()
	waitFor(t, "error cleared", func() bool { return p.Snapshot().Err == "" })
}

func TestPoller_TicksKeepFetching(t *testing.T) {
	var calls atomic.Int32
	fetcher := &stubFetcher{fn: func(ctx context.Context, _ float64) ([]core.Signal, error) {
		calls.Add(1)
		return nil, nil
	}}

	p := New(fetcher, Config{Interval: 10 * time.Millisecond}, nil, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	waitFor(t, "several ticks", func() bool { return calls.Load() >= 3 })
}

func TestPoller_StopCancelsTimer(t *testing.T) {
	var calls atomic.Int32
	fetcher := &stubFetcher{fn: func(ctx context.Context, _ float64) ([]core.Signal, error) {
		calls.Add(1)
		return nil, nil
	}}

	p := New(fetcher, Config{Interval: 10 * time.Millisecond}, nil, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first fetch", func() bool { return calls.Load() >= 1 })

	p.Stop()
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("fetches continued after Stop: %d -> %d", after, calls.Load())
	}

	if p.Refresh() {
		t.Error("refresh after Stop should not start a fetch")
	}
}

func TestPoller_StartTwiceFails(t *testing.T) {
	fetcher := &stubFetcher{fn: func(ctx context.Context, _ float64) ([]core.Signal, error) {
		return nil, nil
	}}

	p := New(fetcher, Config{Interval: time.Hour}, nil, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	if err := p.Start(context.Background()); err == nil {
		t.Error("expected second Start to fail")
	}
}

func TestPoller_SnapshotIsACopy(t *testing.T) {
	fetcher := &stubFetcher{fn: func(ctx context.Context, _ float64) ([]core.Signal, error) {
		return someSignals(2), nil
	}}

	p := New(fetcher, Config{Interval: time.Hour}, nil, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer p.Stop()

	waitFor(t, "snapshot", func() bool { return len(p.Snapshot().Signals) == 2 })

	snap := p.Snapshot()
	snap.Signals[0].Ticker = "MUTATED"

	if p.Snapshot().Signals[0].Ticker != "PETR4" {
		t.Error("mutating a returned snapshot must not affect poller state")
	}
}
