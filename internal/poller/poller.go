// Package poller drives the recurring fetch of the live signal feed.
//
// At most one fetch is in flight at any time: timer ticks and manual
// refreshes that arrive while a fetch is outstanding are dropped, never
// queued, so the backend is never hit with a request storm and
// responses cannot be applied out of issue order. On failure the last
// known-good snapshot is retained so a transient network hiccup never
// blanks the display.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/metrics"
)

// DefaultInterval matches the backend's signal generation cadence.
const DefaultInterval = 5 * time.Second

// Fetcher issues one live feed request.
type Fetcher interface {
	FetchLive(ctx context.Context, minConfidence float64) ([]core.Signal, error)
}

// Snapshot is the poller's externally visible state. Signals always
// holds the last successful result; Err is set while the most recent
// fetch failed and cleared on the next success.
type Snapshot struct {
	Signals   []core.Signal `json:"signals"`
	UpdatedAt time.Time     `json:"updated_at"`
	Fetching  bool          `json:"fetching"`
	Err       string        `json:"error,omitempty"`
}

// Poller polls the live feed on a fixed interval while active.
type Poller struct {
	fetcher       Fetcher
	interval      time.Duration
	minConfidence float64
	logger        *zap.Logger
	metrics       *metrics.Registry

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	inFlight bool
	snap     Snapshot
}

// Config holds poller settings.
type Config struct {
	Interval      time.Duration
	MinConfidence float64
}

// New creates a poller. reg may be nil when metrics are disabled.
func New(fetcher Fetcher, cfg Config, logger *zap.Logger, reg *metrics.Registry) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetcher:       fetcher,
		interval:      cfg.Interval,
		minConfidence: cfg.MinConfidence,
		logger:        logger,
		metrics:       reg,
	}
}

// Start begins the polling loop. The first fetch is issued immediately;
// subsequent fetches follow the configured interval. Start fails if the
// poller is already running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.loop(ctx)
	return nil
}

// Stop cancels the timer and waits for the loop to exit. No further
// fetches are issued after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// Refresh triggers an immediate fetch, bypassing the interval wait. It
// behaves exactly like a timer tick: dropped, not queued, when a fetch
// is already in flight. Reports whether a fetch was started.
func (p *Poller) Refresh() bool {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return false
	}
	ctx := context.Background()
	p.mu.Unlock()
	return p.tryFetch(ctx)
}

// Snapshot returns a copy of the current state. Readers never observe a
// partial update.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.snap
	snap.Signals = append([]core.Signal(nil), p.snap.Signals...)
	return snap
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tryFetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tryFetch(ctx)
		}
	}
}

// tryFetch starts a fetch unless one is already outstanding. Reports
// whether a fetch was started.
func (p *Poller) tryFetch(ctx context.Context) bool {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		if p.metrics != nil {
			p.metrics.RecordPoll("skipped")
		}
		p.logger.Debug("poll tick skipped, fetch in flight")
		return false
	}
	p.inFlight = true
	p.snap.Fetching = true
	p.mu.Unlock()

	go p.fetch(ctx)
	return true
}

func (p *Poller) fetch(ctx context.Context) {
	signals, err := p.fetcher.FetchLive(ctx, p.minConfidence)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	p.snap.Fetching = false

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// Transient failure: keep the last known-good signals, expose
		// the error as a flag only.
		p.snap.Err = core.Display(err)
		if p.metrics != nil {
			p.metrics.RecordPoll("error")
		}
		p.logger.Warn("live feed poll failed", zap.Error(err))
		return
	}

	p.snap.Signals = signals
	p.snap.UpdatedAt = time.Now()
	p.snap.Err = ""
	if p.metrics != nil {
		p.metrics.RecordPoll("ok")
		p.metrics.SetLiveSignals(len(signals))
	}
	p.logger.Debug("live feed updated", zap.Int("signals", len(signals)))
}
