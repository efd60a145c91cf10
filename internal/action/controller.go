// Package action drives single user-initiated requests (scan submit,
// backtest run) through the idle → pending → succeeded|failed
// lifecycle.
//
// Each submission carries a monotonically increasing sequence token. A
// response is applied only if its token still matches the latest
// issued one; a superseded response, success or failure alike, is
// discarded so it can never overwrite state belonging to a newer
// request. This is the only "cancellation" mechanism: the transport
// request is left to finish and its result is ignored.
package action

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/metrics"
)

// Phase is the controller lifecycle phase.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is the externally visible controller state. Result is only
// meaningful in PhaseSucceeded; Err only in PhaseFailed. A failed
// submission clears any previous result so the UI never shows stale
// data next to a fresh error.
type State[T any] struct {
	Phase  Phase  `json:"phase"`
	Seq    uint64 `json:"seq"`
	Err    string `json:"error,omitempty"`
	Result T      `json:"result,omitempty"`
}

// controller is the shared sequencing core for the concrete
// controllers below.
type controller[T any] struct {
	mu    sync.Mutex
	seq   uint64
	state State[T]
}

// begin registers a new submission, superseding any outstanding one,
// and returns its token.
func (c *controller[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = State[T]{Phase: PhasePending, Seq: c.seq}
	return c.seq
}

// finish applies the outcome for the given token. A stale token is
// discarded and finish reports false.
func (c *controller[T]) finish(seq uint64, result T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	if err != nil {
		c.state = State[T]{Phase: PhaseFailed, Seq: seq, Err: core.Display(err)}
		return true
	}
	c.state = State[T]{Phase: PhaseSucceeded, Seq: seq, Result: result}
	return true
}

func (c *controller[T]) current() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scanner issues a scan request.
type Scanner interface {
	Scan(ctx context.Context, ticker string) ([]core.Signal, error)
}

// ScanController drives on-demand ticker scans.
type ScanController struct {
	gw      Scanner
	logger  *zap.Logger
	metrics *metrics.Registry
	ctl     controller[[]core.Signal]
}

// NewScanController creates a scan controller. reg may be nil.
func NewScanController(gw Scanner, logger *zap.Logger, reg *metrics.Registry) *ScanController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanController{gw: gw, logger: logger, metrics: reg}
}

// Submit validates the ticker and, if valid, issues the scan
// asynchronously. Invalid input short-circuits locally with a
// VALIDATION error and never reaches the network; controller state is
// left untouched so a typo cannot wipe displayed results.
func (s *ScanController) Submit(ctx context.Context, ticker string) error {
	normalized, err := NormalizeTicker(ticker)
	if err != nil {
		return err
	}

	seq := s.ctl.begin()
	go func() {
		signals, err := s.gw.Scan(ctx, normalized)
		applied := s.ctl.finish(seq, signals, err)
		if !applied {
			s.logger.Debug("discarded superseded scan response",
				zap.Uint64("seq", seq), zap.String("ticker", normalized))
			return
		}
		if s.metrics != nil {
			if err != nil {
				s.metrics.RecordScan("error")
			} else {
				s.metrics.RecordScan("ok")
			}
		}
	}()
	return nil
}

// State returns the current scan state.
func (s *ScanController) State() State[[]core.Signal] {
	return s.ctl.current()
}

// BacktestRunner issues a backtest request.
type BacktestRunner interface {
	RunBacktest(ctx context.Context, params core.BacktestParams) (*core.BacktestResult, error)
}

// BacktestController drives on-demand backtest runs.
type BacktestController struct {
	gw      BacktestRunner
	logger  *zap.Logger
	metrics *metrics.Registry
	ctl     controller[*core.BacktestResult]
}

// NewBacktestController creates a backtest controller. reg may be nil.
func NewBacktestController(gw BacktestRunner, logger *zap.Logger, reg *metrics.Registry) *BacktestController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktestController{gw: gw, logger: logger, metrics: reg}
}

// Submit validates params and, if valid, runs the simulation
// asynchronously. The ticker is upper-cased before submission.
func (b *BacktestController) Submit(ctx context.Context, params core.BacktestParams) error {
	normalized, err := ValidateBacktestParams(params)
	if err != nil {
		return err
	}

	seq := b.ctl.begin()
	go func() {
		result, err := b.gw.RunBacktest(ctx, normalized)
		applied := b.ctl.finish(seq, result, err)
		if !applied {
			b.logger.Debug("discarded superseded backtest response",
				zap.Uint64("seq", seq), zap.String("ticker", normalized.Ticker))
			return
		}
		if b.metrics != nil {
			if err != nil {
				b.metrics.RecordBacktest("error")
			} else {
				b.metrics.RecordBacktest("ok")
			}
		}
	}()
	return nil
}

// State returns the current backtest state.
func (b *BacktestController) State() State[*core.BacktestResult] {
	return b.ctl.current()
}
