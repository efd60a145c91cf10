package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b3signals/b3dash/internal/core"
)

type scanCall struct {
	ticker  string
	signals chan []core.Signal
	err     chan error
}

type stubScanner struct {
	mu    sync.Mutex
	calls []*scanCall
}

func (s *stubScanner) Scan(ctx context.Context, ticker string) ([]core.Signal, error) {
	call := &scanCall{
		ticker:  ticker,
		signals: make(chan []core.Signal, 1),
		err:     make(chan error, 1),
	}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	select {
	case signals := <-call.signals:
		return signals, nil
	case err := <-call.err:
		return nil, err
	}
}

func (s *stubScanner) call(i int) *scanCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.calls) {
		return nil
	}
	return s.calls[i]
}

func (s *stubScanner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
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

func TestScanController_SupersededResponseDiscarded(t *testing.T) {
	gw := &stubScanner{}
	ctl := NewScanController(gw, nil, nil)

	// Request A, then B before A resolves.
	require.NoError(t, ctl.Submit(context.Background(), "PETR4"))
	waitFor(t, "call A", func() bool { return gw.callCount() == 1 })
	require.NoError(t, ctl.Submit(context.Background(), "VALE3"))
	waitFor(t, "call B", func() bool { return gw.callCount() == 2 })

	// B resolves first with its own result.
	gw.call(1).signals <- []core.Signal{{Ticker: "VALE3", Strategy: "b"}}
	waitFor(t, "B applied", func() bool { return ctl.State().Phase == PhaseSucceeded })

	// A's late response arrives afterwards and must be discarded.
	gw.call(0).signals <- []core.Signal{{Ticker: "PETR4", Strategy: "a"}}
	time.Sleep(50 * time.Millisecond)

	state := ctl.State()
	assert.Equal(t, PhaseSucceeded, state.Phase)
	require.Len(t, state.Result, 1)
	assert.Equal(t, "VALE3", state.Result[0].Ticker)
}

func TestScanController_SupersededFailureDiscarded(t *testing.T) {
	gw := &stubScanner{}
	ctl := NewScanController(gw, nil, nil)

	require.NoError(t, ctl.Submit(context.Background(), "PETR4"))
	waitFor(t, "call A", func() bool { return gw.callCount() == 1 })
	require.NoError(t, ctl.Submit(context.Background(), "VALE3"))
	waitFor(t, "call B", func() bool { return gw.callCount() == 2 })

	gw.call(1).signals <- []core.Signal{{Ticker: "VALE3"}}
	waitFor(t, "B applied", func() bool { return ctl.State().Phase == PhaseSucceeded })

	// A fails late; the failure must not overwrite B's success.
	gw.call(0).err <- core.WrapError(core.ErrNetwork, fmt.Errorf("refused"))
	time.Sleep(50 * time.Millisecond)

	state := ctl.State()
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Empty(t, state.Err)
}

func TestScanController_ValidationShortCircuits(t *testing.T) {
	gw := &stubScanner{}
	ctl := NewScanController(gw, nil, nil)

	err := ctl.Submit(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Equal(t, 0, gw.callCount(), "validation failure must not reach the network")
	assert.Equal(t, PhaseIdle, ctl.State().Phase, "state must be untouched")
}

func TestScanController_TickerNormalizedUpper(t *testing.T) {
	gw := &stubScanner{}
	ctl := NewScanController(gw, nil, nil)

	require.NoError(t, ctl.Submit(context.Background(), " petr4 "))
	waitFor(t, "call", func() bool { return gw.callCount() == 1 })
	assert.Equal(t, "PETR4", gw.call(0).ticker)
	gw.call(0).signals <- nil
}

func TestScanController_FailureClearsPreviousResult(t *testing.T) {
	gw := &stubScanner{}
	ctl := NewScanController(gw, nil, nil)

	require.NoError(t, ctl.Submit(context.Background(), "PETR4"))
	waitFor(t, "call 1", func() bool { return gw.callCount() == 1 })
	gw.call(0).signals <- []core.Signal{{Ticker: "PETR4"}}
	waitFor(t, "success", func() bool { return ctl.State().Phase == PhaseSucceeded })

	require.NoError(t, ctl.Submit(context.Background(), "PETR4"))
	waitFor(t, "call 2", func() bool { return gw.callCount() == 2 })
	gw.call(1).err <- core.NewError(core.ErrServer, "scanner unavailable")
	waitFor(t, "failure", func() bool { return ctl.State().Phase == PhaseFailed })

	state := ctl.State()
	assert.Equal(t, "scanner unavailable", state.Err)
	assert.Nil(t, state.Result, "stale results must not survive a failed resubmission")
}

func TestScanController_EmptyScanIsSuccess(t *testing.T) {
	gw := &stubScanner{}
	ctl := NewScanController(gw, nil, nil)

	require.NoError(t, ctl.Submit(context.Background(), "PETR4"))
	waitFor(t, "call", func() bool { return gw.callCount() == 1 })
	gw.call(0).signals <- []core.Signal{}
	waitFor(t, "settled", func() bool { return ctl.State().Phase == PhaseSucceeded })

	state := ctl.State()
	assert.Empty(t, state.Err)
	assert.Len(t, state.Result, 0)
}

type stubRunner struct {
	mu     sync.Mutex
	params []core.BacktestParams
	result *core.BacktestResult
	err    error
}

func (s *stubRunner) RunBacktest(ctx context.Context, params core.BacktestParams) (*core.BacktestResult, error) {
	s.mu.Lock()
	s.params = append(s.params, params)
	s.mu.Unlock()
	return s.result, s.err
}

func (s *stubRunner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.params)
}

func TestBacktestController_ValidationBounds(t *testing.T) {
	tests := []struct {
		name   string
		params core.BacktestParams
	}{
		{"days above bound", core.BacktestParams{Ticker: "PETR4", StrategyName: "Covered Call", Days: 5000, InitialCapital: 10000}},
		{"days below bound", core.BacktestParams{Ticker: "PETR4", StrategyName: "Covered Call", Days: 10, InitialCapital: 10000}},
		{"zero capital", core.BacktestParams{Ticker: "PETR4", StrategyName: "Covered Call", Days: 252, InitialCapital: 0}},
		{"negative capital", core.BacktestParams{Ticker: "PETR4", StrategyName: "Covered Call", Days: 252, InitialCapital: -5}},
		{"missing strategy", core.BacktestParams{Ticker: "PETR4", Days: 252, InitialCapital: 10000}},
		{"empty ticker", core.BacktestParams{StrategyName: "Covered Call", Days: 252, InitialCapital: 10000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &stubRunner{}
			ctl := NewBacktestController(gw, nil, nil)

			err := ctl.Submit(context.Background(), tc.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrValidation))
			assert.Equal(t, 0, gw.callCount(), "no network call on validation failure")
		})
	}
}

func TestBacktestController_SuccessStoresResult(t *testing.T) {
	gw := &stubRunner{result: &core.BacktestResult{TotalTrades: 7, WinRate: 57.1, EquityCurve: []float64{10000, 10900}}}
	ctl := NewBacktestController(gw, nil, nil)

	err := ctl.Submit(context.Background(), core.BacktestParams{
		Ticker: "petr4", StrategyName: "Covered Call", Days: 252, InitialCapital: 10000,
	})
	require.NoError(t, err)
	waitFor(t, "result", func() bool { return ctl.State().Phase == PhaseSucceeded })

	state := ctl.State()
	require.NotNil(t, state.Result)
	assert.Equal(t, 7, state.Result.TotalTrades)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Equal(t, "PETR4", gw.params[0].Ticker, "ticker upper-cased before submission")
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"PETR4", "PETR4", false},
		{"vale3", "VALE3", false},
		{"  bova11 ", "BOVA11", false},
		{"", "", true},
		{"   ", "", true},
		{"PETR 4", "", true},
		{"WAY-TOO-LONG-SYMBOL", "", true},
	}

	for _, tc := range tests {
		got, err := NormalizeTicker(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got)
	}
}
