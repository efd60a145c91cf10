// internal/api/handler/web/backtest.go
package web

import (
	"net/http"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/view"
)

// BacktestData holds data for the backtest template
type BacktestData struct {
	Title        string
	Strategies   []string
	CatalogError string
	MinDays      int
	MaxDays      int
	Phase        action.Phase
	Error        string
	Summary      []view.MetricCard
	Trades       []view.TradeRow
	Equity       []view.EquityPoint
}

// Backtest renders the backtest submission and results page
func (h *Handler) Backtest(w http.ResponseWriter, r *http.Request) {
	data := BacktestData{
		Title:   "Backtest",
		MinDays: core.MinBacktestDays,
		MaxDays: core.MaxBacktestDays,
		Phase:   action.PhaseIdle,
	}

	if h.catalog != nil {
		names, err := h.catalog.ListBacktestStrategyNames(r.Context())
		if err != nil {
			data.CatalogError = err.Error()
		}
		data.Strategies = names
	}

	if h.backtest != nil {
		state := h.backtest.State()
		data.Phase = state.Phase
		data.Error = state.Err
		if state.Phase == action.PhaseSucceeded && state.Result != nil {
			data.Summary = view.BacktestSummary(state.Result)
			data.Trades = view.TradeRows(state.Result.TradesLog)
			data.Equity = view.EquityPoints(state.Result.EquityCurve)
		}
	}

	h.render(w, "backtest.html", data)
}
