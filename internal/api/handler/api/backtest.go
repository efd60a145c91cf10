// internal/api/handler/api/backtest.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/api/response"
	"github.com/b3signals/b3dash/internal/core"
)

// BacktestHandler submits backtest runs and reports their state.
type BacktestHandler struct {
	ctl     *action.BacktestController
	backend StrategyLister
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(ctl *action.BacktestController, backend StrategyLister) *BacktestHandler {
	return &BacktestHandler{ctl: ctl, backend: backend}
}

// Create kicks off a backtest with the submitted parameters.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var params core.BacktestParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.NewError(core.ErrValidation, "invalid request body"))
		return
	}

	// The run outlives this request, so it must not inherit the
	// request context.
	if err := h.ctl.Submit(context.Background(), params); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusAccepted, h.ctl.State())
}

// State returns the latest backtest state.
func (h *BacktestHandler) State(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.ctl.State())
}

// Strategies returns the strategy names available for backtesting.
func (h *BacktestHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	names, err := h.backend.ListBacktestStrategyNames(r.Context())
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"strategies": names})
}
