// internal/api/handler/api/strategies.go
package api

import (
	"context"
	"net/http"

	"github.com/b3signals/b3dash/internal/api/response"
	"github.com/b3signals/b3dash/internal/core"
)

// StrategyLister fetches strategy catalogs from the backend.
type StrategyLister interface {
	ListStrategies(ctx context.Context) ([]core.StrategyDescriptor, error)
	ListBacktestStrategyNames(ctx context.Context) ([]string, error)
}

// StrategiesHandler serves the active strategy catalog.
type StrategiesHandler struct {
	backend StrategyLister
}

// NewStrategiesHandler creates a new strategies handler.
func NewStrategiesHandler(backend StrategyLister) *StrategiesHandler {
	return &StrategiesHandler{backend: backend}
}

// List returns the strategies currently active on the backend.
func (h *StrategiesHandler) List(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.backend.ListStrategies(r.Context())
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"active_strategies": strategies,
		"count":             len(strategies),
	})
}
