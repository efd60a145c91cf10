// internal/api/handler/api/signals.go
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/b3signals/b3dash/internal/api/response"
	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/poller"
)

// FeedSource exposes the live poller to the handlers.
type FeedSource interface {
	Snapshot() poller.Snapshot
	Refresh() bool
}

// HistoryFetcher fetches past signals from the backend.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, limit int) ([]core.Signal, error)
}

// SignalsHandler serves the live feed snapshot and signal history.
type SignalsHandler struct {
	feed    FeedSource
	backend HistoryFetcher
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(feed FeedSource, backend HistoryFetcher) *SignalsHandler {
	return &SignalsHandler{feed: feed, backend: backend}
}

// Live returns the current poller snapshot.
func (h *SignalsHandler) Live(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.feed.Snapshot())
}

// Refresh triggers an immediate poll. Dropped (not queued) when a
// fetch is already in flight.
func (h *SignalsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	started := h.feed.Refresh()
	response.JSON(w, http.StatusAccepted, map[string]any{"started": started})
}

// History proxies the backend's signal history.
func (h *SignalsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	signals, err := h.backend.FetchHistory(r.Context(), limit)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"signals": signals,
		"count":   len(signals),
	})
}
