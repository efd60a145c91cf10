// internal/api/handler/web/history.go
package web

import (
	"net/http"
	"strconv"

	"github.com/b3signals/b3dash/internal/view"
)

// HistoryData holds data for the history template
type HistoryData struct {
	Title string
	Cards []view.SignalCard
	Limit int
	Error string
}

// History renders the past-signals page
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	data := HistoryData{Title: "History", Limit: 50}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			data.Limit = n
		}
	}

	if h.catalog != nil {
		signals, err := h.catalog.FetchHistory(r.Context(), data.Limit)
		if err != nil {
			data.Error = err.Error()
		}
		data.Cards = view.SignalCards(signals)
	}

	h.render(w, "history.html", data)
}
