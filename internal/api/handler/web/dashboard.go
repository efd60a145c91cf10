// internal/api/handler/web/dashboard.go
package web

import (
	"net/http"

	"github.com/b3signals/b3dash/internal/view"
)

// DashboardData holds data for the dashboard template
type DashboardData struct {
	Title       string
	Cards       []view.SignalCard
	BuySignals  int
	SellSignals int
	UpdatedAt   string
	Fetching    bool
	FeedError   string
}

// Dashboard renders the live signal feed page
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{Title: "Dashboard"}

	if h.feed != nil {
		snap := h.feed.Snapshot()
		data.Cards = view.SignalCards(snap.Signals)
		data.Fetching = snap.Fetching
		data.FeedError = snap.Err
		if !snap.UpdatedAt.IsZero() {
			data.UpdatedAt = snap.UpdatedAt.Format("02/01/2006 15:04:05")
		}
		for _, card := range data.Cards {
			switch card.Direction {
			case view.DirectionBuy:
				data.BuySignals++
			case view.DirectionSell:
				data.SellSignals++
			}
		}
	}

	h.render(w, "dashboard.html", data)
}
