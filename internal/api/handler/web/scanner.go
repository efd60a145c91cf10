// internal/api/handler/web/scanner.go
package web

import (
	"net/http"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/view"
)

// ScannerData holds data for the scanner template
type ScannerData struct {
	Title   string
	Phase   action.Phase
	Error   string
	Cards   []view.SignalCard
	NoMatch bool
}

// Scanner renders the on-demand scan page
func (h *Handler) Scanner(w http.ResponseWriter, r *http.Request) {
	data := ScannerData{Title: "Scanner", Phase: action.PhaseIdle}

	if h.scan != nil {
		state := h.scan.State()
		data.Phase = state.Phase
		data.Error = state.Err
		if state.Phase == action.PhaseSucceeded {
			data.Cards = view.SignalCards(state.Result)
			data.NoMatch = len(state.Result) == 0
		}
	}

	h.render(w, "scanner.html", data)
}
