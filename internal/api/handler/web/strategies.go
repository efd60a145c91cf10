// internal/api/handler/web/strategies.go
package web

import (
	"net/http"

	"github.com/b3signals/b3dash/internal/view"
)

// StrategyRow is one rendered strategy catalog entry.
type StrategyRow struct {
	Name        string
	Description string
	RiskLevel   string
	RiskTone    view.Tone
}

// StrategiesData holds data for the strategies template
type StrategiesData struct {
	Title      string
	Strategies []StrategyRow
	Error      string
}

// Strategies renders the active strategy catalog page
func (h *Handler) Strategies(w http.ResponseWriter, r *http.Request) {
	data := StrategiesData{Title: "Strategies"}

	if h.catalog != nil {
		descriptors, err := h.catalog.ListStrategies(r.Context())
		if err != nil {
			data.Error = err.Error()
		}
		for _, d := range descriptors {
			data.Strategies = append(data.Strategies, StrategyRow{
				Name:        d.Name,
				Description: d.Description,
				RiskLevel:   d.RiskLevel,
				RiskTone:    view.RiskTone(d.RiskLevel),
			})
		}
	}

	h.render(w, "strategies.html", data)
}
