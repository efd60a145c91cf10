// internal/api/handler/api/scan.go
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/api/response"
	"github.com/b3signals/b3dash/internal/core"
)

// ScanHandler submits on-demand scans and reports their state.
type ScanHandler struct {
	ctl *action.ScanController
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(ctl *action.ScanController) *ScanHandler {
	return &ScanHandler{ctl: ctl}
}

type scanRequest struct {
	Ticker string `json:"ticker"`
}

// Create kicks off a scan for the requested ticker.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.NewError(core.ErrValidation, "invalid request body"))
		return
	}

	// The scan outlives this request, so it must not inherit the
	// request context.
	if err := h.ctl.Submit(context.Background(), req.Ticker); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusAccepted, h.ctl.State())
}

// State returns the latest scan state.
func (h *ScanHandler) State(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.ctl.State())
}
