// internal/api/handler/web/handler.go
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/poller"
)

//go:embed templates/*
var templateFS embed.FS

// FeedProvider exposes the live poller snapshot to the pages.
type FeedProvider interface {
	Snapshot() poller.Snapshot
}

// CatalogProvider fetches backend catalogs and history.
type CatalogProvider interface {
	ListStrategies(ctx context.Context) ([]core.StrategyDescriptor, error)
	ListBacktestStrategyNames(ctx context.Context) ([]string, error)
	FetchHistory(ctx context.Context, limit int) ([]core.Signal, error)
}

// ScanStateProvider exposes the latest scan state.
type ScanStateProvider interface {
	State() action.State[[]core.Signal]
}

// BacktestStateProvider exposes the latest backtest state.
type BacktestStateProvider interface {
	State() action.State[*core.BacktestResult]
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds separate template instances for each page.
	// Each instance contains layout.html + the specific page template.
	pageTemplates map[string]*template.Template
	feed          FeedProvider
	catalog       CatalogProvider
	scan          ScanStateProvider
	backtest      BacktestStateProvider
}

var pages = []string{"dashboard.html", "scanner.html", "strategies.html", "backtest.html", "history.html"}

// NewHandler creates a new web handler with templates loaded from the given
// directory. If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)

	for _, page := range pages {
		var tmpl *template.Template
		var err error

		if templatesDir != "" {
			layoutPath := filepath.Join(templatesDir, "layout.html")
			pagePath := filepath.Join(templatesDir, page)
			tmpl, err = template.ParseFiles(layoutPath, pagePath)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", page, err)
			}
		} else {
			subFS, err := fs.Sub(templateFS, "templates")
			if err != nil {
				return nil, fmt.Errorf("accessing embedded templates: %w", err)
			}
			tmpl, err = template.ParseFS(subFS, "layout.html", page)
			if err != nil {
				return nil, fmt.Errorf("parsing embedded template %s: %w", page, err)
			}
		}

		pageTemplates[page] = tmpl
	}

	return &Handler{pageTemplates: pageTemplates}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetFeedProvider sets the live feed provider.
func (h *Handler) SetFeedProvider(p FeedProvider) {
	h.feed = p
}

// SetCatalogProvider sets the backend catalog provider.
func (h *Handler) SetCatalogProvider(p CatalogProvider) {
	h.catalog = p
}

// SetScanProvider sets the scan state provider.
func (h *Handler) SetScanProvider(p ScanStateProvider) {
	h.scan = p
}

// SetBacktestProvider sets the backtest state provider.
func (h *Handler) SetBacktestProvider(p BacktestStateProvider) {
	h.backtest = p
}
