// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/b3signals/b3dash/internal/action"
	apihandler "github.com/b3signals/b3dash/internal/api/handler/api"
	"github.com/b3signals/b3dash/internal/api/handler/web"
	"github.com/b3signals/b3dash/internal/metrics"
)

// Server represents the dashboard HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	MetricsPath  string
}

// Dependencies bundles the components the routes are wired to.
type Dependencies struct {
	Feed     apihandler.FeedSource
	Backend  Backend
	Scan     *action.ScanController
	Backtest *action.BacktestController
	Metrics  *metrics.Registry
}

// Backend is the slice of the request gateway the server consumes.
type Backend interface {
	apihandler.HistoryFetcher
	apihandler.StrategyLister
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	mux := http.NewServeMux()

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(mux)
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	// Web UI routes
	webHandler, err := web.NewHandler(cfg.TemplatesDir)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	if deps.Feed != nil {
		webHandler.SetFeedProvider(deps.Feed)
	}
	if deps.Backend != nil {
		webHandler.SetCatalogProvider(deps.Backend)
	}
	if deps.Scan != nil {
		webHandler.SetScanProvider(deps.Scan)
	}
	if deps.Backtest != nil {
		webHandler.SetBacktestProvider(deps.Backtest)
	}

	s.mux.HandleFunc("/", webHandler.Dashboard)
	s.mux.HandleFunc("/scanner", webHandler.Scanner)
	s.mux.HandleFunc("/strategies", webHandler.Strategies)
	s.mux.HandleFunc("/backtest", webHandler.Backtest)
	s.mux.HandleFunc("/history", webHandler.History)

	// API routes
	signals := apihandler.NewSignalsHandler(deps.Feed, deps.Backend)
	s.mux.HandleFunc("/api/signals/live", signals.Live)
	s.mux.HandleFunc("/api/signals/refresh", signals.Refresh)
	s.mux.HandleFunc("/api/signals/history", signals.History)
	s.mux.HandleFunc("/api/signals/stream", signals.Stream)

	if deps.Scan != nil {
		scan := apihandler.NewScanHandler(deps.Scan)
		s.mux.HandleFunc("/api/scan", methodSplit(scan.Create, scan.State))
	}
	if deps.Backtest != nil {
		backtest := apihandler.NewBacktestHandler(deps.Backtest, deps.Backend)
		s.mux.HandleFunc("/api/backtest", methodSplit(backtest.Create, backtest.State))
		s.mux.HandleFunc("/api/backtest/strategies", backtest.Strategies)
	}

	strategies := apihandler.NewStrategiesHandler(deps.Backend)
	s.mux.HandleFunc("/api/strategies", strategies.List)

	s.mux.HandleFunc("/api/health", s.handleHealth)

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics.Registry,
			promhttp.HandlerOpts{}))
	}

	return nil
}

// methodSplit routes POST to create and everything else to state.
func methodSplit(create, state http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			create(w, r)
			return
		}
		state(w, r)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
