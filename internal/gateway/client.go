// Package gateway is the single configured HTTP client for the
// analytics backend. It exposes the backend's operations as typed
// request/response pairs and maps every failure into the core error
// taxonomy. The gateway never retries; retry policy belongs to the
// poller and the action controllers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/metrics"
	"github.com/b3signals/b3dash/internal/normalize"
)

const (
	// DefaultBaseURL points at the co-located analytics service.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds every request so an unavailable backend
	// cannot hang the UI.
	DefaultTimeout = 15 * time.Second

	// DefaultHistoryLimit applies when the caller passes a
	// non-positive limit.
	DefaultHistoryLimit = 50

	maxBodyBytes = 8 << 20
)

// Config holds gateway settings. It is read once at construction; a
// built Client never mutates its configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the backend HTTP gateway. A single instance is shared
// read-only by all callers.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger
	metrics *metrics.Registry
}

// New creates a gateway client. reg may be nil when metrics are
// disabled.
func New(cfg Config, logger *zap.Logger, reg *metrics.Registry) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		logger:  logger,
		metrics: reg,
	}
}

// scanEnvelope is the POST /signals/scan/{ticker} response wrapper.
type scanEnvelope struct {
	Message      string            `json:"message"`
	SignalsFound int               `json:"signals_found"`
	Results      []json.RawMessage `json:"results"`
}

// Scan triggers a strategy scan for one ticker. An empty result is a
// valid, non-error outcome ("no opportunities found"). Records that
// fail normalization are excluded from the returned list.
func (c *Client) Scan(ctx context.Context, ticker string) ([]core.Signal, error) {
	path := "/signals/scan/" + url.PathEscape(ticker)
	payload, err := c.do(ctx, "scan", http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	var env scanEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	return c.keepWellFormed("scan", env.Results), nil
}

// strategiesEnvelope is the GET /signals/strategies response wrapper.
type strategiesEnvelope struct {
	ActiveStrategies []core.StrategyDescriptor `json:"active_strategies"`
}

// ListStrategies returns the scanner's active strategy descriptors.
func (c *Client) ListStrategies(ctx context.Context) ([]core.StrategyDescriptor, error) {
	payload, err := c.do(ctx, "list_strategies", http.MethodGet, "/signals/strategies", nil)
	if err != nil {
		return nil, err
	}

	var env strategiesEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	return env.ActiveStrategies, nil
}

// ListBacktestStrategyNames returns the names accepted by the backtest
// runner. This is a distinct endpoint with a distinct shape (a bare
// string array) and must not be conflated with ListStrategies.
func (c *Client) ListBacktestStrategyNames(ctx context.Context) ([]string, error) {
	payload, err := c.do(ctx, "list_backtest_strategies", http.MethodGet, "/backtest/strategies", nil)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	return names, nil
}

// backtestEnvelope is the POST /backtest/run response wrapper.
type backtestEnvelope struct {
	Message    string          `json:"message"`
	Parameters json.RawMessage `json:"parameters"`
	Metrics    json.RawMessage `json:"metrics"`
}

// RunBacktest submits a simulation and returns its metrics.
func (c *Client) RunBacktest(ctx context.Context, params core.BacktestParams) (*core.BacktestResult, error) {
	payload, err := c.do(ctx, "run_backtest", http.MethodPost, "/backtest/run", params)
	if err != nil {
		return nil, err
	}

	var env backtestEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	if len(env.Metrics) == 0 {
		return nil, core.NewError(core.ErrMalformedResponse, "backtest response missing metrics")
	}

	var result core.BacktestResult
	if err := json.Unmarshal(env.Metrics, &result); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	return &result, nil
}

// FetchHistory returns past generated signals, newest first. A
// non-positive limit falls back to DefaultHistoryLimit.
func (c *Client) FetchHistory(ctx context.Context, limit int) ([]core.Signal, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	path := "/signals/history?limit=" + strconv.Itoa(limit)
	payload, err := c.do(ctx, "fetch_history", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	return c.keepWellFormed("fetch_history", raws), nil
}

// liveEnvelope is the GET /signals response wrapper.
type liveEnvelope struct {
	Signals []json.RawMessage `json:"signals"`
}

// FetchLive returns the current live signal feed filtered by minimum
// confidence.
func (c *Client) FetchLive(ctx context.Context, minConfidence float64) ([]core.Signal, error) {
	path := "/signals?min_confidence=" + strconv.FormatFloat(minConfidence, 'f', -1, 64)
	payload, err := c.do(ctx, "fetch_live", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var env liveEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, core.WrapError(core.ErrMalformedResponse, err)
	}
	return c.keepWellFormed("fetch_live", env.Signals), nil
}

// keepWellFormed normalizes a list of raw records, logging and counting
// the ones that are excluded.
func (c *Client) keepWellFormed(operation string, raws []json.RawMessage) []core.Signal {
	signals, dropped := normalize.Signals(raws)
	if dropped > 0 {
		c.logger.Warn("excluded malformed signal records",
			zap.String("operation", operation),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(signals)),
		)
		if c.metrics != nil {
			c.metrics.RecordSignalsDropped(operation, dropped)
		}
	}
	return signals
}

// do performs one round trip and maps failures into the error
// taxonomy. It returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, core.WrapError(core.ErrValidation, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, core.WrapError(core.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		mapped := transportError(err)
		c.observe(operation, mapped, duration)
		c.logger.Warn("backend request failed",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, mapped
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		mapped := core.WrapError(core.ErrNetwork, err)
		c.observe(operation, mapped, duration)
		return nil, mapped
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		mapped := serverError(resp.StatusCode, payload)
		c.observe(operation, mapped, duration)
		c.logger.Warn("backend rejected request",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, mapped
	}

	c.observe(operation, nil, duration)
	c.logger.Debug("backend request completed",
		zap.String("operation", operation),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
	)
	return payload, nil
}

func (c *Client) observe(operation string, err error, duration float64) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		outcome = coreErr.Code
	} else if err != nil {
		outcome = "error"
	}
	c.metrics.RecordGatewayRequest(operation, outcome, duration)
}

// transportError distinguishes timeouts from other transport failures.
func transportError(err error) *core.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.WrapError(core.ErrNetworkTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.WrapError(core.ErrNetworkTimeout, err)
	}
	return core.WrapError(core.ErrNetwork, err)
}

// errorBody matches the backend's structured error payload. FastAPI
// puts detail in "detail"; some handlers use "message".
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// serverError builds a SERVER error, preferring the server-supplied
// detail message over the bare status code.
func serverError(status int, payload []byte) *core.Error {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if len(body.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
				return core.NewError(core.ErrServer, detail)
			}
		}
		if body.Message != "" {
			return core.NewError(core.ErrServer, body.Message)
		}
	}
	return core.NewError(core.ErrServer, fmt.Sprintf("backend returned status %d", status))
}
