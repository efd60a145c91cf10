package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics (dashboard server side)
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Backend gateway metrics
	gatewayRequestsTotal   *prometheus.CounterVec
	gatewayRequestDuration *prometheus.HistogramVec
	signalsDropped         *prometheus.CounterVec

	// Poller and action metrics
	pollsTotal     *prometheus.CounterVec
	liveSignals    prometheus.Gauge
	scansTotal     *prometheus.CounterVec
	backtestsTotal *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3dash_gateway_requests_total",
			Help: "Total number of backend requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	r.gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "b3dash_gateway_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	r.signalsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3dash_signals_dropped_total",
			Help: "Signal records excluded because they failed normalization",
		},
		[]string{"operation"},
	)
	r.pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3dash_polls_total",
			Help: "Live feed poll attempts by result (ok, error, skipped)",
		},
		[]string{"result"},
	)
	r.liveSignals = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "b3dash_live_signals",
			Help: "Signals in the current live feed snapshot",
		},
	)
	r.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3dash_scans_total",
			Help: "On-demand scans by status",
		},
		[]string{"status"},
	)
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "b3dash_backtests_total",
			Help: "On-demand backtests by status",
		},
		[]string{"status"},
	)

	reg.MustRegister(r.gatewayRequestsTotal)
	reg.MustRegister(r.gatewayRequestDuration)
	reg.MustRegister(r.signalsDropped)
	reg.MustRegister(r.pollsTotal)
	reg.MustRegister(r.liveSignals)
	reg.MustRegister(r.scansTotal)
	reg.MustRegister(r.backtestsTotal)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordGatewayRequest records one backend round trip.
func (r *Registry) RecordGatewayRequest(operation, outcome string, duration float64) {
	r.gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	r.gatewayRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSignalsDropped records records excluded during normalization.
func (r *Registry) RecordSignalsDropped(operation string, count int) {
	if count > 0 {
		r.signalsDropped.WithLabelValues(operation).Add(float64(count))
	}
}

// RecordPoll records one live feed poll attempt.
func (r *Registry) RecordPoll(result string) {
	r.pollsTotal.WithLabelValues(result).Inc()
}

// SetLiveSignals sets the size of the current live snapshot.
func (r *Registry) SetLiveSignals(count int) {
	r.liveSignals.Set(float64(count))
}

// RecordScan records an on-demand scan completion.
func (r *Registry) RecordScan(status string) {
	r.scansTotal.WithLabelValues(status).Inc()
}

// RecordBacktest records an on-demand backtest completion.
func (r *Registry) RecordBacktest(status string) {
	r.backtestsTotal.WithLabelValues(status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
