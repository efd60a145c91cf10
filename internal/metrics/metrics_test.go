package metrics

import (
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegistry_HTTPMetrics(t *testing.T) {
	reg := NewRegistry()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	// Should have go runtime metrics at minimum
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func hasMetric(t *testing.T, reg *Registry, name string) bool {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return true
		}
	}
	return false
}

func TestRegistry_RecordRequest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("GET", "/api/signals/live", 200, 0.05)

	if !hasMetric(t, reg, "http_requests_total") {
		t.Error("expected http_requests_total metric")
	}
}

func TestRegistry_RecordRequest_StatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordRequest("GET", "/test", tt.status, 0.01)

			mfs, err := reg.Gather()
			if err != nil {
				t.Fatalf("gather failed: %v", err)
			}

			found := false
			for _, mf := range mfs {
				if mf.GetName() == "http_requests_total" {
					for _, m := range mf.GetMetric() {
						for _, label := range m.GetLabel() {
							if label.GetName() == "status" && label.GetValue() == tt.expected {
								found = true
							}
						}
					}
				}
			}
			if !found {
				t.Errorf("expected status label %s for status code %d", tt.expected, tt.status)
			}
		})
	}
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()

	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_in_flight" {
			found = true
			for _, m := range mf.GetMetric() {
				if m.GetGauge().GetValue() != 1 {
					t.Errorf("expected in-flight gauge to be 1, got %v", m.GetGauge().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("expected http_requests_in_flight metric")
	}
}

func TestRegistry_GatewayMetrics(t *testing.T) {
	reg := NewRegistry()

	reg.RecordGatewayRequest("scan", "ok", 0.2)
	reg.RecordGatewayRequest("scan", "network_timeout", 15.0)

	if !hasMetric(t, reg, "b3dash_gateway_requests_total") {
		t.Error("expected b3dash_gateway_requests_total metric")
	}
	if !hasMetric(t, reg, "b3dash_gateway_request_duration_seconds") {
		t.Error("expected b3dash_gateway_request_duration_seconds metric")
	}
}

func TestRegistry_SignalsDropped_ZeroNotRecorded(t *testing.T) {
	reg := NewRegistry()

	reg.RecordSignalsDropped("live", 0)
	if hasMetric(t, reg, "b3dash_signals_dropped_total") {
		t.Error("zero drops must not create a series")
	}

	reg.RecordSignalsDropped("live", 3)
	if !hasMetric(t, reg, "b3dash_signals_dropped_total") {
		t.Error("expected b3dash_signals_dropped_total metric")
	}
}

func TestRegistry_PollAndActionMetrics(t *testing.T) {
	reg := NewRegistry()

	reg.RecordPoll("ok")
	reg.RecordPoll("skipped")
	reg.SetLiveSignals(7)
	reg.RecordScan("ok")
	reg.RecordBacktest("error")

	for _, name := range []string{
		"b3dash_polls_total",
		"b3dash_live_signals",
		"b3dash_scans_total",
		"b3dash_backtests_total",
	} {
		if !hasMetric(t, reg, name) {
			t.Errorf("expected %s metric", name)
		}
	}
}
