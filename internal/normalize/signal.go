// Package normalize maps heterogeneous backend JSON payloads into the
// canonical core.Signal record. The backend's signal shape has drifted
// across versions (renamed fields, optional analytics blocks); this
// package is the single place where that drift is reconciled.
//
// Required fields are strictly typed: a missing or mistyped required
// field fails the whole record with MALFORMED_RESPONSE, never a
// defaulted value. Optional nested objects are all-or-nothing: a
// partially malformed technicals/greeks/legs block is dropped whole
// rather than presented as partial analytics.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/b3signals/b3dash/internal/core"
)

// recommendationSources is the ordered list of wire fields consulted
// for the canonical Recommendation value. Earlier names win; nothing is
// fabricated when all are absent.
var recommendationSources = []string{"recommendation", "recommended_action"}

// timestampLayouts are accepted in order. The backend emits naive
// ISO-8601 datetimes; other producers emit RFC3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Signal normalizes one raw JSON object into a canonical record.
// Normalization is a pure function of its input: the same bytes always
// yield an equal record.
func Signal(raw []byte) (core.Signal, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return core.Signal{}, core.WrapError(core.ErrMalformedResponse, err)
	}
	return fromObject(obj)
}

// Signals normalizes a list of raw objects, excluding entries that fail
// normalization. It returns the kept records and the dropped count; a
// fully empty input is a valid, non-error result.
func Signals(raws []json.RawMessage) ([]core.Signal, int) {
	out := make([]core.Signal, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		sig, err := Signal(raw)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, sig)
	}
	return out, dropped
}

func fromObject(obj map[string]any) (core.Signal, error) {
	var sig core.Signal
	var err error

	if sig.Strategy, err = reqString(obj, "strategy"); err != nil {
		return core.Signal{}, err
	}
	if sig.Ticker, err = reqString(obj, "ticker"); err != nil {
		return core.Signal{}, err
	}
	if sig.SignalType, err = reqString(obj, "signal_type"); err != nil {
		return core.Signal{}, err
	}
	if sig.Reason, err = reqString(obj, "reason"); err != nil {
		return core.Signal{}, err
	}
	if sig.RiskLevel, err = reqString(obj, "risk_level"); err != nil {
		return core.Signal{}, err
	}

	if sig.SpotPrice, err = reqNumber(obj, "spot_price"); err != nil {
		return core.Signal{}, err
	}
	if sig.SpotPrice < 0 {
		return core.Signal{}, malformedf("field %q: must be non-negative, got %v", "spot_price", sig.SpotPrice)
	}

	ts, err := reqString(obj, "timestamp")
	if err != nil {
		return core.Signal{}, err
	}
	if sig.Timestamp, err = parseTimestamp(ts); err != nil {
		return core.Signal{}, err
	}

	// Optional scalars. Strings degrade to unset when absent; numbers
	// are strict even when optional (a string in a numeric slot is an
	// error, not a zero).
	sig.OptionSymbol, _ = optString(obj, "option_symbol")
	sig.Recommendation, _ = optString(obj, recommendationSources...)
	if sig.ConfidenceScore, err = optNumber(obj, "confidence_score"); err != nil {
		return core.Signal{}, err
	}

	// Optional nested blocks: pass through only if internally
	// well-typed, otherwise treated as absent.
	sig.RiskFlags = parseRiskFlags(obj["risk_flags"])
	sig.Technicals = parseTechnicals(obj["technicals"])
	sig.Greeks = parseGreeks(obj["greeks"])
	sig.Legs = parseLegs(obj["legs"])

	return sig, nil
}

func malformedf(format string, args ...any) *core.Error {
	return core.NewError(core.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

func reqString(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", malformedf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", malformedf("field %q: expected string, got %T", key, v)
	}
	if s == "" {
		return "", malformedf("field %q: must not be empty", key)
	}
	return s, nil
}

func reqNumber(obj map[string]any, key string) (float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, malformedf("missing required field %q", key)
	}
	n, ok := v.(float64)
	if !ok {
		return 0, malformedf("field %q: expected number, got %T", key, v)
	}
	return n, nil
}

// optString consults candidate keys in order and returns the first
// present, well-typed value. A mistyped optional string is treated as
// absent; strictness is reserved for numeric slots.
func optString(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func optNumber(obj map[string]any, key string) (*float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, ok := v.(float64)
	if !ok {
		return nil, malformedf("field %q: expected number, got %T", key, v)
	}
	return &n, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, malformedf("field %q: unparseable datetime %q", "timestamp", s)
}

func parseRiskFlags(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	flags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		flags = append(flags, s)
	}
	return flags
}

func parseTechnicals(v any) *core.Technicals {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	rsi, ok := finiteNumber(obj["rsi"])
	if !ok {
		return nil
	}
	iv, ok := finiteNumber(obj["iv"])
	if !ok {
		return nil
	}
	return &core.Technicals{RSI: rsi, IV: iv}
}

func parseGreeks(v any) *core.Greeks {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	g := &core.Greeks{}
	for key, dst := range map[string]*float64{
		"delta": &g.Delta,
		"gamma": &g.Gamma,
		"theta": &g.Theta,
		"vega":  &g.Vega,
		"rho":   &g.Rho,
	} {
		n, ok := finiteNumber(obj[key])
		if !ok {
			return nil
		}
		*dst = n
	}
	return g
}

func parseLegs(v any) []core.Leg {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	// Empty list is a valid single-leg signal.
	legs := make([]core.Leg, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		var leg core.Leg
		if leg.Symbol, ok = obj["symbol"].(string); !ok {
			return nil
		}
		if leg.Strike, ok = finiteNumber(obj["strike"]); !ok {
			return nil
		}
		if leg.Type, ok = obj["type"].(string); !ok {
			return nil
		}
		if leg.Action, ok = obj["action"].(string); !ok {
			return nil
		}
		if dv, present := obj["delta"]; present && dv != nil {
			d, ok := finiteNumber(dv)
			if !ok {
				return nil
			}
			leg.Delta = &d
		}
		legs = append(legs, leg)
	}
	return legs
}

func finiteNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
