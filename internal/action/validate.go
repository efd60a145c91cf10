package action

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/b3signals/b3dash/internal/core"
)

// validTicker matches B3-style symbols like PETR4, VALE3, BOVA11.
var validTicker = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// NormalizeTicker trims, upper-cases and validates a ticker symbol.
func NormalizeTicker(ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))
	if normalized == "" {
		return "", core.NewError(core.ErrValidation, "ticker must not be empty")
	}
	if !validTicker.MatchString(normalized) {
		return "", core.NewError(core.ErrValidation, fmt.Sprintf("invalid ticker %q", normalized))
	}
	return normalized, nil
}

// ValidateBacktestParams checks params against the UI-declared bounds
// and returns a normalized copy (ticker upper-cased). Violations are
// VALIDATION errors and never reach the network.
func ValidateBacktestParams(params core.BacktestParams) (core.BacktestParams, error) {
	ticker, err := NormalizeTicker(params.Ticker)
	if err != nil {
		return core.BacktestParams{}, err
	}
	params.Ticker = ticker

	if strings.TrimSpace(params.StrategyName) == "" {
		return core.BacktestParams{}, core.NewError(core.ErrValidation, "strategy name is required")
	}
	if params.Days < core.MinBacktestDays || params.Days > core.MaxBacktestDays {
		return core.BacktestParams{}, core.NewError(core.ErrValidation,
			fmt.Sprintf("days must be between %d and %d, got %d", core.MinBacktestDays, core.MaxBacktestDays, params.Days))
	}
	if params.InitialCapital <= 0 || math.IsNaN(params.InitialCapital) || math.IsInf(params.InitialCapital, 0) {
		return core.BacktestParams{}, core.NewError(core.ErrValidation,
			fmt.Sprintf("initial capital must be a positive finite number, got %v", params.InitialCapital))
	}
	return params, nil
}
