package core

import "time"

// Signal is the canonical form of a trading opportunity produced by the
// backend scanner. Raw payloads vary across backend versions; the
// normalize package is the only producer of this type from wire data.
type Signal struct {
	Strategy     string  `json:"strategy"`
	Ticker       string  `json:"ticker"`
	OptionSymbol string  `json:"option_symbol,omitempty"`
	SpotPrice    float64 `json:"spot_price"`
	SignalType   string  `json:"signal_type"`
	Reason       string  `json:"reason"`

	// Recommendation may arrive under an alternate wire name
	// (recommended_action); normalization reconciles both into this
	// field. Empty means the backend sent neither.
	Recommendation string `json:"recommendation,omitempty"`

	// RiskLevel is opaque display data. Observed vocabularies differ
	// across producers (LOW/MEDIUM/HIGH/UNLIMITED vs Baixo/Médio/Alto),
	// so no closed set is assumed here.
	RiskLevel string `json:"risk_level"`

	ConfidenceScore *float64    `json:"confidence_score,omitempty"`
	RiskFlags       []string    `json:"risk_flags,omitempty"`
	Technicals      *Technicals `json:"technicals,omitempty"`
	Greeks          *Greeks     `json:"greeks,omitempty"`
	Legs            []Leg       `json:"legs,omitempty"`
	Timestamp       time.Time   `json:"timestamp"`
}

// Technicals holds optional analytic readouts attached to a signal.
type Technicals struct {
	RSI float64 `json:"rsi"`
	IV  float64 `json:"iv"`
}

// Greeks holds option sensitivity measures. Opaque numeric payload to
// this client.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// Leg is one constituent instrument of a multi-leg strategy position.
type Leg struct {
	Symbol string   `json:"symbol"`
	Strike float64  `json:"strike"`
	Type   string   `json:"type"`   // "call" or "put"
	Action string   `json:"action"` // "BUY" or "SELL"
	Delta  *float64 `json:"delta,omitempty"`
}

// StrategyDescriptor describes one active scanner strategy.
type StrategyDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RiskLevel   string `json:"risk_level"`
}

// Backtest day-range bounds as declared by the submission UI.
const (
	MinBacktestDays = 30
	MaxBacktestDays = 500
)

// BacktestParams is the request body for a backtest run.
type BacktestParams struct {
	Ticker         string  `json:"ticker"`
	StrategyName   string  `json:"strategy_name"`
	Days           int     `json:"days"`
	InitialCapital float64 `json:"initial_capital"`
}

// BacktestResult holds the metrics of a completed simulation.
type BacktestResult struct {
	TotalTrades    int           `json:"total_trades"`
	WinRate        float64       `json:"win_rate"` // 0-100
	TotalReturnPct float64       `json:"total_return_pct"`
	TotalProfit    float64       `json:"total_profit"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	ProfitFactor   float64       `json:"profit_factor"`
	EquityCurve    []float64     `json:"equity_curve"` // chronological
	TradesLog      []TradeRecord `json:"trades_log"`
}

// TradeRecord is one simulated trade. Dates stay as backend-native
// strings; a nil PnL means the trade is still open or not computed.
type TradeRecord struct {
	EntryDate  string   `json:"entry_date"`
	ExitDate   string   `json:"exit_date,omitempty"`
	SignalType string   `json:"signal_type"`
	OptionType string   `json:"option_type"`
	Strike     float64  `json:"strike"`
	EntryPrice float64  `json:"entry_price"`
	PnL        *float64 `json:"pnl,omitempty"`
}
