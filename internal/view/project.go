// Package view derives renderable view-models from canonical records.
// Everything here is pure and stateless; controllers own the data,
// templates own the markup. The mapping from loose backend vocabulary
// (signal_type substrings, mixed-language risk levels) to display
// tones lives here and only here.
package view

import (
	"fmt"
	"strings"

	"github.com/b3signals/b3dash/internal/core"
)

// Direction classifies a signal for color-coding.
type Direction string

const (
	DirectionBuy     Direction = "buy"
	DirectionSell    Direction = "sell"
	DirectionNeutral Direction = "neutral"
)

// SignalDirection derives a direction from the free-form signal_type.
// The backend emits values like "SELL CALL" and "LONG STRADDLE"; only
// the substring matters, no closed enum is assumed.
func SignalDirection(signalType string) Direction {
	upper := strings.ToUpper(signalType)
	switch {
	case strings.Contains(upper, "BUY"), strings.Contains(upper, "LONG"):
		return DirectionBuy
	case strings.Contains(upper, "SELL"), strings.Contains(upper, "SHORT"):
		return DirectionSell
	default:
		return DirectionNeutral
	}
}

// Tone is a display color bucket.
type Tone string

const (
	ToneGood     Tone = "good"
	ToneWarn     Tone = "warn"
	ToneDanger   Tone = "danger"
	ToneCritical Tone = "critical"
	ToneNeutral  Tone = "neutral"
)

// riskTones maps observed risk_level vocabularies to tones. Producers
// disagree on language (LOW/MEDIUM/HIGH/UNLIMITED vs Baixo/Médio/Alto);
// the record keeps the raw value, unknown values render neutral.
var riskTones = map[string]Tone{
	"LOW":       ToneGood,
	"MEDIUM":    ToneWarn,
	"HIGH":      ToneDanger,
	"UNLIMITED": ToneCritical,
	"Low":       ToneGood,
	"Medium":    ToneWarn,
	"High":      ToneDanger,
	"Baixo":     ToneGood,
	"Médio":     ToneWarn,
	"Alto":      ToneDanger,
}

// RiskTone maps a risk level to a display tone.
func RiskTone(level string) Tone {
	if tone, ok := riskTones[level]; ok {
		return tone
	}
	return ToneNeutral
}

// ConfidenceTone buckets a 0-100 confidence score.
func ConfidenceTone(score float64) Tone {
	switch {
	case score >= 80:
		return ToneGood
	case score >= 60:
		return ToneWarn
	default:
		return ToneNeutral
	}
}

// LegRow is one rendered strategy leg.
type LegRow struct {
	Symbol    string
	Strike    string
	Type      string
	Action    string
	Direction Direction
	Delta     string
}

// SignalCard is the rendered form of one signal.
type SignalCard struct {
	Title          string // option symbol, falling back to the ticker
	Ticker         string
	Strategy       string
	SpotPrice      string
	SignalType     string
	Direction      Direction
	Reason         string
	Recommendation string
	RiskLevel      string
	RiskTone       Tone
	Confidence     string
	ConfidenceTone Tone
	RiskFlags      []string
	RSI            string
	IV             string
	Legs           []LegRow
	Time           string
}

// NewSignalCard projects a canonical signal into its card view-model.
func NewSignalCard(sig core.Signal) SignalCard {
	card := SignalCard{
		Title:          sig.OptionSymbol,
		Ticker:         sig.Ticker,
		Strategy:       sig.Strategy,
		SpotPrice:      money(sig.SpotPrice),
		SignalType:     sig.SignalType,
		Direction:      SignalDirection(sig.SignalType),
		Reason:         sig.Reason,
		Recommendation: sig.Recommendation,
		RiskLevel:      sig.RiskLevel,
		RiskTone:       RiskTone(sig.RiskLevel),
		RiskFlags:      sig.RiskFlags,
		Time:           sig.Timestamp.Format("02/01/2006 15:04"),
	}
	if card.Title == "" {
		card.Title = sig.Ticker
	}
	if sig.ConfidenceScore != nil {
		card.Confidence = fmt.Sprintf("%.0f/100", *sig.ConfidenceScore)
		card.ConfidenceTone = ConfidenceTone(*sig.ConfidenceScore)
	}
	if sig.Technicals != nil {
		card.RSI = fmt.Sprintf("%.1f", sig.Technicals.RSI)
		card.IV = fmt.Sprintf("%.0f%%", sig.Technicals.IV*100)
	}
	for _, leg := range sig.Legs {
		row := LegRow{
			Symbol:    leg.Symbol,
			Strike:    fmt.Sprintf("%.2f", leg.Strike),
			Type:      leg.Type,
			Action:    leg.Action,
			Direction: SignalDirection(leg.Action),
		}
		if leg.Delta != nil {
			row.Delta = fmt.Sprintf("%.2f", *leg.Delta)
		}
		card.Legs = append(card.Legs, row)
	}
	return card
}

// SignalCards projects a slice of signals.
func SignalCards(signals []core.Signal) []SignalCard {
	cards := make([]SignalCard, 0, len(signals))
	for _, sig := range signals {
		cards = append(cards, NewSignalCard(sig))
	}
	return cards
}

// MetricCard is one backtest summary figure.
type MetricCard struct {
	Label string
	Value string
	Tone  Tone
}

// BacktestSummary projects result metrics into summary cards.
func BacktestSummary(result *core.BacktestResult) []MetricCard {
	if result == nil {
		return nil
	}
	returnTone := ToneGood
	if result.TotalReturnPct < 0 {
		returnTone = ToneDanger
	}
	winTone := ToneNeutral
	switch {
	case result.WinRate >= 60:
		winTone = ToneGood
	case result.WinRate < 40:
		winTone = ToneDanger
	}
	return []MetricCard{
		{Label: "Total Trades", Value: fmt.Sprintf("%d", result.TotalTrades), Tone: ToneNeutral},
		{Label: "Win Rate", Value: fmt.Sprintf("%.1f%%", result.WinRate), Tone: winTone},
		{Label: "Total Return", Value: fmt.Sprintf("%.1f%%", result.TotalReturnPct), Tone: returnTone},
		{Label: "Total Profit", Value: money(result.TotalProfit), Tone: returnTone},
		{Label: "Max Drawdown", Value: fmt.Sprintf("%.1f%%", result.MaxDrawdown), Tone: ToneDanger},
		{Label: "Profit Factor", Value: fmt.Sprintf("%.2f", result.ProfitFactor), Tone: ToneNeutral},
	}
}

// TradeRow is one rendered backtest trade.
type TradeRow struct {
	Date       string
	SignalType string
	Direction  Direction
	OptionType string
	Strike     string
	EntryPrice string
	PnL        string
	PnLTone    Tone
}

// TradeRows projects the trades log. Open trades (nil pnl) render a
// dash instead of a number.
func TradeRows(trades []core.TradeRecord) []TradeRow {
	rows := make([]TradeRow, 0, len(trades))
	for _, trade := range trades {
		row := TradeRow{
			Date:       trade.EntryDate,
			SignalType: trade.SignalType,
			Direction:  SignalDirection(trade.SignalType),
			OptionType: trade.OptionType,
			Strike:     fmt.Sprintf("%.2f", trade.Strike),
			EntryPrice: money(trade.EntryPrice),
			PnL:        "-",
			PnLTone:    ToneNeutral,
		}
		if trade.PnL != nil {
			row.PnL = money(*trade.PnL)
			if *trade.PnL >= 0 {
				row.PnLTone = ToneGood
			} else {
				row.PnLTone = ToneDanger
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// maxEquityPoints bounds chart payload size for long simulations.
const maxEquityPoints = 250

// EquityPoint is one chart sample.
type EquityPoint struct {
	Index int     `json:"i"`
	Value float64 `json:"v"`
}

// EquityPoints samples the chronological equity curve down to at most
// maxEquityPoints, always keeping the first and last values.
func EquityPoints(curve []float64) []EquityPoint {
	if len(curve) == 0 {
		return nil
	}
	step := 1
	if len(curve) > maxEquityPoints {
		step = (len(curve) + maxEquityPoints - 1) / maxEquityPoints
	}
	points := make([]EquityPoint, 0, maxEquityPoints+1)
	for i := 0; i < len(curve); i += step {
		points = append(points, EquityPoint{Index: i, Value: curve[i]})
	}
	last := len(curve) - 1
	if points[len(points)-1].Index != last {
		points = append(points, EquityPoint{Index: last, Value: curve[last]})
	}
	return points
}

func money(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}
