package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/core"
	"github.com/b3signals/b3dash/internal/gateway"
	"github.com/b3signals/b3dash/internal/logger"
	"github.com/b3signals/b3dash/internal/view"
)

var (
	backtestBackendURL string
	backtestTicker     string
	backtestDays       int
	backtestCapital    float64
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a backtest on a strategy",
	Long:  "Run a strategy simulation over historical data and print performance metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestBackendURL, "backend", gateway.DefaultBaseURL, "backend base URL")
	backtestCmd.Flags().StringVar(&backtestTicker, "ticker", "", "Ticker to backtest (required)")
	backtestCmd.Flags().IntVar(&backtestDays, "days", 252, "Trading days to simulate")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 10000, "Initial capital")

	backtestCmd.MarkFlagRequired("ticker")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	params, err := action.ValidateBacktestParams(core.BacktestParams{
		Ticker:         backtestTicker,
		StrategyName:   args[0],
		Days:           backtestDays,
		InitialCapital: backtestCapital,
	})
	if err != nil {
		return err
	}

	gw := gateway.New(gateway.Config{
		BaseURL: backtestBackendURL,
		// Long simulations exceed the default request timeout.
		Timeout: 2 * time.Minute,
	}, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := gw.RunBacktest(ctx, params)
	if err != nil {
		return err
	}

	fmt.Println("=== Backtest ===")
	fmt.Printf("Strategy: %s\n", params.StrategyName)
	fmt.Printf("Ticker:   %s\n", params.Ticker)
	fmt.Printf("Period:   %d trading days\n", params.Days)
	fmt.Println()

	for _, card := range view.BacktestSummary(result) {
		fmt.Printf("%-14s %s\n", card.Label, card.Value)
	}

	if len(result.TradesLog) > 0 {
		fmt.Println()
		fmt.Println("Trades:")
		for _, row := range view.TradeRows(result.TradesLog) {
			fmt.Printf("  %s  %-12s %-5s strike %s entry %s pnl %s\n",
				row.Date, row.SignalType, row.OptionType, row.Strike, row.EntryPrice, row.PnL)
		}
	}

	return nil
}
