package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/b3signals/b3dash/internal/action"
	"github.com/b3signals/b3dash/internal/gateway"
	"github.com/b3signals/b3dash/internal/logger"
	"github.com/b3signals/b3dash/internal/view"
)

var scanBackendURL string

var scanCmd = &cobra.Command{
	Use:   "scan [ticker]",
	Short: "Scan a ticker for option signals",
	Long:  "Run all active strategies against a single ticker and print any signals found",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanBackendURL, "backend", gateway.DefaultBaseURL, "backend base URL")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	ticker, err := action.NormalizeTicker(args[0])
	if err != nil {
		return err
	}

	gw := gateway.New(gateway.Config{BaseURL: scanBackendURL}, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	signals, err := gw.Scan(ctx, ticker)
	if err != nil {
		return err
	}

	fmt.Printf("=== Scan %s ===\n", ticker)
	if len(signals) == 0 {
		fmt.Println("No strategy matched this ticker")
		return nil
	}

	for _, card := range view.SignalCards(signals) {
		fmt.Println()
		fmt.Printf("%s  %s  [%s]\n", card.Title, card.SignalType, card.Strategy)
		fmt.Printf("  Spot: %s  Risk: %s", card.SpotPrice, card.RiskLevel)
		if card.Confidence != "" {
			fmt.Printf("  Confidence: %s", card.Confidence)
		}
		fmt.Println()
		fmt.Printf("  %s\n", card.Reason)
		if card.Recommendation != "" {
			fmt.Printf("  -> %s\n", card.Recommendation)
		}
		for _, leg := range card.Legs {
			fmt.Printf("  leg: %s %s %s @ %s\n", leg.Action, leg.Type, leg.Symbol, leg.Strike)
		}
	}

	return nil
}
