package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "b3dash",
	Short: "B3 Signals - options signal dashboard",
	Long: `B3 Signals is a dashboard for the B3 options signal scanner backend.
It polls the live feed, runs on-demand scans and backtests, and serves
the results as a web UI and JSON API.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
