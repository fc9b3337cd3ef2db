package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "MarketPulse - marketing KPI and anomaly service",
	Long: `MarketPulse backend CLI

KPI attainment, period snapshots, week-over-week anomaly signals and
notifications for marketing campaigns.

Usage:
  go run ./cmd/pulse [command]

Examples:
  go run ./cmd/pulse api
  go run ./cmd/pulse scheduler start
  go run ./cmd/pulse scheduler run kpi_daily_tick
  go run ./cmd/pulse status`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
