package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketpulse/backend/pkg/config"
	"github.com/marketpulse/backend/pkg/database"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// statusCmd checks connectivity to the service's dependencies.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database and Redis connectivity",
	Long: `Check connectivity to PostgreSQL and Redis and print pool
statistics.

Example:
  go run ./cmd/pulse status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== MarketPulse Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Database
	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("❌ PostgreSQL: %v\n", err)
		return err
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("❌ PostgreSQL: %v\n", err)
		return err
	}
	fmt.Printf("✅ PostgreSQL: healthy (%s)\n", health.ResponseTime)
	fmt.Printf("   Pool: %d/%d connections (%d idle)\n",
		health.Stats.TotalConns, health.Stats.MaxConns, health.Stats.IdleConns)

	// Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("❌ Redis: %v\n", err)
		return err
	}
	defer redisClient.Close()

	if redisClient.Enabled() {
		fmt.Println("✅ Redis: connected")
	} else {
		fmt.Println("⚠️  Redis: disabled (caching and dedup fast-path off)")
	}

	log.WithFields(map[string]interface{}{
		"env":  cfg.Env,
		"port": cfg.Port,
	}).Info("Status check completed")
	return nil
}
