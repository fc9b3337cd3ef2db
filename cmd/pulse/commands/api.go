package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketpulse/backend/internal/anomaly"
	"github.com/marketpulse/backend/internal/api"
	"github.com/marketpulse/backend/internal/api/handlers"
	"github.com/marketpulse/backend/internal/campaign"
	"github.com/marketpulse/backend/internal/integration"
	"github.com/marketpulse/backend/internal/kpi"
	"github.com/marketpulse/backend/internal/notify"
	"github.com/marketpulse/backend/internal/performance"
	"github.com/marketpulse/backend/pkg/config"
	"github.com/marketpulse/backend/pkg/database"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// apiCmd starts the REST API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET    /health                             - Health check
  GET    /ws                                 - Notification stream (websocket)
  GET    /api/campaigns                      - List campaigns
  POST   /api/campaigns                      - Create campaign
  GET    /api/campaigns/{id}/performance     - Aggregate metrics
  GET    /api/campaigns/{id}/signals/wow     - Week-over-week signals
  POST   /api/performance                    - Ingest daily fact
  GET    /api/kpis                           - KPIs with attainment
  GET    /api/kpis/{id}/history              - Period snapshot history
  GET    /api/notifications                  - Recent notifications

Example:
  go run ./cmd/pulse api
  go run ./cmd/pulse api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== MarketPulse API Server ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Connected to database")

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "pulse")
	limiter := redis.NewRateLimiter(redisClient, "pulse")

	// Repositories and services
	campaignRepo := campaign.NewRepository(db.Pool)
	integrationRepo := integration.NewRepository(db.Pool)
	kpiRepo := kpi.NewRepository(db.Pool)
	snapshotRepo := kpi.NewSnapshotRepository(db.Pool)
	notifRepo := notify.NewRepository(db.Pool)
	factService := performance.NewService(performance.NewRepository(db.Pool), log)
	engine := anomaly.NewEngine(log)

	// Websocket hub with store-tailing streamer
	hub := api.NewHub(log)
	streamer := api.NewNotificationStreamer(hub, notifRepo, 15*time.Second, log)
	streamCtx, stopStreamer := context.WithCancel(context.Background())
	defer stopStreamer()
	go streamer.Run(streamCtx)

	router := api.NewRouter(api.Handlers{
		Campaigns:     handlers.NewCampaignHandler(campaignRepo, log),
		Integrations:  handlers.NewIntegrationHandler(integrationRepo, log),
		Performance:   handlers.NewPerformanceHandler(factService, engine, cache, log),
		KPIs:          handlers.NewKPIHandler(kpiRepo, snapshotRepo, cache, log),
		Notifications: handlers.NewNotificationHandler(notifRepo, log),
		Hub:           hub,
		HealthCheck:   func() error { return db.Ping(context.Background()) },
	}, limiter, log)

	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
