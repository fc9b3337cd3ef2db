package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/anomaly"
	"github.com/marketpulse/backend/internal/campaign"
	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/performance"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// AnomalyScanJob runs the week-over-week signal engine across all
// active campaigns once a day, after the nightly fact ingestion has
// settled. Fired signals are cached per campaign and day so the API
// serves the scan result instead of recomputing.
type AnomalyScanJob struct {
	pool  *pgxpool.Pool
	cache *redis.Cache
	log   *logger.Logger
}

// NewAnomalyScanJob creates the daily scan job.
func NewAnomalyScanJob(pool *pgxpool.Pool, cache *redis.Cache, log *logger.Logger) *AnomalyScanJob {
	return &AnomalyScanJob{
		pool:  pool,
		cache: cache,
		log:   log,
	}
}

// Name returns the job name.
func (j *AnomalyScanJob) Name() string {
	return "anomaly_scan"
}

// Schedule returns the cron schedule (07:00 UTC daily, after the KPI
// tick).
func (j *AnomalyScanJob) Schedule() string {
	return "0 0 7 * * *"
}

// Run scans every active campaign's trailing window.
func (j *AnomalyScanJob) Run(ctx context.Context) error {
	j.log.Info("Starting anomaly scan")

	campaignRepo := campaign.NewRepository(j.pool)
	factService := performance.NewService(performance.NewRepository(j.pool), j.log)
	engine := anomaly.NewEngine(j.log)

	campaigns, err := campaignRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list campaigns: %w", err)
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	dayKey := day.Format("2006-01-02")

	var scanned, fired int
	for _, c := range campaigns {
		if c.Status != contracts.CampaignActive {
			continue
		}

		facts, err := factService.TrailingWindow(ctx, c.ID, anomaly.WindowDays, day)
		if err != nil {
			j.log.WithError(err).WithField("campaign_id", c.ID).Error("Fact window load failed")
			continue
		}

		signals := engine.Evaluate(facts)
		scanned++
		for _, s := range signals {
			if s.ID != contracts.SignalNotEnoughHistory {
				fired++
			}
		}

		cacheKey := redis.WowSignalsKey(c.ID, dayKey)
		if err := j.cache.Set(ctx, cacheKey, signals, redis.TTLDaily); err != nil {
			j.log.WithError(err).WithField("campaign_id", c.ID).Warn("Signal cache write failed")
		}
	}

	j.log.WithFields(map[string]interface{}{
		"campaigns_scanned": scanned,
		"signals_fired":     fired,
	}).Info("Anomaly scan completed")
	return nil
}
