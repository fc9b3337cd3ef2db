package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/kpi"
	"github.com/marketpulse/backend/internal/notify"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// KpiTickJob is the daily KPI tick: close any period whose boundary
// was reached, then run the notification rules for every KPI. The
// whole tick is idempotent, so the scheduler's retry loop can replay
// it safely.
type KpiTickJob struct {
	pool       *pgxpool.Pool
	cache      *redis.Cache
	dispatcher *notify.WebhookDispatcher
	log        *logger.Logger
}

// NewKpiTickJob creates the daily tick job.
func NewKpiTickJob(pool *pgxpool.Pool, cache *redis.Cache, dispatcher *notify.WebhookDispatcher, log *logger.Logger) *KpiTickJob {
	return &KpiTickJob{
		pool:       pool,
		cache:      cache,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Name returns the job name.
func (j *KpiTickJob) Name() string {
	return "kpi_daily_tick"
}

// Schedule returns the cron schedule (06:00 UTC daily).
func (j *KpiTickJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run executes one tick over all KPIs.
func (j *KpiTickJob) Run(ctx context.Context) error {
	j.log.Info("Starting daily KPI tick")

	kpiRepo := kpi.NewRepository(j.pool)
	snapshotRepo := kpi.NewSnapshotRepository(j.pool)
	notifRepo := notify.NewRepository(j.pool)

	tracker := kpi.NewTracker(snapshotRepo, j.log)
	generator := notify.NewGenerator(notifRepo, snapshotRepo, j.cache, j.dispatcher, j.log)

	kpis, err := kpiRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list kpis: %w", err)
	}

	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour)

	var closed, emitted, failed int
	for i := range kpis {
		k := &kpis[i]

		// A period boundary is reached when today is the first day of
		// a new period for this KPI's timeframe.
		var snapshot *contracts.KpiPeriodSnapshot
		var created bool
		if k.Timeframe.PeriodStart(day).Equal(day) {
			snapshot, created, err = tracker.ClosePeriod(ctx, k, day)
			if err != nil {
				failed++
				j.log.WithError(err).WithField("kpi_id", k.ID).Error("Period close failed")
				continue
			}
			if created {
				closed++
				j.invalidateSummary(ctx, k.ID)
			}
		}

		notifications, err := generator.Tick(ctx, k, snapshot, created, now)
		if err != nil {
			failed++
			j.log.WithError(err).WithField("kpi_id", k.ID).Error("Notification tick failed")
			continue
		}
		emitted += len(notifications)
	}

	j.log.WithFields(map[string]interface{}{
		"kpis":           len(kpis),
		"periods_closed": closed,
		"notifications":  emitted,
		"failed":         failed,
	}).Info("Daily KPI tick completed")

	if failed > 0 {
		return fmt.Errorf("tick finished with %d failed KPIs", failed)
	}
	return nil
}

// invalidateSummary drops the cached attainment view after a close so
// dashboards pick up the new period immediately.
func (j *KpiTickJob) invalidateSummary(ctx context.Context, kpiID string) {
	if err := j.cache.Delete(ctx, redis.KpiSummaryKey(kpiID)); err != nil {
		j.log.WithError(err).WithField("kpi_id", kpiID).Warn("Summary cache invalidation failed")
	}
}
