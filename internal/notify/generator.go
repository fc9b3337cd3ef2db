// Package notify turns KPI state into user-facing notifications.
//
// Emission is idempotent per (KPI, day, type): a Redis SetNX guard
// short-circuits duplicates cheaply, and the store's unique dedup key
// is the final authority, so at-least-once scheduler delivery never
// produces duplicate records.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/kpi"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// TrendAlertStreak is how many consecutive down periods trigger a
// trend alert.
const TrendAlertStreak = 3

// Generator produces notifications for one KPI per scheduler tick.
type Generator struct {
	notifications contracts.NotificationRepository
	snapshots     contracts.SnapshotRepository
	cache         *redis.Cache
	dispatcher    *WebhookDispatcher
	log           *logger.Logger
}

// NewGenerator creates a notification generator. dispatcher may be nil
// when webhook delivery is disabled.
func NewGenerator(
	notifications contracts.NotificationRepository,
	snapshots contracts.SnapshotRepository,
	cache *redis.Cache,
	dispatcher *WebhookDispatcher,
	log *logger.Logger,
) *Generator {
	return &Generator{
		notifications: notifications,
		snapshots:     snapshots,
		cache:         cache,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// Tick evaluates all notification rules for one KPI. snapshot and
// snapshotCreated describe what the period tracker did this tick;
// snapshot is nil when no boundary was reached. Returns the
// notifications actually created (duplicates are skipped silently).
func (g *Generator) Tick(ctx context.Context, k *contracts.KPI, snapshot *contracts.KpiPeriodSnapshot, snapshotCreated bool, now time.Time) ([]contracts.Notification, error) {
	if !k.AlertsEnabled {
		return nil, nil
	}

	day := now.UTC().Truncate(24 * time.Hour)
	var created []contracts.Notification

	// Reminder on the first day of each new period.
	if k.Timeframe.PeriodStart(day).Equal(day) {
		n := g.reminderFor(k, day)
		ok, err := g.emit(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, n)
		}
	}

	// Alert when the current value sits past the threshold in the
	// unfavorable direction. The dedup key caps this at one per day.
	if k.ThresholdBreached(k.CurrentValue) {
		n := g.alertFor(k, day)
		ok, err := g.emit(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, n)
		}
	}

	// Period close-out summary, only on the tick that wrote the
	// snapshot.
	if snapshot != nil && snapshotCreated {
		n := g.periodCompleteFor(k, snapshot, day)
		ok, err := g.emit(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, n)
		}
	}

	// Trend alert on a sustained downward run.
	history, err := g.snapshots.LastN(ctx, k.ID, TrendAlertStreak)
	if err != nil {
		return created, fmt.Errorf("load snapshot history for %s: %w", k.ID, err)
	}
	if kpi.ConsecutiveDownStreak(history) >= TrendAlertStreak {
		n := g.trendAlertFor(k, day)
		ok, err := g.emit(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, n)
		}
	}

	return created, nil
}

// emit writes one notification if no record with the same dedup key
// exists yet. Returns whether this call created it.
func (g *Generator) emit(ctx context.Context, n contracts.Notification) (bool, error) {
	dedupKey := redis.NotificationDedupKey(n.Metadata.KpiID, n.Day.Format("2006-01-02"), string(n.Type))
	fresh, err := g.cache.SetNX(ctx, dedupKey, true, redis.TTLDaily)
	if err != nil {
		// Redis trouble never blocks emission; the store dedups.
		g.log.WithError(err).Warn("Notification dedup fast-path unavailable")
	} else if !fresh {
		return false, nil
	}

	inserted, err := g.notifications.Insert(ctx, n)
	if err != nil {
		return false, fmt.Errorf("insert notification %s: %w", n.DedupKey(), err)
	}
	if !inserted {
		return false, nil
	}

	g.log.WithFields(map[string]interface{}{
		"kpi_id": n.Metadata.KpiID,
		"type":   string(n.Type),
		"day":    n.Day.Format("2006-01-02"),
	}).Info("Notification created")

	if g.dispatcher != nil {
		g.dispatcher.Dispatch(ctx, n)
	}
	return true, nil
}

func (g *Generator) reminderFor(k *contracts.KPI, day time.Time) contracts.Notification {
	return contracts.Notification{
		Title:    fmt.Sprintf("New %s period started for %s", k.Timeframe, k.Name),
		Message:  fmt.Sprintf("A new %s tracking period began today. Current value: %.2f, target: %.2f.", k.Timeframe, k.CurrentValue, k.TargetValue),
		Type:     contracts.NotificationReminder,
		Priority: contracts.PriorityLow,
		Metadata: contracts.NotificationMetadata{
			KpiID:     k.ID,
			ActionURL: fmt.Sprintf("/dashboard/kpis/%s", k.ID),
		},
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
}

func (g *Generator) alertFor(k *contracts.KPI, day time.Time) contracts.Notification {
	direction := "dropped below"
	if k.LowerIsBetter {
		direction = "exceeded"
	}
	return contracts.Notification{
		Title:    fmt.Sprintf("%s %s its alert threshold", k.Name, direction),
		Message:  fmt.Sprintf("%s is at %.2f, past the configured threshold of %.2f.", k.Name, k.CurrentValue, k.AlertThreshold),
		Type:     contracts.NotificationAlert,
		Priority: contracts.PriorityHigh,
		Metadata: contracts.NotificationMetadata{
			KpiID:     k.ID,
			ActionURL: fmt.Sprintf("/dashboard/kpis/%s", k.ID),
		},
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
}

func (g *Generator) periodCompleteFor(k *contracts.KPI, s *contracts.KpiPeriodSnapshot, day time.Time) contracts.Notification {
	result := "missed"
	if s.TargetAchieved {
		result = "achieved"
	}
	msg := fmt.Sprintf("Period %s closed at %.2f against a target of %.2f (%s). Trend: %s.",
		s.PeriodLabel, s.FinalValue, s.TargetValue, result, s.TrendDirection)
	return contracts.Notification{
		Title:    fmt.Sprintf("%s period complete: target %s", k.Name, result),
		Message:  msg,
		Type:     contracts.NotificationPeriodComplete,
		Priority: contracts.PriorityNormal,
		Metadata: contracts.NotificationMetadata{
			KpiID:     k.ID,
			ActionURL: fmt.Sprintf("/dashboard/kpis/%s/history", k.ID),
		},
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
}

func (g *Generator) trendAlertFor(k *contracts.KPI, day time.Time) contracts.Notification {
	return contracts.Notification{
		Title:    fmt.Sprintf("%s has declined for %d straight periods", k.Name, TrendAlertStreak),
		Message:  fmt.Sprintf("%s shows a sustained downward trend across its last %d periods. Review the campaign mix.", k.Name, TrendAlertStreak),
		Type:     contracts.NotificationTrendAlert,
		Priority: contracts.PriorityHigh,
		Metadata: contracts.NotificationMetadata{
			KpiID:     k.ID,
			ActionURL: fmt.Sprintf("/dashboard/kpis/%s/history", k.ID),
		},
		Day:       day,
		CreatedAt: time.Now().UTC(),
	}
}
