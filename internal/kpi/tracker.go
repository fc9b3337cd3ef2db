package kpi

import (
	"context"
	"fmt"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// TrendDeadBandPct is the change magnitude below which two consecutive
// snapshots are reported as flat.
const TrendDeadBandPct = 1.0

// Tracker closes out KPI tracking periods. One snapshot is written per
// (KPI, period); the store's unique key makes a retried close a no-op.
type Tracker struct {
	snapshots contracts.SnapshotRepository
	log       *logger.Logger
}

// NewTracker creates a period tracker.
func NewTracker(snapshots contracts.SnapshotRepository, log *logger.Logger) *Tracker {
	return &Tracker{
		snapshots: snapshots,
		log:       log,
	}
}

// ClosePeriod writes the close-out snapshot for the period that ended
// just before now. Returns the snapshot and whether this call created
// it; a period already closed by an earlier tick returns (snapshot,
// false, nil).
func (t *Tracker) ClosePeriod(ctx context.Context, k *contracts.KPI, now time.Time) (*contracts.KpiPeriodSnapshot, bool, error) {
	// The period being closed is the one containing the instant just
	// before the boundary tick.
	closing := now.UTC().Add(-time.Nanosecond)
	label := k.Timeframe.PeriodLabel(closing)

	prior, err := t.snapshots.Latest(ctx, k.ID)
	if err != nil {
		return nil, false, fmt.Errorf("load latest snapshot for %s: %w", k.ID, err)
	}
	if prior != nil && prior.PeriodLabel == label {
		return prior, false, nil
	}

	snapshot := contracts.KpiPeriodSnapshot{
		KpiID:          k.ID,
		PeriodLabel:    label,
		PeriodStart:    k.Timeframe.PeriodStart(closing),
		PeriodEnd:      k.Timeframe.PeriodEnd(closing),
		FinalValue:     k.CurrentValue,
		TargetValue:    k.TargetValue,
		TargetAchieved: k.TargetMet(k.CurrentValue),
		CreatedAt:      now.UTC(),
	}

	snapshot.ChangePercentage = changeVsPrior(k.CurrentValue, prior)
	snapshot.TrendDirection = Trend(snapshot.ChangePercentage)

	if err := t.snapshots.Insert(ctx, snapshot); err != nil {
		return nil, false, fmt.Errorf("insert snapshot %s/%s: %w", k.ID, label, err)
	}

	t.log.WithFields(map[string]interface{}{
		"kpi_id":          k.ID,
		"period":          label,
		"final_value":     snapshot.FinalValue,
		"target_achieved": snapshot.TargetAchieved,
		"trend":           string(snapshot.TrendDirection),
	}).Info("Period closed")

	return &snapshot, true, nil
}

// changeVsPrior returns the relative change against the preceding
// snapshot's final value, nil for the first period or a zero prior.
func changeVsPrior(finalValue float64, prior *contracts.KpiPeriodSnapshot) *float64 {
	if prior == nil || prior.FinalValue == 0 {
		return nil
	}
	change := (finalValue - prior.FinalValue) / prior.FinalValue * 100
	return &change
}

// Trend classifies a change percentage against the dead-band. A nil
// change (first period) is flat.
func Trend(changePct *float64) contracts.TrendDirection {
	if changePct == nil {
		return contracts.TrendFlat
	}
	switch {
	case *changePct > TrendDeadBandPct:
		return contracts.TrendUp
	case *changePct < -TrendDeadBandPct:
		return contracts.TrendDown
	default:
		return contracts.TrendFlat
	}
}

// ConsecutiveDownStreak counts how many of the most recent snapshots
// form an unbroken run of down trends. Snapshots must be ordered
// descending by period end.
func ConsecutiveDownStreak(history []contracts.KpiPeriodSnapshot) int {
	streak := 0
	for _, s := range history {
		if s.TrendDirection != contracts.TrendDown {
			break
		}
		streak++
	}
	return streak
}
