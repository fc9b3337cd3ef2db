package contracts

import (
	"fmt"
	"time"
)

// Timeframe is the recurring period length a KPI is tracked over.
type Timeframe string

const (
	TimeframeWeekly    Timeframe = "weekly"
	TimeframeMonthly   Timeframe = "monthly"
	TimeframeQuarterly Timeframe = "quarterly"
)

// KPI is a tracked key performance indicator. The record is owned by
// an external configuration store; this service only reads it and
// computes derived values.
type KPI struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Metric         string    `json:"metric"` // e.g. "ctr", "cpc", "cvr", "roas"
	CurrentValue   float64   `json:"current_value"`
	TargetValue    float64   `json:"target_value"`
	LowerIsBetter  bool      `json:"lower_is_better"`
	Timeframe      Timeframe `json:"timeframe"`
	AlertsEnabled  bool      `json:"alerts_enabled"`
	AlertThreshold float64   `json:"alert_threshold"`
}

// TargetMet reports whether value satisfies the KPI's target given its
// polarity.
func (k *KPI) TargetMet(value float64) bool {
	if k.LowerIsBetter {
		return value <= k.TargetValue
	}
	return value >= k.TargetValue
}

// ThresholdBreached reports whether value has crossed the alert
// threshold in the unfavorable direction.
func (k *KPI) ThresholdBreached(value float64) bool {
	if k.LowerIsBetter {
		return value > k.AlertThreshold
	}
	return value < k.AlertThreshold
}

// PeriodStart returns the start of the period containing t.
func (tf Timeframe) PeriodStart(t time.Time) time.Time {
	t = t.UTC()
	switch tf {
	case TimeframeWeekly:
		// ISO weeks start on Monday
		offset := (int(t.Weekday()) + 6) % 7
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -offset)
	case TimeframeQuarterly:
		quarterMonth := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
	default: // monthly
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// PeriodEnd returns the exclusive end of the period containing t,
// which is also the start of the next period.
func (tf Timeframe) PeriodEnd(t time.Time) time.Time {
	start := tf.PeriodStart(t)
	switch tf {
	case TimeframeWeekly:
		return start.AddDate(0, 0, 7)
	case TimeframeQuarterly:
		return start.AddDate(0, 3, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// PeriodLabel returns a stable label for the period containing t,
// e.g. "2026-W35", "2026-08", "2026-Q3". The label doubles as the
// idempotency key for snapshot writes.
func (tf Timeframe) PeriodLabel(t time.Time) string {
	t = t.UTC()
	switch tf {
	case TimeframeWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case TimeframeQuarterly:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
	default:
		return t.Format("2006-01")
	}
}
