package contracts

import "time"

// TrendDirection classifies the movement between two consecutive
// period snapshots.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// KpiPeriodSnapshot is the immutable close-out record of one tracking
// period. Snapshots are created exactly once per (KPI, period) and
// never mutated; history is ordered by PeriodEnd.
type KpiPeriodSnapshot struct {
	KpiID            string         `json:"kpi_id"`
	PeriodLabel      string         `json:"period_label"`
	PeriodStart      time.Time      `json:"period_start"`
	PeriodEnd        time.Time      `json:"period_end"`
	FinalValue       float64        `json:"final_value"`
	TargetValue      float64        `json:"target_value"`
	TargetAchieved   bool           `json:"target_achieved"`
	ChangePercentage *float64       `json:"change_percentage,omitempty"` // nil for the first period
	TrendDirection   TrendDirection `json:"trend_direction"`
	CreatedAt        time.Time      `json:"created_at"`
}
