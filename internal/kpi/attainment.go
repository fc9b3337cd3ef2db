// Package kpi computes KPI attainment and manages period snapshots.
package kpi

import (
	"math"

	"github.com/marketpulse/backend/internal/metrics"
)

// Band classifies how a KPI sits relative to its target.
type Band string

const (
	BandAbove Band = "above"
	BandNear  Band = "near"
	BandBelow Band = "below"
)

// DefaultNearBandPct is the tolerance around target inside which a KPI
// is reported as "near" rather than above/below.
const DefaultNearBandPct = 5.0

// DeltaPct returns the relative distance from target as a percentage.
// Returns nil when target is not set (<= 0): callers must treat nil as
// "unknown", never as zero.
func DeltaPct(current, target float64) *float64 {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return nil
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}
	d := (current - target) / target * 100
	return &d
}

// EffectiveDeltaPct normalizes delta sign so positive always means
// "better than target" regardless of metric polarity. A CPA below
// target is a positive effective delta.
func EffectiveDeltaPct(current, target float64, lowerIsBetter bool) *float64 {
	d := DeltaPct(current, target)
	if d == nil {
		return nil
	}
	if lowerIsBetter {
		neg := -*d
		return &neg
	}
	return d
}

// Classify maps an effective delta into a band. Bands are mutually
// exclusive and exhaustive for any finite delta and nearBandPct >= 0.
func Classify(effectiveDeltaPct, nearBandPct float64) Band {
	switch {
	case effectiveDeltaPct > nearBandPct:
		return BandAbove
	case effectiveDeltaPct < -nearBandPct:
		return BandBelow
	default:
		return BandNear
	}
}

// AttainmentPct returns progress toward target as a percentage.
// Uncapped: beating the target yields values above 100. For
// lower-is-better metrics a current value of 0 counts as full
// attainment (nothing spent). Returns nil when target <= 0.
func AttainmentPct(current, target float64, lowerIsBetter bool) *float64 {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return nil
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}

	var pct float64
	if lowerIsBetter {
		if current <= 0 {
			pct = 100
		} else {
			pct = target / current * 100
		}
	} else {
		pct = current / target * 100
	}
	return &pct
}

// AttainmentFillPct clamps an attainment percentage into [0, 100] for
// progress-bar rendering. Never used for the textual label.
func AttainmentFillPct(attainmentPct *float64) float64 {
	if attainmentPct == nil {
		return 0
	}
	return math.Max(0, math.Min(*attainmentPct, 100))
}

// Attainment is the dashboard view of one KPI against its target.
type Attainment struct {
	DeltaPct          *float64 `json:"delta_pct"`
	EffectiveDeltaPct *float64 `json:"effective_delta_pct"`
	Band              Band     `json:"band"`
	AttainmentPct     *float64 `json:"attainment_pct"`
	FillPct           float64  `json:"fill_pct"`
}

// Evaluate computes the full attainment view for one (current, target,
// polarity) triple with the default near band.
func Evaluate(current, target float64, lowerIsBetter bool) Attainment {
	a := Attainment{
		DeltaPct:          DeltaPct(current, target),
		EffectiveDeltaPct: EffectiveDeltaPct(current, target, lowerIsBetter),
		AttainmentPct:     AttainmentPct(current, target, lowerIsBetter),
	}
	a.FillPct = AttainmentFillPct(a.AttainmentPct)
	if a.EffectiveDeltaPct != nil {
		a.Band = Classify(*a.EffectiveDeltaPct, DefaultNearBandPct)
	} else {
		a.Band = BandNear
	}
	if a.DeltaPct != nil {
		r := metrics.Round2(*a.DeltaPct)
		a.DeltaPct = &r
	}
	if a.EffectiveDeltaPct != nil {
		r := metrics.Round2(*a.EffectiveDeltaPct)
		a.EffectiveDeltaPct = &r
	}
	return a
}
