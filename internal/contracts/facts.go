package contracts

import (
	"math"
	"time"
)

// DailyMetricFact is one day of raw marketing counters for a campaign.
// Facts are immutable once ingested and are supplied ordered ascending
// by date with no gaps; the WoW engine relies on that contract.
type DailyMetricFact struct {
	CampaignID  string    `json:"campaign_id"`
	Date        time.Time `json:"date"`
	Impressions float64   `json:"impressions"`
	Clicks      float64   `json:"clicks"`
	Conversions float64   `json:"conversions"`
	Spend       float64   `json:"spend"`
	Engagements float64   `json:"engagements"`
	Revenue     float64   `json:"revenue"`
}

// Sanitize coerces non-finite or negative counters to 0 so no NaN/Inf
// ever enters the metric math.
func (f DailyMetricFact) Sanitize() DailyMetricFact {
	f.Impressions = sanitizeCounter(f.Impressions)
	f.Clicks = sanitizeCounter(f.Clicks)
	f.Conversions = sanitizeCounter(f.Conversions)
	f.Spend = sanitizeCounter(f.Spend)
	f.Engagements = sanitizeCounter(f.Engagements)
	f.Revenue = sanitizeCounter(f.Revenue)
	return f
}

func sanitizeCounter(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// WeeklyTotals holds counters summed over a 7-day bucket. Rates are
// always derived from these sums, never averaged per-day.
type WeeklyTotals struct {
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
	Engagements float64 `json:"engagements"`
}

// SumFacts aggregates a slice of facts into weekly totals, sanitizing
// each fact first.
func SumFacts(facts []DailyMetricFact) WeeklyTotals {
	var t WeeklyTotals
	for _, f := range facts {
		f = f.Sanitize()
		t.Impressions += f.Impressions
		t.Clicks += f.Clicks
		t.Conversions += f.Conversions
		t.Spend += f.Spend
		t.Engagements += f.Engagements
	}
	return t
}
