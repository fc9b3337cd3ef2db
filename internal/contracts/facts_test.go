package contracts

import (
	"math"
	"testing"
	"time"
)

func TestDailyMetricFactSanitize(t *testing.T) {
	fact := DailyMetricFact{
		Impressions: math.NaN(),
		Clicks:      math.Inf(1),
		Conversions: -3,
		Spend:       120.50,
		Engagements: math.Inf(-1),
		Revenue:     0,
	}

	got := fact.Sanitize()

	if got.Impressions != 0 || got.Clicks != 0 || got.Conversions != 0 || got.Engagements != 0 {
		t.Errorf("Sanitize() left bad counters: %+v", got)
	}
	if got.Spend != 120.50 {
		t.Errorf("Sanitize() changed valid spend: got %v", got.Spend)
	}
}

func TestSumFacts(t *testing.T) {
	facts := []DailyMetricFact{
		{Impressions: 1000, Clicks: 50, Conversions: 5, Spend: 100, Engagements: 80},
		{Impressions: 2000, Clicks: 70, Conversions: 3, Spend: 150, Engagements: 120},
		{Impressions: math.NaN(), Clicks: -10, Conversions: 2, Spend: 50, Engagements: 0},
	}

	got := SumFacts(facts)

	if got.Impressions != 3000 {
		t.Errorf("Impressions = %v, want 3000", got.Impressions)
	}
	if got.Clicks != 120 {
		t.Errorf("Clicks = %v, want 120", got.Clicks)
	}
	if got.Conversions != 10 {
		t.Errorf("Conversions = %v, want 10", got.Conversions)
	}
	if got.Spend != 300 {
		t.Errorf("Spend = %v, want 300", got.Spend)
	}
	if got.Engagements != 200 {
		t.Errorf("Engagements = %v, want 200", got.Engagements)
	}
}

func TestNotificationDedupKey(t *testing.T) {
	n := Notification{
		Type: NotificationAlert,
		Day:  time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC),
		Metadata: NotificationMetadata{
			KpiID: "kpi-7",
		},
	}

	want := "kpi-7:2026-08-26:alert"
	if got := n.DedupKey(); got != want {
		t.Errorf("DedupKey() = %q, want %q", got, want)
	}
}
