package kpi

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// fakeSnapshotRepo is an in-memory contracts.SnapshotRepository.
type fakeSnapshotRepo struct {
	snapshots []contracts.KpiPeriodSnapshot
}

func (f *fakeSnapshotRepo) Insert(_ context.Context, s contracts.KpiPeriodSnapshot) error {
	for _, existing := range f.snapshots {
		if existing.KpiID == s.KpiID && existing.PeriodLabel == s.PeriodLabel {
			return nil // unique key: silently ignore, like ON CONFLICT DO NOTHING
		}
	}
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeSnapshotRepo) Latest(_ context.Context, kpiID string) (*contracts.KpiPeriodSnapshot, error) {
	var latest *contracts.KpiPeriodSnapshot
	for i := range f.snapshots {
		s := &f.snapshots[i]
		if s.KpiID != kpiID {
			continue
		}
		if latest == nil || s.PeriodEnd.After(latest.PeriodEnd) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeSnapshotRepo) LastN(_ context.Context, kpiID string, n int) ([]contracts.KpiPeriodSnapshot, error) {
	var out []contracts.KpiPeriodSnapshot
	for _, s := range f.snapshots {
		if s.KpiID == kpiID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.After(out[j].PeriodEnd) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeSnapshotRepo) ListByKpi(_ context.Context, kpiID string) ([]contracts.KpiPeriodSnapshot, error) {
	var out []contracts.KpiPeriodSnapshot
	for _, s := range f.snapshots {
		if s.KpiID == kpiID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.Before(out[j].PeriodEnd) })
	return out, nil
}

func newTestTracker() (*Tracker, *fakeSnapshotRepo) {
	repo := &fakeSnapshotRepo{}
	return NewTracker(repo, logger.NewNop()), repo
}

func TestClosePeriodFirstSnapshot(t *testing.T) {
	tracker, repo := newTestTracker()
	k := &contracts.KPI{
		ID:           "kpi-1",
		CurrentValue: 2.4,
		TargetValue:  2.0,
		Timeframe:    contracts.TimeframeWeekly,
	}

	// Tick at the Monday boundary closes the week that just ended.
	boundary := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	snapshot, created, err := tracker.ClosePeriod(context.Background(), k, boundary)
	if err != nil {
		t.Fatalf("ClosePeriod() error = %v", err)
	}
	if !created {
		t.Fatal("expected first close to create a snapshot")
	}
	if snapshot.PeriodLabel != "2026-W34" {
		t.Errorf("PeriodLabel = %q, want 2026-W34", snapshot.PeriodLabel)
	}
	if snapshot.FinalValue != 2.4 {
		t.Errorf("FinalValue = %v, want 2.4", snapshot.FinalValue)
	}
	if !snapshot.TargetAchieved {
		t.Error("expected target achieved")
	}
	if snapshot.ChangePercentage != nil {
		t.Errorf("first period ChangePercentage = %v, want nil", *snapshot.ChangePercentage)
	}
	if snapshot.TrendDirection != contracts.TrendFlat {
		t.Errorf("TrendDirection = %v, want flat", snapshot.TrendDirection)
	}
	if len(repo.snapshots) != 1 {
		t.Errorf("stored %d snapshots, want 1", len(repo.snapshots))
	}
}

func TestClosePeriodIsIdempotent(t *testing.T) {
	tracker, repo := newTestTracker()
	k := &contracts.KPI{ID: "kpi-1", CurrentValue: 2.4, TargetValue: 2.0, Timeframe: contracts.TimeframeWeekly}
	boundary := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	if _, created, err := tracker.ClosePeriod(context.Background(), k, boundary); err != nil || !created {
		t.Fatalf("first close: created=%v err=%v", created, err)
	}

	// Retried tick for the same boundary must be a no-op.
	snapshot, created, err := tracker.ClosePeriod(context.Background(), k, boundary)
	if err != nil {
		t.Fatalf("retried close error = %v", err)
	}
	if created {
		t.Error("retried close must not create a second snapshot")
	}
	if snapshot.PeriodLabel != "2026-W34" {
		t.Errorf("PeriodLabel = %q, want 2026-W34", snapshot.PeriodLabel)
	}
	if len(repo.snapshots) != 1 {
		t.Errorf("stored %d snapshots, want 1", len(repo.snapshots))
	}
}

func TestClosePeriodComputesChangeAndTrend(t *testing.T) {
	tracker, _ := newTestTracker()
	k := &contracts.KPI{ID: "kpi-1", CurrentValue: 2.0, TargetValue: 2.0, Timeframe: contracts.TimeframeWeekly}

	week1 := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	if _, _, err := tracker.ClosePeriod(context.Background(), k, week1); err != nil {
		t.Fatalf("close week1: %v", err)
	}

	k.CurrentValue = 2.5
	week2 := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	snapshot, created, err := tracker.ClosePeriod(context.Background(), k, week2)
	if err != nil || !created {
		t.Fatalf("close week2: created=%v err=%v", created, err)
	}

	if snapshot.ChangePercentage == nil || *snapshot.ChangePercentage != 25 {
		t.Errorf("ChangePercentage = %v, want 25", fmtPtr(snapshot.ChangePercentage))
	}
	if snapshot.TrendDirection != contracts.TrendUp {
		t.Errorf("TrendDirection = %v, want up", snapshot.TrendDirection)
	}
}

func TestTrendDeadBand(t *testing.T) {
	tests := []struct {
		name   string
		change *float64
		want   contracts.TrendDirection
	}{
		{"strong rise", floatPtr(10), contracts.TrendUp},
		{"strong drop", floatPtr(-10), contracts.TrendDown},
		{"inside dead band up", floatPtr(0.5), contracts.TrendFlat},
		{"inside dead band down", floatPtr(-0.9), contracts.TrendFlat},
		{"exactly at dead band", floatPtr(1.0), contracts.TrendFlat},
		{"first period", nil, contracts.TrendFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trend(tt.change); got != tt.want {
				t.Errorf("Trend(%v) = %v, want %v", fmtPtr(tt.change), got, tt.want)
			}
		})
	}
}

func TestConsecutiveDownStreak(t *testing.T) {
	down := contracts.KpiPeriodSnapshot{TrendDirection: contracts.TrendDown}
	up := contracts.KpiPeriodSnapshot{TrendDirection: contracts.TrendUp}

	tests := []struct {
		name    string
		history []contracts.KpiPeriodSnapshot
		want    int
	}{
		{"empty", nil, 0},
		{"three down", []contracts.KpiPeriodSnapshot{down, down, down}, 3},
		{"broken streak", []contracts.KpiPeriodSnapshot{down, up, down}, 1},
		{"latest up", []contracts.KpiPeriodSnapshot{up, down, down}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsecutiveDownStreak(tt.history); got != tt.want {
				t.Errorf("ConsecutiveDownStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}
