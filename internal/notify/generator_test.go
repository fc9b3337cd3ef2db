package notify

import (
	"context"
	"testing"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/config"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// fakeNotificationRepo is an in-memory contracts.NotificationRepository
// that enforces the dedup key like the real table does.
type fakeNotificationRepo struct {
	records []contracts.Notification
}

func (f *fakeNotificationRepo) Insert(_ context.Context, n contracts.Notification) (bool, error) {
	for _, existing := range f.records {
		if existing.DedupKey() == n.DedupKey() {
			return false, nil
		}
	}
	f.records = append(f.records, n)
	return true, nil
}

func (f *fakeNotificationRepo) List(_ context.Context, limit int) ([]contracts.Notification, error) {
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeNotificationRepo) ListUnread(_ context.Context) ([]contracts.Notification, error) {
	var out []contracts.Notification
	for _, n := range f.records {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Read = true
		}
	}
	return nil
}

// fakeSnapshotRepo serves a fixed history, newest first.
type fakeSnapshotRepo struct {
	history []contracts.KpiPeriodSnapshot
}

func (f *fakeSnapshotRepo) Insert(_ context.Context, _ contracts.KpiPeriodSnapshot) error {
	return nil
}

func (f *fakeSnapshotRepo) Latest(_ context.Context, _ string) (*contracts.KpiPeriodSnapshot, error) {
	if len(f.history) == 0 {
		return nil, nil
	}
	return &f.history[0], nil
}

func (f *fakeSnapshotRepo) LastN(_ context.Context, _ string, n int) ([]contracts.KpiPeriodSnapshot, error) {
	if len(f.history) > n {
		return f.history[:n], nil
	}
	return f.history, nil
}

func (f *fakeSnapshotRepo) ListByKpi(_ context.Context, _ string) ([]contracts.KpiPeriodSnapshot, error) {
	return f.history, nil
}

func newTestGenerator(snapshots *fakeSnapshotRepo) (*Generator, *fakeNotificationRepo) {
	repo := &fakeNotificationRepo{}
	cacheClient, _ := redis.New(&config.Config{}) // disabled, store-level dedup only
	cache := redis.NewCache(cacheClient, "test")
	gen := NewGenerator(repo, snapshots, cache, nil, logger.NewNop())
	return gen, repo
}

func notifTypes(records []contracts.Notification) []contracts.NotificationType {
	types := make([]contracts.NotificationType, len(records))
	for i, n := range records {
		types[i] = n.Type
	}
	return types
}

func TestTickSkipsKPIWithAlertsDisabled(t *testing.T) {
	gen, repo := newTestGenerator(&fakeSnapshotRepo{})
	k := &contracts.KPI{ID: "kpi-1", AlertsEnabled: false, Timeframe: contracts.TimeframeWeekly}

	created, err := gen.Tick(context.Background(), k, nil, false, time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 0 || len(repo.records) != 0 {
		t.Errorf("expected nothing for disabled KPI, got %v", notifTypes(repo.records))
	}
}

func TestTickEmitsReminderOnPeriodStart(t *testing.T) {
	gen, repo := newTestGenerator(&fakeSnapshotRepo{})
	k := &contracts.KPI{
		ID: "kpi-1", Name: "Blended CTR", AlertsEnabled: true,
		Timeframe: contracts.TimeframeWeekly, CurrentValue: 2.4, TargetValue: 2.0,
	}

	// Monday: a new weekly period starts.
	monday := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	created, err := gen.Tick(context.Background(), k, nil, false, monday)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 1 || created[0].Type != contracts.NotificationReminder {
		t.Fatalf("created = %v, want one reminder", notifTypes(created))
	}
	if repo.records[0].Metadata.KpiID != "kpi-1" {
		t.Errorf("KpiID = %q, want kpi-1", repo.records[0].Metadata.KpiID)
	}

	// Tuesday: no reminder.
	tuesday := monday.AddDate(0, 0, 1)
	created, err = gen.Tick(context.Background(), k, nil, false, tuesday)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v on a mid-period day, want none", notifTypes(created))
	}
}

func TestTickEmitsAlertOnThresholdBreach(t *testing.T) {
	gen, _ := newTestGenerator(&fakeSnapshotRepo{})
	k := &contracts.KPI{
		ID: "kpi-cpa", Name: "CPA", AlertsEnabled: true, LowerIsBetter: true,
		Timeframe: contracts.TimeframeMonthly, CurrentValue: 58, TargetValue: 40, AlertThreshold: 50,
	}

	midMonth := time.Date(2026, 8, 18, 6, 0, 0, 0, time.UTC)
	created, err := gen.Tick(context.Background(), k, nil, false, midMonth)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 1 || created[0].Type != contracts.NotificationAlert {
		t.Fatalf("created = %v, want one alert", notifTypes(created))
	}
	if created[0].Priority != contracts.PriorityHigh {
		t.Errorf("priority = %v, want high", created[0].Priority)
	}
}

func TestTickAlertIsOncePerDay(t *testing.T) {
	gen, repo := newTestGenerator(&fakeSnapshotRepo{})
	k := &contracts.KPI{
		ID: "kpi-cpa", Name: "CPA", AlertsEnabled: true, LowerIsBetter: true,
		Timeframe: contracts.TimeframeMonthly, CurrentValue: 58, AlertThreshold: 50,
	}

	day := time.Date(2026, 8, 18, 6, 0, 0, 0, time.UTC)
	if _, err := gen.Tick(context.Background(), k, nil, false, day); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	// Retried tick the same day: dedup absorbs the duplicate.
	created, err := gen.Tick(context.Background(), k, nil, false, day.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("retried tick: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("retry created %v, want none", notifTypes(created))
	}
	if len(repo.records) != 1 {
		t.Errorf("stored %d notifications, want 1", len(repo.records))
	}

	// Next day the alert may fire again.
	created, err = gen.Tick(context.Background(), k, nil, false, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("next-day tick: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("next day created %v, want one alert", notifTypes(created))
	}
}

func TestTickEmitsPeriodCompleteWithSnapshot(t *testing.T) {
	gen, _ := newTestGenerator(&fakeSnapshotRepo{})
	k := &contracts.KPI{
		ID: "kpi-1", Name: "Blended CTR", AlertsEnabled: true,
		Timeframe: contracts.TimeframeWeekly, CurrentValue: 2.4, TargetValue: 2.0,
	}
	snapshot := &contracts.KpiPeriodSnapshot{
		KpiID: "kpi-1", PeriodLabel: "2026-W34", FinalValue: 2.4,
		TargetValue: 2.0, TargetAchieved: true, TrendDirection: contracts.TrendUp,
	}

	// Mid-week tick so the reminder rule stays quiet.
	day := time.Date(2026, 8, 26, 6, 0, 0, 0, time.UTC)
	created, err := gen.Tick(context.Background(), k, snapshot, true, day)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 1 || created[0].Type != contracts.NotificationPeriodComplete {
		t.Fatalf("created = %v, want one period_complete", notifTypes(created))
	}

	// Same snapshot passed again but not newly created: no emission.
	created, err = gen.Tick(context.Background(), k, snapshot, false, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v for an already-closed period, want none", notifTypes(created))
	}
}

func TestTickEmitsTrendAlertAfterThreeDownPeriods(t *testing.T) {
	down := contracts.KpiPeriodSnapshot{TrendDirection: contracts.TrendDown}
	snapshots := &fakeSnapshotRepo{history: []contracts.KpiPeriodSnapshot{down, down, down}}
	gen, _ := newTestGenerator(snapshots)
	k := &contracts.KPI{
		ID: "kpi-1", Name: "CVR", AlertsEnabled: true,
		Timeframe: contracts.TimeframeWeekly, CurrentValue: 3.0, TargetValue: 2.0,
	}

	day := time.Date(2026, 8, 26, 6, 0, 0, 0, time.UTC)
	created, err := gen.Tick(context.Background(), k, nil, false, day)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 1 || created[0].Type != contracts.NotificationTrendAlert {
		t.Fatalf("created = %v, want one trend_alert", notifTypes(created))
	}
}

func TestTickNoTrendAlertOnBrokenStreak(t *testing.T) {
	down := contracts.KpiPeriodSnapshot{TrendDirection: contracts.TrendDown}
	up := contracts.KpiPeriodSnapshot{TrendDirection: contracts.TrendUp}
	snapshots := &fakeSnapshotRepo{history: []contracts.KpiPeriodSnapshot{down, up, down}}
	gen, _ := newTestGenerator(snapshots)
	k := &contracts.KPI{
		ID: "kpi-1", Name: "CVR", AlertsEnabled: true,
		Timeframe: contracts.TimeframeWeekly, CurrentValue: 3.0, TargetValue: 2.0,
	}

	created, err := gen.Tick(context.Background(), k, nil, false, time.Date(2026, 8, 26, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v, want none", notifTypes(created))
	}
}
