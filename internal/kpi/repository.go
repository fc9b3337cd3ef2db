package kpi

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/contracts"
)

// Repository implements contracts.KPIRepository. KPI configuration is
// owned by the dashboard; this service only reads it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a KPI repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List retrieves all KPI records.
func (r *Repository) List(ctx context.Context) ([]contracts.KPI, error) {
	query := `
		SELECT id, name, metric, current_value, target_value, lower_is_better,
		       timeframe, alerts_enabled, alert_threshold
		FROM kpis
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kpis []contracts.KPI
	for rows.Next() {
		var k contracts.KPI
		if err := rows.Scan(
			&k.ID, &k.Name, &k.Metric, &k.CurrentValue, &k.TargetValue,
			&k.LowerIsBetter, &k.Timeframe, &k.AlertsEnabled, &k.AlertThreshold,
		); err != nil {
			return nil, err
		}
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

// GetByID retrieves a single KPI, nil when not found.
func (r *Repository) GetByID(ctx context.Context, id string) (*contracts.KPI, error) {
	query := `
		SELECT id, name, metric, current_value, target_value, lower_is_better,
		       timeframe, alerts_enabled, alert_threshold
		FROM kpis
		WHERE id = $1
	`

	var k contracts.KPI
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&k.ID, &k.Name, &k.Metric, &k.CurrentValue, &k.TargetValue,
		&k.LowerIsBetter, &k.Timeframe, &k.AlertsEnabled, &k.AlertThreshold,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// SnapshotRepository implements contracts.SnapshotRepository on top of
// an append-only table keyed by (kpi_id, period_label).
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Insert writes a snapshot. The unique (kpi_id, period_label) key makes
// a retried close a no-op rather than a duplicate row.
func (r *SnapshotRepository) Insert(ctx context.Context, s contracts.KpiPeriodSnapshot) error {
	query := `
		INSERT INTO kpi_period_snapshots
			(kpi_id, period_label, period_start, period_end, final_value,
			 target_value, target_achieved, change_percentage, trend_direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (kpi_id, period_label) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		s.KpiID, s.PeriodLabel, s.PeriodStart, s.PeriodEnd, s.FinalValue,
		s.TargetValue, s.TargetAchieved, s.ChangePercentage, s.TrendDirection, s.CreatedAt,
	)
	return err
}

// Latest retrieves the most recent snapshot for a KPI, nil when no
// period has closed yet.
func (r *SnapshotRepository) Latest(ctx context.Context, kpiID string) (*contracts.KpiPeriodSnapshot, error) {
	query := `
		SELECT kpi_id, period_label, period_start, period_end, final_value,
		       target_value, target_achieved, change_percentage, trend_direction, created_at
		FROM kpi_period_snapshots
		WHERE kpi_id = $1
		ORDER BY period_end DESC
		LIMIT 1
	`

	var s contracts.KpiPeriodSnapshot
	err := r.pool.QueryRow(ctx, query, kpiID).Scan(
		&s.KpiID, &s.PeriodLabel, &s.PeriodStart, &s.PeriodEnd, &s.FinalValue,
		&s.TargetValue, &s.TargetAchieved, &s.ChangePercentage, &s.TrendDirection, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LastN retrieves up to n snapshots ordered descending by period end.
func (r *SnapshotRepository) LastN(ctx context.Context, kpiID string, n int) ([]contracts.KpiPeriodSnapshot, error) {
	query := `
		SELECT kpi_id, period_label, period_start, period_end, final_value,
		       target_value, target_achieved, change_percentage, trend_direction, created_at
		FROM kpi_period_snapshots
		WHERE kpi_id = $1
		ORDER BY period_end DESC
		LIMIT $2
	`

	return r.querySnapshots(ctx, query, kpiID, n)
}

// ListByKpi retrieves the full history ordered ascending by period end.
func (r *SnapshotRepository) ListByKpi(ctx context.Context, kpiID string) ([]contracts.KpiPeriodSnapshot, error) {
	query := `
		SELECT kpi_id, period_label, period_start, period_end, final_value,
		       target_value, target_achieved, change_percentage, trend_direction, created_at
		FROM kpi_period_snapshots
		WHERE kpi_id = $1
		ORDER BY period_end ASC
	`

	return r.querySnapshots(ctx, query, kpiID)
}

func (r *SnapshotRepository) querySnapshots(ctx context.Context, query string, args ...interface{}) ([]contracts.KpiPeriodSnapshot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []contracts.KpiPeriodSnapshot
	for rows.Next() {
		var s contracts.KpiPeriodSnapshot
		if err := rows.Scan(
			&s.KpiID, &s.PeriodLabel, &s.PeriodStart, &s.PeriodEnd, &s.FinalValue,
			&s.TargetValue, &s.TargetAchieved, &s.ChangePercentage, &s.TrendDirection, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
