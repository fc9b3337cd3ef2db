// Package performance ingests and serves daily metric facts.
package performance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/contracts"
)

// Repository implements contracts.FactRepository on the
// daily_metric_facts table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a fact repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one daily fact. Re-ingesting the same (campaign, date)
// replaces the counters, so upstream corrections flow through.
func (r *Repository) Insert(ctx context.Context, f contracts.DailyMetricFact) error {
	query := `
		INSERT INTO daily_metric_facts
			(campaign_id, date, impressions, clicks, conversions, spend, engagements, revenue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (campaign_id, date) DO UPDATE SET
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			conversions = EXCLUDED.conversions,
			spend = EXCLUDED.spend,
			engagements = EXCLUDED.engagements,
			revenue = EXCLUDED.revenue
	`

	_, err := r.pool.Exec(ctx, query,
		f.CampaignID, f.Date, f.Impressions, f.Clicks, f.Conversions,
		f.Spend, f.Engagements, f.Revenue,
	)
	return err
}

// GetRange retrieves facts for a campaign ordered ascending by date.
func (r *Repository) GetRange(ctx context.Context, campaignID string, from, to time.Time) ([]contracts.DailyMetricFact, error) {
	query := `
		SELECT campaign_id, date, impressions, clicks, conversions, spend, engagements, revenue
		FROM daily_metric_facts
		WHERE campaign_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, campaignID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []contracts.DailyMetricFact
	for rows.Next() {
		var f contracts.DailyMetricFact
		if err := rows.Scan(
			&f.CampaignID, &f.Date, &f.Impressions, &f.Clicks, &f.Conversions,
			&f.Spend, &f.Engagements, &f.Revenue,
		); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
