// Package campaign stores campaign records.
package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/contracts"
)

// Repository implements contracts.CampaignRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a campaign repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `id, name, type, platform, impressions, clicks, spend, status, created_at, updated_at`

// List retrieves all campaigns, newest first.
func (r *Repository) List(ctx context.Context) ([]contracts.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []contracts.Campaign
	for rows.Next() {
		var c contracts.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// GetByID retrieves one campaign, nil when not found.
func (r *Repository) GetByID(ctx context.Context, id string) (*contracts.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	var c contracts.Campaign
	err := scanCampaign(r.pool.QueryRow(ctx, query, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a new campaign and returns it with server-side fields
// filled in.
func (r *Repository) Create(ctx context.Context, c contracts.Campaign) (*contracts.Campaign, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = contracts.CampaignActive
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO campaigns (id, name, type, platform, impressions, clicks, spend, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Type, c.Platform, c.Impressions, c.Clicks, c.Spend,
		c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update applies the non-nil fields of updates and returns the updated
// record, nil when the campaign does not exist.
func (r *Repository) Update(ctx context.Context, id string, updates contracts.CampaignUpdate) (*contracts.Campaign, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if updates.Name != nil {
		existing.Name = *updates.Name
	}
	if updates.Type != nil {
		existing.Type = *updates.Type
	}
	if updates.Platform != nil {
		existing.Platform = *updates.Platform
	}
	if updates.Impressions != nil {
		existing.Impressions = *updates.Impressions
	}
	if updates.Clicks != nil {
		existing.Clicks = *updates.Clicks
	}
	if updates.Spend != nil {
		existing.Spend = *updates.Spend
	}
	if updates.Status != nil {
		existing.Status = *updates.Status
	}
	existing.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE campaigns
		SET name = $2, type = $3, platform = $4, impressions = $5,
		    clicks = $6, spend = $7, status = $8, updated_at = $9
		WHERE id = $1
	`

	_, err = r.pool.Exec(ctx, query,
		existing.ID, existing.Name, existing.Type, existing.Platform,
		existing.Impressions, existing.Clicks, existing.Spend,
		existing.Status, existing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a campaign, reporting whether a row existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanCampaign(row pgx.Row, c *contracts.Campaign) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Type, &c.Platform, &c.Impressions, &c.Clicks,
		&c.Spend, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
}
