// Package integration tracks linked ad-platform accounts.
package integration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/contracts"
)

// Repository implements contracts.IntegrationRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an integration repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List retrieves all integrations.
func (r *Repository) List(ctx context.Context) ([]contracts.Integration, error) {
	query := `
		SELECT id, platform, status, account_id, last_sync, created_at
		FROM integrations
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []contracts.Integration
	for rows.Next() {
		var i contracts.Integration
		if err := rows.Scan(&i.ID, &i.Platform, &i.Status, &i.AccountID, &i.LastSync, &i.CreatedAt); err != nil {
			return nil, err
		}
		integrations = append(integrations, i)
	}
	return integrations, rows.Err()
}

// Create stores a new integration link.
func (r *Repository) Create(ctx context.Context, i contracts.Integration) (*contracts.Integration, error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Status == "" {
		i.Status = contracts.IntegrationDisconnected
	}
	i.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO integrations (id, platform, status, account_id, last_sync, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, i.ID, i.Platform, i.Status, i.AccountID, i.LastSync, i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Update applies the non-nil fields of updates. A transition to
// connected stamps LastSync. Returns nil when the integration does not
// exist.
func (r *Repository) Update(ctx context.Context, id string, updates contracts.IntegrationUpdate) (*contracts.Integration, error) {
	query := `SELECT id, platform, status, account_id, last_sync, created_at FROM integrations WHERE id = $1`

	var existing contracts.Integration
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&existing.ID, &existing.Platform, &existing.Status,
		&existing.AccountID, &existing.LastSync, &existing.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if updates.Status != nil {
		existing.Status = *updates.Status
		if existing.Status == contracts.IntegrationConnected {
			now := time.Now().UTC()
			existing.LastSync = &now
		}
	}
	if updates.AccountID != nil {
		existing.AccountID = *updates.AccountID
	}

	update := `UPDATE integrations SET status = $2, account_id = $3, last_sync = $4 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, update, existing.ID, existing.Status, existing.AccountID, existing.LastSync); err != nil {
		return nil, err
	}
	return &existing, nil
}

// Delete removes an integration, reporting whether a row existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
