package notify

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketpulse/backend/internal/contracts"
)

// Repository implements contracts.NotificationRepository. The
// notifications table carries a unique dedup_key column; Insert relies
// on it to absorb scheduler retries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notification repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes a notification, returning false when a record with the
// same dedup key already exists.
func (r *Repository) Insert(ctx context.Context, n contracts.Notification) (bool, error) {
	query := `
		INSERT INTO notifications
			(dedup_key, title, message, type, priority, kpi_id, action_url, read, day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (dedup_key) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		n.DedupKey(), n.Title, n.Message, n.Type, n.Priority,
		n.Metadata.KpiID, n.Metadata.ActionURL, n.Read, n.Day, n.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List retrieves the most recent notifications.
func (r *Repository) List(ctx context.Context, limit int) ([]contracts.Notification, error) {
	query := `
		SELECT id, title, message, type, priority, kpi_id, action_url, read, day, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1
	`

	return r.queryNotifications(ctx, query, limit)
}

// ListUnread retrieves all unread notifications, newest first.
func (r *Repository) ListUnread(ctx context.Context) ([]contracts.Notification, error) {
	query := `
		SELECT id, title, message, type, priority, kpi_id, action_url, read, day, created_at
		FROM notifications
		WHERE read = false
		ORDER BY created_at DESC
	`

	return r.queryNotifications(ctx, query)
}

// MarkRead flags one notification as read.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET read = true WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *Repository) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]contracts.Notification, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []contracts.Notification
	for rows.Next() {
		var n contracts.Notification
		if err := rows.Scan(
			&n.ID, &n.Title, &n.Message, &n.Type, &n.Priority,
			&n.Metadata.KpiID, &n.Metadata.ActionURL, &n.Read, &n.Day, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
