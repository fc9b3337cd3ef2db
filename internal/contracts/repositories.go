package contracts

import (
	"context"
	"time"
)

// FactRepository stores and retrieves daily metric facts.
type FactRepository interface {
	// Insert writes one fact; (campaign_id, date) is unique so
	// re-ingestion of the same day is an upsert.
	Insert(ctx context.Context, fact DailyMetricFact) error

	// GetRange returns facts for a campaign ordered ascending by date.
	GetRange(ctx context.Context, campaignID string, from, to time.Time) ([]DailyMetricFact, error)
}

// KPIRepository reads KPI configuration. The configuration itself is
// owned elsewhere; this service never mutates it.
type KPIRepository interface {
	List(ctx context.Context) ([]KPI, error)
	GetByID(ctx context.Context, id string) (*KPI, error)
}

// SnapshotRepository stores the append-only period snapshot history.
type SnapshotRepository interface {
	// Insert writes a snapshot; (kpi_id, period_label) is unique so a
	// retried tick cannot close the same period twice.
	Insert(ctx context.Context, snapshot KpiPeriodSnapshot) error

	// Latest returns the most recent snapshot for a KPI, or nil when
	// no period has closed yet.
	Latest(ctx context.Context, kpiID string) (*KpiPeriodSnapshot, error)

	// LastN returns up to n snapshots ordered descending by PeriodEnd.
	LastN(ctx context.Context, kpiID string, n int) ([]KpiPeriodSnapshot, error)

	// ListByKpi returns the full history ordered ascending by PeriodEnd.
	ListByKpi(ctx context.Context, kpiID string) ([]KpiPeriodSnapshot, error)
}

// NotificationRepository stores generated notifications.
type NotificationRepository interface {
	// Insert writes a notification. Returns false when a record with
	// the same dedup key already exists; the caller treats that as a
	// silent no-op.
	Insert(ctx context.Context, n Notification) (bool, error)

	List(ctx context.Context, limit int) ([]Notification, error)
	ListUnread(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// CampaignRepository stores campaign records.
type CampaignRepository interface {
	List(ctx context.Context) ([]Campaign, error)
	GetByID(ctx context.Context, id string) (*Campaign, error)
	Create(ctx context.Context, c Campaign) (*Campaign, error)
	Update(ctx context.Context, id string, updates CampaignUpdate) (*Campaign, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// IntegrationRepository stores ad-platform integration records.
type IntegrationRepository interface {
	List(ctx context.Context) ([]Integration, error)
	Create(ctx context.Context, i Integration) (*Integration, error)
	Update(ctx context.Context, id string, updates IntegrationUpdate) (*Integration, error)
	Delete(ctx context.Context, id string) (bool, error)
}
