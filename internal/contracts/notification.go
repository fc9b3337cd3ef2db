package contracts

import "time"

// NotificationType is the lifecycle class of a notification.
type NotificationType string

const (
	NotificationReminder       NotificationType = "reminder"
	NotificationAlert          NotificationType = "alert"
	NotificationPeriodComplete NotificationType = "period_complete"
	NotificationTrendAlert     NotificationType = "trend_alert"
)

// NotificationPriority controls delivery urgency.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// NotificationMetadata carries the structured context of a notification.
type NotificationMetadata struct {
	KpiID     string `json:"kpi_id"`
	ActionURL string `json:"action_url,omitempty"`
}

// Notification is a user-facing record produced by the generator.
// Emission is idempotent per (KPI, day, type): DedupKey() is enforced
// as a unique constraint by the store so scheduler retries never
// duplicate.
type Notification struct {
	ID        string               `json:"id,omitempty"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Type      NotificationType     `json:"type"`
	Priority  NotificationPriority `json:"priority"`
	Metadata  NotificationMetadata `json:"metadata"`
	Read      bool                 `json:"read"`
	Day       time.Time            `json:"day"` // tick day, truncated to date
	CreatedAt time.Time            `json:"created_at"`
}

// DedupKey returns the idempotency key for this notification.
func (n *Notification) DedupKey() string {
	return n.Metadata.KpiID + ":" + n.Day.UTC().Format("2006-01-02") + ":" + string(n.Type)
}
