package contracts

import "time"

// IntegrationStatus is the connection state of an ad-platform
// integration.
type IntegrationStatus string

const (
	IntegrationConnected    IntegrationStatus = "connected"
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationError        IntegrationStatus = "error"
)

// Integration is the record of a linked advertising or analytics
// platform. Credential exchange and data pulls happen in external
// collaborators; this service only tracks the link state.
type Integration struct {
	ID        string            `json:"id"`
	Platform  string            `json:"platform"`
	Status    IntegrationStatus `json:"status"`
	AccountID string            `json:"account_id,omitempty"`
	LastSync  *time.Time        `json:"last_sync,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// IntegrationUpdate carries the mutable fields of an integration; nil
// fields are left unchanged. Setting Status to connected stamps
// LastSync.
type IntegrationUpdate struct {
	Status    *IntegrationStatus `json:"status,omitempty"`
	AccountID *string            `json:"account_id,omitempty"`
}
