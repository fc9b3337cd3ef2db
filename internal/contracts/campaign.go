package contracts

import "time"

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignDraft     CampaignStatus = "draft"
)

// Campaign is an advertising campaign tracked by the service. Lifetime
// counters are denormalized here for dashboard listings; the daily
// fact stream remains the source for all rate math.
type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"` // "conversions", "awareness", ...
	Platform    string         `json:"platform"`
	Impressions int64          `json:"impressions"`
	Clicks      int64          `json:"clicks"`
	Spend       float64        `json:"spend"`
	Status      CampaignStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CampaignUpdate carries the mutable fields of a campaign; nil fields
// are left unchanged.
type CampaignUpdate struct {
	Name        *string         `json:"name,omitempty"`
	Type        *string         `json:"type,omitempty"`
	Platform    *string         `json:"platform,omitempty"`
	Impressions *int64          `json:"impressions,omitempty"`
	Clicks      *int64          `json:"clicks,omitempty"`
	Spend       *float64        `json:"spend,omitempty"`
	Status      *CampaignStatus `json:"status,omitempty"`
}
