package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/metrics"
	"github.com/marketpulse/backend/pkg/logger"
)

// Summary is the aggregate performance view of a campaign over a date
// range. Rates are derived from summed counters, never averaged.
type Summary struct {
	CampaignID  string  `json:"campaign_id"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Days        int     `json:"days"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
	Engagements float64 `json:"engagements"`
	Revenue     float64 `json:"revenue"`
	CTRPercent  float64 `json:"ctr_percent"`
	CPC         float64 `json:"cpc"`
	CPM         float64 `json:"cpm"`
	CVRPercent  float64 `json:"cvr_percent"`
	CPA         float64 `json:"cpa"`
	ERPercent   float64 `json:"er_percent"`
	ROASPercent float64 `json:"roas_percent"`
	ROIPercent  float64 `json:"roi_percent"`
}

// Service ingests daily facts and computes aggregate summaries.
type Service struct {
	facts contracts.FactRepository
	log   *logger.Logger
}

// NewService creates a performance service.
func NewService(facts contracts.FactRepository, log *logger.Logger) *Service {
	return &Service{facts: facts, log: log}
}

// Ingest sanitizes and stores one daily fact.
func (s *Service) Ingest(ctx context.Context, f contracts.DailyMetricFact) error {
	if f.CampaignID == "" {
		return fmt.Errorf("fact missing campaign_id")
	}
	if f.Date.IsZero() {
		return fmt.Errorf("fact missing date")
	}

	f = f.Sanitize()
	f.Date = f.Date.UTC().Truncate(24 * time.Hour)

	if err := s.facts.Insert(ctx, f); err != nil {
		return fmt.Errorf("insert fact %s/%s: %w", f.CampaignID, f.Date.Format("2006-01-02"), err)
	}

	s.log.WithFields(map[string]interface{}{
		"campaign_id": f.CampaignID,
		"date":        f.Date.Format("2006-01-02"),
	}).Debug("Fact ingested")
	return nil
}

// Summary aggregates a campaign's facts over [from, to] and derives
// every display rate.
func (s *Service) Summary(ctx context.Context, campaignID string, from, to time.Time) (*Summary, error) {
	facts, err := s.facts.GetRange(ctx, campaignID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load facts for %s: %w", campaignID, err)
	}

	totals := contracts.SumFacts(facts)
	var revenue float64
	for _, f := range facts {
		revenue += f.Sanitize().Revenue
	}

	return &Summary{
		CampaignID:  campaignID,
		From:        from.Format("2006-01-02"),
		To:          to.Format("2006-01-02"),
		Days:        len(facts),
		Impressions: totals.Impressions,
		Clicks:      totals.Clicks,
		Conversions: totals.Conversions,
		Spend:       totals.Spend,
		Engagements: totals.Engagements,
		Revenue:     revenue,
		CTRPercent:  metrics.CTRPercent(totals.Clicks, totals.Impressions),
		CPC:         metrics.CPC(totals.Spend, totals.Clicks),
		CPM:         metrics.CPM(totals.Spend, totals.Impressions),
		CVRPercent:  metrics.CVRPercent(totals.Conversions, totals.Clicks),
		CPA:         metrics.CPA(totals.Spend, totals.Conversions),
		ERPercent:   metrics.ERPercent(totals.Engagements, totals.Impressions),
		ROASPercent: metrics.Round2(metrics.ROASPercent(revenue, totals.Spend)),
		ROIPercent:  metrics.Round2(metrics.ROIPercent(revenue, totals.Spend)),
	}, nil
}

// TrailingWindow returns the facts covering the trailing n days ending
// at day, the shape the anomaly engine consumes.
func (s *Service) TrailingWindow(ctx context.Context, campaignID string, days int, day time.Time) ([]contracts.DailyMetricFact, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	from := day.AddDate(0, 0, -(days - 1))
	return s.facts.GetRange(ctx, campaignID, from, day)
}
