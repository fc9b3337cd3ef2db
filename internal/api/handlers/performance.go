package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/marketpulse/backend/internal/anomaly"
	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/performance"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// PerformanceHandler handles fact ingestion, summaries and WoW signal
// queries.
type PerformanceHandler struct {
	service *performance.Service
	engine  *anomaly.Engine
	cache   *redis.Cache
	logger  *logger.Logger
}

// NewPerformanceHandler creates a performance handler.
func NewPerformanceHandler(service *performance.Service, engine *anomaly.Engine, cache *redis.Cache, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		service: service,
		engine:  engine,
		cache:   cache,
		logger:  log,
	}
}

// ingestRequest is the wire shape for one daily fact.
type ingestRequest struct {
	CampaignID  string  `json:"campaign_id"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Spend       float64 `json:"spend"`
	Engagements float64 `json:"engagements"`
	Revenue     float64 `json:"revenue"`
}

// Ingest stores one daily fact.
// POST /api/performance
func (h *PerformanceHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	fact := contracts.DailyMetricFact{
		CampaignID:  req.CampaignID,
		Date:        date,
		Impressions: req.Impressions,
		Clicks:      req.Clicks,
		Conversions: req.Conversions,
		Spend:       req.Spend,
		Engagements: req.Engagements,
		Revenue:     req.Revenue,
	}
	if err := h.service.Ingest(r.Context(), fact); err != nil {
		h.logger.WithError(err).Error("Fact ingestion failed")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
	})
}

// Summary returns aggregate metrics for a campaign.
// GET /api/campaigns/{id}/performance?days=30
func (h *PerformanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["id"]

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -(days - 1))

	summary, err := h.service.Summary(r.Context(), campaignID, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("campaign_id", campaignID).Error("Summary computation failed")
		respondError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}

// WowSignals returns the week-over-week anomaly signals for a
// campaign. The nightly scan result is served from cache when present;
// otherwise the engine runs on the spot.
// GET /api/campaigns/{id}/signals/wow
func (h *PerformanceHandler) WowSignals(w http.ResponseWriter, r *http.Request) {
	campaignID := mux.Vars(r)["id"]
	day := time.Now().UTC().Truncate(24 * time.Hour)

	var signals []contracts.Signal
	cacheKey := redis.WowSignalsKey(campaignID, day.Format("2006-01-02"))
	hit, err := h.cache.Get(r.Context(), cacheKey, &signals)
	if err != nil {
		h.logger.WithError(err).Warn("Signal cache read failed")
	}

	if !hit {
		facts, err := h.service.TrailingWindow(r.Context(), campaignID, anomaly.WindowDays, day)
		if err != nil {
			h.logger.WithError(err).WithField("campaign_id", campaignID).Error("Fact window load failed")
			respondError(w, http.StatusInternalServerError, "Failed to load fact window")
			return
		}

		signals = h.engine.Evaluate(facts)
		if err := h.cache.Set(r.Context(), cacheKey, signals, redis.TTLDaily); err != nil {
			h.logger.WithError(err).Warn("Signal cache write failed")
		}
	}

	if signals == nil {
		signals = []contracts.Signal{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    signals,
	})
}
