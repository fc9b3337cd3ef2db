package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/kpi"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// KPIHandler serves KPI attainment views and snapshot history.
type KPIHandler struct {
	kpis      contracts.KPIRepository
	snapshots contracts.SnapshotRepository
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewKPIHandler creates a KPI handler.
func NewKPIHandler(kpis contracts.KPIRepository, snapshots contracts.SnapshotRepository, cache *redis.Cache, log *logger.Logger) *KPIHandler {
	return &KPIHandler{
		kpis:      kpis,
		snapshots: snapshots,
		cache:     cache,
		logger:    log,
	}
}

// kpiView is a KPI record with its derived attainment.
type kpiView struct {
	contracts.KPI
	Attainment kpi.Attainment `json:"attainment"`
}

// List returns all KPIs with attainment.
// GET /api/kpis
func (h *KPIHandler) List(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.kpis.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list KPIs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve KPIs")
		return
	}

	views := make([]kpiView, len(kpis))
	for i, k := range kpis {
		views[i] = kpiView{
			KPI:        k,
			Attainment: kpi.Evaluate(k.CurrentValue, k.TargetValue, k.LowerIsBetter),
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    views,
	})
}

// Get returns one KPI with attainment. The view is cached briefly;
// the daily tick invalidates it on period close.
// GET /api/kpis/{id}
func (h *KPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var view kpiView
	cacheKey := redis.KpiSummaryKey(id)
	if hit, err := h.cache.Get(r.Context(), cacheKey, &view); err == nil && hit {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    view,
		})
		return
	}

	k, err := h.kpis.GetByID(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("kpi_id", id).Error("Failed to get KPI")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve KPI")
		return
	}
	if k == nil {
		respondError(w, http.StatusNotFound, "KPI not found")
		return
	}

	view = kpiView{
		KPI:        *k,
		Attainment: kpi.Evaluate(k.CurrentValue, k.TargetValue, k.LowerIsBetter),
	}
	if err := h.cache.Set(r.Context(), cacheKey, view, redis.TTLMedium); err != nil {
		h.logger.WithError(err).Warn("KPI summary cache write failed")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    view,
	})
}

// History returns the full snapshot history of a KPI, oldest first.
// GET /api/kpis/{id}/history
func (h *KPIHandler) History(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	history, err := h.snapshots.ListByKpi(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("kpi_id", id).Error("Failed to load snapshot history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	if history == nil {
		history = []contracts.KpiPeriodSnapshot{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    history,
	})
}
