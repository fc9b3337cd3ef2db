package api

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/marketpulse/backend/internal/api/handlers"
	"github.com/marketpulse/backend/pkg/logger"
	"github.com/marketpulse/backend/pkg/redis"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Campaigns     *handlers.CampaignHandler
	Integrations  *handlers.IntegrationHandler
	Performance   *handlers.PerformanceHandler
	KPIs          *handlers.KPIHandler
	Notifications *handlers.NotificationHandler
	Hub           *Hub
	HealthCheck   func() error
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h Handlers, limiter *redis.RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler(h.HealthCheck)).Methods("GET")
	r.HandleFunc("/ws", h.Hub.Handle).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Campaigns
	api.HandleFunc("/campaigns", h.Campaigns.List).Methods("GET")
	api.HandleFunc("/campaigns", h.Campaigns.Create).Methods("POST")
	api.HandleFunc("/campaigns/{id}", h.Campaigns.Get).Methods("GET")
	api.HandleFunc("/campaigns/{id}", h.Campaigns.Update).Methods("PUT")
	api.HandleFunc("/campaigns/{id}", h.Campaigns.Delete).Methods("DELETE")
	api.HandleFunc("/campaigns/{id}/performance", h.Performance.Summary).Methods("GET")
	api.HandleFunc("/campaigns/{id}/signals/wow", h.Performance.WowSignals).Methods("GET")

	// Performance facts
	api.HandleFunc("/performance", h.Performance.Ingest).Methods("POST")

	// Integrations
	api.HandleFunc("/integrations", h.Integrations.List).Methods("GET")
	api.HandleFunc("/integrations", h.Integrations.Create).Methods("POST")
	api.HandleFunc("/integrations/{id}", h.Integrations.Update).Methods("PUT")
	api.HandleFunc("/integrations/{id}", h.Integrations.Delete).Methods("DELETE")

	// KPIs
	api.HandleFunc("/kpis", h.KPIs.List).Methods("GET")
	api.HandleFunc("/kpis/{id}", h.KPIs.Get).Methods("GET")
	api.HandleFunc("/kpis/{id}/history", h.KPIs.History).Methods("GET")

	// Notifications
	api.HandleFunc("/notifications", h.Notifications.List).Methods("GET")
	api.HandleFunc("/notifications/unread", h.Notifications.Unread).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", h.Notifications.MarkRead).Methods("POST")

	api.Use(rateLimitMiddleware(limiter, log))
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthHandler reports service and dependency health.
func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if check != nil {
			if err := check(); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"service": "marketpulse-api",
		})
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from handler panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware throttles API clients per IP with the Redis
// sliding window. With Redis disabled it passes everything through.
func rateLimitMiddleware(limiter *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := redis.APIRateLimit
			cfg.Key = clientIP(r)

			allowed, _, err := limiter.Allow(r.Context(), cfg)
			if err != nil {
				// Rate limiting is advisory; a broken limiter never
				// takes the API down.
				log.WithError(err).Warn("Rate limit check failed")
				allowed = true
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
