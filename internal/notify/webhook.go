package notify

import (
	"context"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/config"
	"github.com/marketpulse/backend/pkg/httputil"
	"github.com/marketpulse/backend/pkg/logger"
)

// WebhookDispatcher forwards created notifications to an external
// endpoint (Slack bridge, ops relay). Delivery is best-effort: a
// failed POST is logged and dropped, never retried across ticks, and
// never blocks notification creation.
type WebhookDispatcher struct {
	client *httputil.Client
	url    string
	log    *logger.Logger
}

// webhookPayload is the wire shape posted to the endpoint.
type webhookPayload struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
	KpiID    string `json:"kpi_id"`
	Day      string `json:"day"`
}

// NewWebhookDispatcher creates a dispatcher from config, nil when
// webhooks are disabled.
func NewWebhookDispatcher(cfg config.WebhookConfig, log *logger.Logger) *WebhookDispatcher {
	if !cfg.Enabled || cfg.URL == "" {
		return nil
	}

	client := httputil.NewWithTimeout(log, cfg.Timeout).
		WithRateLimit(cfg.RequestsPerSec, cfg.Burst)

	return &WebhookDispatcher{
		client: client,
		url:    cfg.URL,
		log:    log,
	}
}

// Dispatch posts one notification to the webhook endpoint.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, n contracts.Notification) {
	payload := webhookPayload{
		Title:    n.Title,
		Message:  n.Message,
		Type:     string(n.Type),
		Priority: string(n.Priority),
		KpiID:    n.Metadata.KpiID,
		Day:      n.Day.Format("2006-01-02"),
	}

	start := time.Now()
	resp, err := d.client.PostJSON(ctx, d.url, payload)
	if err != nil {
		d.log.WithError(err).WithField("kpi_id", n.Metadata.KpiID).Warn("Webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		d.log.WithFields(map[string]interface{}{
			"status_code": resp.StatusCode,
			"kpi_id":      n.Metadata.KpiID,
		}).Warn("Webhook endpoint rejected notification")
		return
	}

	d.log.WithFields(map[string]interface{}{
		"kpi_id":   n.Metadata.KpiID,
		"type":     string(n.Type),
		"duration": time.Since(start),
	}).Debug("Webhook delivered")
}
