package contracts

// Signal severity levels.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Signal identifiers emitted by the WoW engine. The tags are stable
// contract values consumed by dashboards and alerting.
const (
	SignalNotEnoughHistory      = "anomaly:not-enough-history"
	SignalLandingPageRegression = "anomaly:landing_page_regression:wow"
	SignalCPCSpike              = "anomaly:cpc_spike:wow"
	SignalEngagementDecay       = "anomaly:engagement_decay:wow"
)

// Signal is a transient anomaly flag produced by one engine
// invocation. Signals are never persisted by this service; collaborators
// decide how to surface them.
type Signal struct {
	ID           string   `json:"id"`
	Severity     Severity `json:"severity"`
	Metric       string   `json:"metric"` // "cvr", "cpc", "er", or "" for guards
	Window       string   `json:"window"` // always "wow" for this engine
	MagnitudePct float64  `json:"magnitude_pct"`
}
