// Package anomaly implements the week-over-week signal engine.
//
// The engine is a single-pass, stateless computation over a caller
// supplied fact window. It performs no I/O: fetching facts and
// persisting signals belong to collaborators.
package anomaly

import (
	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/internal/metrics"
	"github.com/marketpulse/backend/pkg/logger"
)

// Policy constants. These are fixed across all KPIs and campaigns, not
// per-KPI configuration.
const (
	// WindowDays is the minimum fact history one evaluation needs.
	WindowDays = 14

	// BucketDays is the length of each comparison bucket.
	BucketDays = 7

	// MagnitudeThreshold is the relative change at which a rule fires.
	MagnitudeThreshold = 0.20

	// StabilityThreshold bounds CTR movement for the landing-page rule:
	// below it, traffic quality is considered unchanged.
	StabilityThreshold = 0.05
)

// Engine evaluates week-over-week anomaly rules for one campaign's
// fact window.
type Engine struct {
	log *logger.Logger
}

// NewEngine creates a signal engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// Evaluate runs all rules over the trailing 14 days of facts and
// returns fired signals in rule order. Fewer than 14 days yields
// exactly one not-enough-history signal. An empty result is a valid
// outcome.
func (e *Engine) Evaluate(facts []contracts.DailyMetricFact) []contracts.Signal {
	if len(facts) < WindowDays {
		return []contracts.Signal{{
			ID:       contracts.SignalNotEnoughHistory,
			Severity: contracts.SeverityInfo,
			Window:   "wow",
		}}
	}

	// Two most recent non-overlapping 7-day buckets.
	window := facts[len(facts)-WindowDays:]
	prior := contracts.SumFacts(window[:BucketDays])
	current := contracts.SumFacts(window[BucketDays:])

	rates := wowRates{
		ctrPrior:   metrics.CTRPercent(prior.Clicks, prior.Impressions),
		ctrCurrent: metrics.CTRPercent(current.Clicks, current.Impressions),
		cvrPrior:   metrics.CVRPercent(prior.Conversions, prior.Clicks),
		cvrCurrent: metrics.CVRPercent(current.Conversions, current.Clicks),
		cpcPrior:   metrics.CPC(prior.Spend, prior.Clicks),
		cpcCurrent: metrics.CPC(current.Spend, current.Clicks),
		erPrior:    metrics.ERPercent(prior.Engagements, prior.Impressions),
		erCurrent:  metrics.ERPercent(current.Engagements, current.Impressions),
	}

	signals := rates.evaluate()

	if e.log != nil && len(signals) > 0 {
		for _, s := range signals {
			e.log.WithFields(map[string]interface{}{
				"signal":        s.ID,
				"metric":        s.Metric,
				"magnitude_pct": s.MagnitudePct,
			}).Warn("Anomaly signal fired")
		}
	}
	return signals
}

// wowRates holds the aggregate rates of the two buckets.
type wowRates struct {
	ctrPrior, ctrCurrent float64
	cvrPrior, cvrCurrent float64
	cpcPrior, cpcCurrent float64
	erPrior, erCurrent   float64
}

// evaluate applies the three rules in fixed order. Rules are
// independent; all may fire in the same run.
func (r wowRates) evaluate() []contracts.Signal {
	var signals []contracts.Signal

	// Landing-page regression: CVR collapses while CTR holds steady,
	// isolating a post-click funnel problem from a traffic problem.
	if cvrChange, ok := relativeChange(r.cvrCurrent, r.cvrPrior); ok && cvrChange <= -MagnitudeThreshold {
		if ctrChange, ok := relativeChange(r.ctrCurrent, r.ctrPrior); ok && abs(ctrChange) < StabilityThreshold {
			signals = append(signals, contracts.Signal{
				ID:           contracts.SignalLandingPageRegression,
				Severity:     contracts.SeverityCritical,
				Metric:       "cvr",
				Window:       "wow",
				MagnitudePct: metrics.Round2(cvrChange * 100),
			})
		}
	}

	// CPC spike.
	if cpcChange, ok := relativeChange(r.cpcCurrent, r.cpcPrior); ok && cpcChange >= MagnitudeThreshold {
		signals = append(signals, contracts.Signal{
			ID:           contracts.SignalCPCSpike,
			Severity:     contracts.SeverityWarning,
			Metric:       "cpc",
			Window:       "wow",
			MagnitudePct: metrics.Round2(cpcChange * 100),
		})
	}

	// Engagement decay.
	if erChange, ok := relativeChange(r.erCurrent, r.erPrior); ok && erChange <= -MagnitudeThreshold {
		signals = append(signals, contracts.Signal{
			ID:           contracts.SignalEngagementDecay,
			Severity:     contracts.SeverityWarning,
			Metric:       "er",
			Window:       "wow",
			MagnitudePct: metrics.Round2(erChange * 100),
		})
	}

	return signals
}

// relativeChange returns (current-prior)/prior. A zero prior makes the
// change undefined; the rule is skipped rather than producing Inf.
func relativeChange(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / prior, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
