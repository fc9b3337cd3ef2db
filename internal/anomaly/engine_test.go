package anomaly

import (
	"testing"
	"time"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// weekOf spreads bucket totals over 7 daily facts starting at start.
// The engine sums raw counters per bucket, so the daily split does not
// matter; everything lands on day one.
func weekOf(start time.Time, totals contracts.WeeklyTotals) []contracts.DailyMetricFact {
	facts := make([]contracts.DailyMetricFact, 7)
	for i := range facts {
		facts[i] = contracts.DailyMetricFact{
			CampaignID: "c-1",
			Date:       start.AddDate(0, 0, i),
		}
	}
	facts[0].Impressions = totals.Impressions
	facts[0].Clicks = totals.Clicks
	facts[0].Conversions = totals.Conversions
	facts[0].Spend = totals.Spend
	facts[0].Engagements = totals.Engagements
	return facts
}

// window builds a contiguous 14-day fact window from two bucket totals.
func window(prior, current contracts.WeeklyTotals) []contracts.DailyMetricFact {
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	facts := weekOf(start, prior)
	return append(facts, weekOf(start.AddDate(0, 0, 7), current)...)
}

func signalIDs(signals []contracts.Signal) []string {
	ids := make([]string, len(signals))
	for i, s := range signals {
		ids[i] = s.ID
	}
	return ids
}

func assertSignals(t *testing.T, got []contracts.Signal, want ...string) {
	t.Helper()
	ids := signalIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("signals = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("signals = %v, want %v", ids, want)
		}
	}
}

func TestEvaluateNotEnoughHistory(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	facts := weekOf(start, contracts.WeeklyTotals{Impressions: 1000, Clicks: 10})

	signals := engine.Evaluate(facts)

	assertSignals(t, signals, contracts.SignalNotEnoughHistory)
	if signals[0].Severity != contracts.SeverityInfo {
		t.Errorf("severity = %v, want info", signals[0].Severity)
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	assertSignals(t, engine.Evaluate(nil), contracts.SignalNotEnoughHistory)
}

func TestEvaluateQuietWindow(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	steady := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 10000, Engagements: 5000}

	signals := engine.Evaluate(window(steady, steady))

	if len(signals) != 0 {
		t.Errorf("signals = %v, want none", signalIDs(signals))
	}
}

func TestEvaluateLandingPageRegression(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// CVR drops 5.0% -> ~3.53% (a ~30% drop) while CTR moves only
	// 1.00% -> 1.02%, inside the stability band.
	prior := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 10000, Engagements: 5000}
	current := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1020, Conversions: 36, Spend: 10000, Engagements: 5000}

	signals := engine.Evaluate(window(prior, current))

	assertSignals(t, signals, contracts.SignalLandingPageRegression)
	if signals[0].Severity != contracts.SeverityCritical {
		t.Errorf("severity = %v, want critical", signals[0].Severity)
	}
	if signals[0].Metric != "cvr" {
		t.Errorf("metric = %q, want cvr", signals[0].Metric)
	}
	if signals[0].MagnitudePct > -20 {
		t.Errorf("magnitude = %v, want <= -20", signals[0].MagnitudePct)
	}
}

func TestEvaluateRegressionSuppressedByUnstableCTR(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// Same CVR collapse, but clicks halve so CTR also moved: this is a
	// traffic problem, not a landing-page problem.
	prior := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 10000}
	current := contracts.WeeklyTotals{Impressions: 100000, Clicks: 500, Conversions: 18, Spend: 10000}

	signals := engine.Evaluate(window(prior, current))

	for _, id := range signalIDs(signals) {
		if id == contracts.SignalLandingPageRegression {
			t.Errorf("regression fired despite unstable CTR: %v", signalIDs(signals))
		}
	}
}

func TestEvaluateCPCSpike(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// CPC moves 5.00 -> 7.00, a +40% spike.
	prior := contracts.WeeklyTotals{Impressions: 200000, Clicks: 2000, Conversions: 80, Spend: 10000}
	current := contracts.WeeklyTotals{Impressions: 200000, Clicks: 2000, Conversions: 80, Spend: 14000}

	signals := engine.Evaluate(window(prior, current))

	assertSignals(t, signals, contracts.SignalCPCSpike)
	if signals[0].MagnitudePct != 40 {
		t.Errorf("magnitude = %v, want 40", signals[0].MagnitudePct)
	}
}

func TestEvaluateEngagementDecay(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// ER moves 5.0% -> 3.5%, a -30% decay.
	prior := contracts.WeeklyTotals{Impressions: 200000, Engagements: 10000}
	current := contracts.WeeklyTotals{Impressions: 200000, Engagements: 7000}

	signals := engine.Evaluate(window(prior, current))

	assertSignals(t, signals, contracts.SignalEngagementDecay)
	if signals[0].MagnitudePct != -30 {
		t.Errorf("magnitude = %v, want -30", signals[0].MagnitudePct)
	}
}

func TestEvaluateMultipleRulesFireInOrder(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// CVR collapses with stable CTR, spend jumps, engagement decays:
	// all three rules fire, in rule-evaluation order.
	prior := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 5000, Engagements: 5000}
	current := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 30, Spend: 8000, Engagements: 3000}

	signals := engine.Evaluate(window(prior, current))

	assertSignals(t, signals,
		contracts.SignalLandingPageRegression,
		contracts.SignalCPCSpike,
		contracts.SignalEngagementDecay,
	)
}

func TestEvaluateZeroPriorSkipsRule(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// No prior engagements: the decay rule has no defined relative
	// change and must be skipped, not fired with an infinite magnitude.
	prior := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 10000}
	current := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 10000, Engagements: 50}

	signals := engine.Evaluate(window(prior, current))

	if len(signals) != 0 {
		t.Errorf("signals = %v, want none", signalIDs(signals))
	}
}

func TestEvaluateUsesTrailingWindow(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	// 21 days: a noisy oldest week must be ignored; only the trailing
	// 14 days are evaluated, and they are steady.
	steady := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 50, Spend: 10000, Engagements: 5000}
	noisy := contracts.WeeklyTotals{Impressions: 100000, Clicks: 1000, Conversions: 5, Spend: 30000, Engagements: 500}

	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	facts := weekOf(start, noisy)
	facts = append(facts, weekOf(start.AddDate(0, 0, 7), steady)...)
	facts = append(facts, weekOf(start.AddDate(0, 0, 14), steady)...)

	signals := engine.Evaluate(facts)

	if len(signals) != 0 {
		t.Errorf("signals = %v, want none", signalIDs(signals))
	}
}
