// Package metrics provides pure, stateless marketing ratio calculators.
//
// Every function takes raw counters, coerces non-finite inputs to 0, and
// degrades to 0 on zero denominators. Nothing here ever returns NaN or
// Inf, and nothing panics: a zero result reads as "insufficient volume",
// not an error.
package metrics

import "math"

// Round2 rounds to 2 decimal places, half away from zero. All display
// rates in this package go through it.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// sanitize coerces non-finite counters to 0 before any division.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CTRPercent returns clicks/impressions as a percentage, rounded.
func CTRPercent(clicks, impressions float64) float64 {
	clicks, impressions = sanitize(clicks), sanitize(impressions)
	if impressions <= 0 {
		return 0
	}
	return Round2(clicks / impressions * 100)
}

// CPC returns spend per click, rounded.
func CPC(spend, clicks float64) float64 {
	spend, clicks = sanitize(spend), sanitize(clicks)
	if clicks <= 0 {
		return 0
	}
	return Round2(spend / clicks)
}

// CPM returns spend per thousand impressions, rounded.
func CPM(spend, impressions float64) float64 {
	spend, impressions = sanitize(spend), sanitize(impressions)
	if impressions <= 0 {
		return 0
	}
	return Round2(spend / impressions * 1000)
}

// CVRPercent returns conversions/clicks as a percentage, rounded.
func CVRPercent(conversions, clicks float64) float64 {
	conversions, clicks = sanitize(conversions), sanitize(clicks)
	if clicks <= 0 {
		return 0
	}
	return Round2(conversions / clicks * 100)
}

// CPA returns spend per conversion, rounded.
func CPA(spend, conversions float64) float64 {
	spend, conversions = sanitize(spend), sanitize(conversions)
	if conversions <= 0 {
		return 0
	}
	return Round2(spend / conversions)
}

// CPL returns spend per lead, rounded.
func CPL(spend, leads float64) float64 {
	spend, leads = sanitize(spend), sanitize(leads)
	if leads <= 0 {
		return 0
	}
	return Round2(spend / leads)
}

// ERPercent returns engagements/impressions as a percentage, rounded.
func ERPercent(engagements, impressions float64) float64 {
	engagements, impressions = sanitize(engagements), sanitize(impressions)
	if impressions <= 0 {
		return 0
	}
	return Round2(engagements / impressions * 100)
}

// ROASPercent returns revenue/spend as a percentage. Unrounded: callers
// that display it apply Round2 themselves; intermediate consumers keep
// full precision.
func ROASPercent(revenue, spend float64) float64 {
	revenue, spend = sanitize(revenue), sanitize(spend)
	if spend <= 0 {
		return 0
	}
	return revenue / spend * 100
}

// ROIPercent returns (revenue-spend)/spend as a percentage. Unrounded,
// same convention as ROASPercent.
func ROIPercent(revenue, spend float64) float64 {
	revenue, spend = sanitize(revenue), sanitize(spend)
	if spend <= 0 {
		return 0
	}
	return (revenue - spend) / spend * 100
}
