package kpi

import (
	"math"
	"testing"
)

func TestDeltaPct(t *testing.T) {
	tests := []struct {
		name            string
		current, target float64
		want            *float64
	}{
		{"above target", 120, 100, floatPtr(20)},
		{"below target", 80, 100, floatPtr(-20)},
		{"at target", 100, 100, floatPtr(0)},
		{"no target", 50, 0, nil},
		{"negative target", 50, -10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaPct(tt.current, tt.target)
			assertFloatPtr(t, got, tt.want)
		})
	}
}

func TestEffectiveDeltaPct(t *testing.T) {
	tests := []struct {
		name            string
		current, target float64
		lowerIsBetter   bool
		want            *float64
	}{
		{"higher is better, beating target", 120, 100, false, floatPtr(20)},
		{"lower is better, beating target", 80, 100, true, floatPtr(20)},
		{"lower is better, missing target", 120, 100, true, floatPtr(-20)},
		{"no target", 50, 0, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveDeltaPct(tt.current, tt.target, tt.lowerIsBetter)
			assertFloatPtr(t, got, tt.want)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		delta    float64
		nearBand float64
		want     Band
	}{
		{"well above", 10, 5, BandAbove},
		{"well below", -10, 5, BandBelow},
		{"inside band", 3, 5, BandNear},
		{"exactly at upper edge", 5, 5, BandNear},
		{"exactly at lower edge", -5, 5, BandNear},
		{"zero band, positive", 0.1, 0, BandAbove},
		{"zero band, zero", 0, 0, BandNear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.delta, tt.nearBand); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.delta, tt.nearBand, got, tt.want)
			}
		})
	}
}

func TestAttainmentPct(t *testing.T) {
	tests := []struct {
		name            string
		current, target float64
		lowerIsBetter   bool
		want            *float64
	}{
		{"higher is better, halfway", 50, 100, false, floatPtr(50)},
		{"higher is better, beating target", 150, 100, false, floatPtr(150)},
		{"lower is better, under budget", 50, 100, true, floatPtr(200)},
		{"lower is better, nothing spent", 0, 100, true, floatPtr(100)},
		{"lower is better, over budget", 200, 100, true, floatPtr(50)},
		{"no target", 50, 0, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AttainmentPct(tt.current, tt.target, tt.lowerIsBetter)
			assertFloatPtr(t, got, tt.want)
		})
	}
}

func TestAttainmentFillPct(t *testing.T) {
	tests := []struct {
		name  string
		input *float64
		want  float64
	}{
		{"clamps above 100", floatPtr(150), 100},
		{"clamps below 0", floatPtr(-20), 0},
		{"passes through", floatPtr(73.5), 73.5},
		{"nil is zero", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AttainmentFillPct(tt.input); got != tt.want {
				t.Errorf("AttainmentFillPct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	a := Evaluate(2.4, 2.0, false)

	if a.Band != BandAbove {
		t.Errorf("Band = %v, want above", a.Band)
	}
	if a.DeltaPct == nil || *a.DeltaPct != 20 {
		t.Errorf("DeltaPct = %v, want 20", a.DeltaPct)
	}
	if a.AttainmentPct == nil || *a.AttainmentPct != 120 {
		t.Errorf("AttainmentPct = %v, want 120", a.AttainmentPct)
	}
	if a.FillPct != 100 {
		t.Errorf("FillPct = %v, want 100", a.FillPct)
	}
}

func TestEvaluateNoTarget(t *testing.T) {
	a := Evaluate(2.4, 0, false)

	if a.DeltaPct != nil || a.EffectiveDeltaPct != nil || a.AttainmentPct != nil {
		t.Errorf("expected nil deltas for unset target, got %+v", a)
	}
	if a.Band != BandNear {
		t.Errorf("Band = %v, want near", a.Band)
	}
	if a.FillPct != 0 {
		t.Errorf("FillPct = %v, want 0", a.FillPct)
	}
}

func floatPtr(v float64) *float64 { return &v }

func assertFloatPtr(t *testing.T, got, want *float64) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Fatalf("got %v, want %v", fmtPtr(got), fmtPtr(want))
	}
	if got != nil && math.Abs(*got-*want) > 1e-9 {
		t.Errorf("got %v, want %v", *got, *want)
	}
}

func fmtPtr(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
