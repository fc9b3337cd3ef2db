package scheduler

import (
	"testing"
	"time"
)

func result(success bool) JobResult {
	return JobResult{
		JobName:   "kpi_daily_tick",
		StartTime: time.Now(),
		Success:   success,
	}
}

func TestJobHistoryTrimsToLimit(t *testing.T) {
	var h JobHistory
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(result(true))
	}

	if len(h.Results) != historyLimit {
		t.Errorf("history holds %d results, want %d", len(h.Results), historyLimit)
	}
}

func TestJobHistoryLatestResults(t *testing.T) {
	var h JobHistory
	h.AddResult(result(true))
	h.AddResult(result(false))
	h.AddResult(result(true))

	latest := h.LatestResults(2)
	if len(latest) != 2 {
		t.Fatalf("got %d results, want 2", len(latest))
	}
	if !latest[1].Success {
		t.Error("newest result should be the last added")
	}

	if got := h.LatestResults(10); len(got) != 3 {
		t.Errorf("over-asking returned %d, want all 3", len(got))
	}
}

func TestJobHistorySuccessRate(t *testing.T) {
	var h JobHistory
	if rate := h.SuccessRate(); rate != 0 {
		t.Errorf("empty history rate = %v, want 0", rate)
	}

	h.AddResult(result(true))
	h.AddResult(result(true))
	h.AddResult(result(false))
	h.AddResult(result(true))

	if rate := h.SuccessRate(); rate != 0.75 {
		t.Errorf("rate = %v, want 0.75", rate)
	}
	if failures := h.FailureCount(); failures != 1 {
		t.Errorf("failures = %d, want 1", failures)
	}
}
