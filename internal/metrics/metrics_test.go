package metrics

import "testing"

func TestMetrics_ZeroTrafficSuccessRate(t *testing.T) {
	m := New()
	snap := m.Snapshot()
	if snap.SuccessRate != 100 {
		t.Fatalf("expected 100 with no traffic, got %d", snap.SuccessRate)
	}
}

func TestMetrics_SuccessRateAfterMixedTraffic(t *testing.T) {
	m := New()
	m.RecordSuccess()
	m.RecordFailure()
	snap := m.Snapshot()
	if snap.SuccessRate != 50 {
		t.Fatalf("expected 50 after one success and one failure, got %d", snap.SuccessRate)
	}
	if snap.TotalRequests != snap.SuccessfulRequests+snap.FailedRequests {
		t.Fatalf("total must equal success+failure: %+v", snap)
	}
}

func TestMetrics_CountersAreMonotonic(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.RecordSuccess()
	}
	m.RecordQuotaError()
	m.RecordRetryAttempt()

	snap := m.Snapshot()
	if snap.TotalRequests != 5 || snap.SuccessfulRequests != 5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.QuotaErrors != 1 || snap.RetryAttempts != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
