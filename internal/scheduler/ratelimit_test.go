package scheduler

import (
	"testing"
	"time"
)

func TestAgencyLimiterBurstThenDeny(t *testing.T) {
	l := NewAgencyLimiter(1.0, 2)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("ag-1") {
		t.Fatal("first call should pass")
	}
	if !l.Allow("ag-1") {
		t.Fatal("second call should pass within burst")
	}
	if l.Allow("ag-1") {
		t.Fatal("third call should be throttled")
	}
}

func TestAgencyLimiterRefill(t *testing.T) {
	l := NewAgencyLimiter(1.0, 1)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("ag-1") {
		t.Fatal("first call should pass")
	}
	if l.Allow("ag-1") {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("ag-1") {
		t.Fatal("token should have accrued after 1.5s at 1/s")
	}
	if l.Allow("ag-1") {
		t.Fatal("refill must cap at burst")
	}
}

func TestAgencyLimiterIndependentBuckets(t *testing.T) {
	l := NewAgencyLimiter(1.0, 1)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("ag-1") {
		t.Fatal("ag-1 should pass")
	}
	if !l.Allow("ag-2") {
		t.Fatal("ag-2 has its own bucket")
	}
}
