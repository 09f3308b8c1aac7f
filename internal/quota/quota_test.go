package quota

import (
	"testing"
	"time"
)

func TestMonthKey(t *testing.T) {
	ts := time.Date(2025, time.August, 31, 23, 59, 0, 0, time.UTC)
	if got := MonthKey(ts); got != "2025-08" {
		t.Fatalf("MonthKey = %q, want 2025-08", got)
	}
}

func TestOpen_MissingFileIsZeroed(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if u := l.Usage("2025-08"); u.RequestsUsed != 0 || u.JobsUsed != 0 {
		t.Fatalf("expected zero usage, got %+v", u)
	}
}

func TestCharge_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	l, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Charge("2025-08", 1, 42); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if err := l.Charge("2025-08", 2, 8); err != nil {
		t.Fatalf("charge: %v", err)
	}

	l2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	u := l2.Usage("2025-08")
	if u.RequestsUsed != 3 || u.JobsUsed != 50 {
		t.Fatalf("reopened usage = %+v, want {3 50}", u)
	}
}

func TestCharge_MergesConcurrentWriters(t *testing.T) {
	dir := t.TempDir()

	l1, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	// both handles charge after opening against the same file; the second
	// write must keep the first one's counters
	if err := l1.Charge("2025-08", 1, 10); err != nil {
		t.Fatal(err)
	}
	if err := l2.Charge("2025-08", 2, 20); err != nil {
		t.Fatal(err)
	}

	l3, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	u := l3.Usage("2025-08")
	if u.RequestsUsed != 3 || u.JobsUsed != 30 {
		t.Fatalf("usage = %+v, want {3 30}", u)
	}
}

func TestCharge_MonthsAreIsolated(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Charge("2025-07", 10, 100); err != nil {
		t.Fatal(err)
	}
	if u := l.Usage("2025-08"); u.RequestsUsed != 0 || u.JobsUsed != 0 {
		t.Fatalf("new month inherited old counters: %+v", u)
	}
}

func TestRemaining_NeverNegative(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := Plan{MaxRequestsPerMonth: 5, MaxJobsPerMonth: 10}
	if err := l.Charge("2025-08", 7, 25); err != nil {
		t.Fatal(err)
	}
	if got := l.RemainingRequests("2025-08", p); got != 0 {
		t.Fatalf("RemainingRequests = %d, want 0", got)
	}
	if got := l.RemainingJobs("2025-08", p); got != 0 {
		t.Fatalf("RemainingJobs = %d, want 0", got)
	}
}

func TestExhausted(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := Plan{MaxRequestsPerMonth: 2, MaxJobsPerMonth: 100}

	if l.Exhausted("2025-08", p) {
		t.Fatalf("fresh month must not be exhausted")
	}
	if err := l.Charge("2025-08", 2, 10); err != nil {
		t.Fatal(err)
	}
	if !l.Exhausted("2025-08", p) {
		t.Fatalf("request ceiling reached, expected exhausted")
	}
}

func TestUnlimitedPlan(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Charge("2025-08", 1000000, 1000000); err != nil {
		t.Fatal(err)
	}
	if l.Exhausted("2025-08", Plan{}) {
		t.Fatalf("zero-valued plan must never exhaust")
	}
}
