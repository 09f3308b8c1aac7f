package util

import (
	"context"
	"testing"
)

func TestHostLimiter_PerHostBuckets(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	if err := hl.WaitURL(ctx, "https://jooble.org/api/k"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	// a different vendor has its own bucket and is not starved
	if err := hl.WaitURL(ctx, "https://jsearch.p.rapidapi.com/search"); err != nil {
		t.Fatalf("second host: %v", err)
	}

	// the first host's burst token is spent, so a wait must start; a
	// canceled context surfaces that without sleeping in the test
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hl.WaitURL(canceled, "https://jooble.org/api/k"); err == nil {
		t.Fatalf("expected wait on the spent bucket to honor cancellation")
	}
}

func TestHostLimiter_UnparseableURLStillLimited(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	if err := hl.WaitURL(context.Background(), "::bad target"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hl.WaitURL(canceled, "::bad target"); err == nil {
		t.Fatalf("unparseable targets must share the fallback bucket")
	}
}

func TestNewHostLimiter_BurstFloor(t *testing.T) {
	hl := NewHostLimiter(4, 0)
	if err := hl.WaitURL(context.Background(), "https://jooble.org/api/k"); err != nil {
		t.Fatalf("zero burst must clamp to 1: %v", err)
	}
}
