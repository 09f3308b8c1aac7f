package util

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// unknownHost buckets requests whose URL has no parseable host, so even
// malformed targets stay rate-limited.
const unknownHost = "_"

// HostLimiter enforces a per-vendor request rate, keyed by hostname. Every
// vendor endpoint (jooble.org, the rapidapi gateways, the scraped board)
// gets its own token bucket, so one vendor backing off never slows the
// others down.
type HostLimiter struct {
	perSec float64
	burst  int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		perSec:  reqPerSec,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// WaitURL blocks until the target's host may issue another request, or the
// context ends.
func (hl *HostLimiter) WaitURL(ctx context.Context, rawURL string) error {
	host := unknownHost
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return hl.bucket(host).Wait(ctx)
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	lim, ok := hl.buckets[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(hl.perSec), hl.burst)
		hl.buckets[host] = lim
	}
	return lim
}
