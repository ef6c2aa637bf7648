package scrape

import (
	"context"
	"sync"

	"github.com/fwojciec/pagescrape"
	"golang.org/x/time/rate"
)

var _ pagescrape.HostLimiter = (*HostLimiter)(nil)

// HostLimiter paces outbound fetches with one token bucket per host, so a
// burst of requests for the same site is spread out while different sites
// proceed concurrently.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a HostLimiter allowing rps requests per second per
// host with a burst of 1. A non-positive rps disables pacing.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the host's bucket allows a request.
// Returns an error if the context is canceled before the wait completes.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if h.rps <= 0 {
		return ctx.Err()
	}

	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
