package gateway

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter applies a per-endpoint token bucket so a single process never
// floods mempool.space or the Hiro API, regardless of how many clients share
// it.
type RateLimiter struct {
	mu         sync.RWMutex
	limiters   map[string]*rate.Limiter
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter builds a limiter allowing ratePerSecond sustained requests
// per endpoint with the given burst.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  rate.Limit(ratePerSecond),
		burstLimit: burst,
	}
}

// DefaultRateLimiter matches the free tiers of mempool.space and the Hiro
// API: 5 requests/second, burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// Wait blocks until endpoint may be called again, or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	return r.getLimiter(endpoint).Wait(ctx)
}

func (r *RateLimiter) getLimiter(endpoint string) *rate.Limiter {
	r.mu.RLock()
	limiter, ok := r.limiters[endpoint]
	r.mu.RUnlock()
	if ok {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if limiter, ok = r.limiters[endpoint]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[endpoint] = limiter
	return limiter
}
