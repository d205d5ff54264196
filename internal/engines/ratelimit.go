package engines

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements a token bucket used for client-side pacing of
// engine calls. This is independent of the server-side 429 handling: the
// limiter keeps us under the backend's ceiling, the orchestrator handles the
// backend telling us we went over anyway.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	windowSeconds     float64

	tokens     float64
	lastUpdate time.Time

	totalConsumed int64
	last429Time   time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute calls.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		windowSeconds:     60.0,
		tokens:            float64(requestsPerMinute),
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}
		tokensNeeded := 1.0 - r.tokens
		refillRate := float64(r.requestsPerMinute) / r.windowSeconds
		waitTime := time.Duration(tokensNeeded/refillRate*1000) * time.Millisecond
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// Record429 drains the bucket after the backend reported a rate limit, so
// the retry after cooldown starts from an empty window.
func (r *RateLimiter) Record429() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last429Time = time.Now()
	r.tokens = 0
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	r.tokens += elapsed * float64(r.requestsPerMinute) / r.windowSeconds
	if r.tokens > float64(r.requestsPerMinute) {
		r.tokens = float64(r.requestsPerMinute)
	}
}
