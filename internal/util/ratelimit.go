package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket replenished at a fixed rate. The exchange
// endpoints the backend proxies are sensitive to burst traffic, so the bulk
// fetch jobs pace their date loops through one of these.
type RateLimiter struct {
	mu     sync.Mutex
	rate   float64 // tokens per second
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a RateLimiter allowing perMinute operations per
// minute. The first call to Wait never blocks.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		rate:   float64(perMinute) / 60.0,
		tokens: 1,
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled. The
// shortfall converts into a single computed sleep instead of a poll loop.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		rl.tokens += now.Sub(rl.last).Seconds() * rl.rate
		if rl.tokens > 1 {
			rl.tokens = 1 // bucket depth 1: no bursts
		}
		rl.last = now
		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - rl.tokens) / rl.rate * float64(time.Second))
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
