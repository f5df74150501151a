package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests
type Limiter interface {
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
}

// NewPerMinute allows n requests per minute, the first burst of them back to
// back. A burst below one means one. n <= 0 disables pacing.
func NewPerMinute(n, burst int) Limiter {
	if n <= 0 {
		return Unlimited()
	}
	burst = max(burst, 1)
	return NewTokenBucket(burst, time.Minute*time.Duration(burst)/time.Duration(n))
}

// NewTokenBucket allows capacity requests at once, refilled evenly over period
func NewTokenBucket(capacity int, period time.Duration) Limiter {
	if capacity <= 0 || period <= 0 {
		return Unlimited()
	}
	return rate.NewLimiter(rate.Every(period/time.Duration(capacity)), capacity)
}

// Unlimited never blocks
func Unlimited() Limiter {
	return rate.NewLimiter(rate.Inf, 0)
}
