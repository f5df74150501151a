// Package ratelimit paces requests to the profile pages probed by the auto
// strategy.
//
// Limiters are backed by golang.org/x/time/rate:
//
//	// 30 probes per minute, up to 5 back to back
//	limiter := ratelimit.NewPerMinute(30, 5)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
