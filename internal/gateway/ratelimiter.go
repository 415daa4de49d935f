package gateway

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter caps RPC requests per connected client. rpm <= 0 disables
// limiting entirely (RateLimitRPM defaults to 0 for backward compat).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
	enabled  bool
}

// NewRateLimiter builds a limiter allowing rpm requests/minute per client
// key, with burst as the token bucket size.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if rpm <= 0 {
		return &RateLimiter{enabled: false}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(float64(rpm) / 60.0),
		burst:    burst,
		enabled:  true,
	}
}

// Enabled reports whether rate limiting is active.
func (rl *RateLimiter) Enabled() bool { return rl.enabled }

// Allow reports whether key (a client or connection ID) may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.enabled {
		return true
	}
	rl.mu.Lock()
	lim, ok := rl.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rl.r, rl.burst)
		rl.limiters[key] = lim
	}
	rl.mu.Unlock()
	return lim.Allow()
}
