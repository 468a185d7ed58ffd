package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// Default rate limits per provider (requests per second).
var defaultRateLimits = map[ProviderName]rate.Limit{
	NameLastFM: 5,
}

// RateLimiterMap holds one rate.Limiter per provider, created once at startup.
// The map is never written after construction.
type RateLimiterMap struct {
	limiters map[ProviderName]*rate.Limiter
}

// NewRateLimiterMap creates limiters at the default rates, replaced by any
// entry in overrides.
func NewRateLimiterMap(overrides map[ProviderName]float64) *RateLimiterMap {
	m := &RateLimiterMap{
		limiters: make(map[ProviderName]*rate.Limiter, len(defaultRateLimits)),
	}
	for name, limit := range defaultRateLimits {
		m.limiters[name] = rate.NewLimiter(limit, 1)
	}
	for name, rps := range overrides {
		if rps > 0 {
			m.limiters[name] = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
	return m
}

// Wait blocks until the rate limiter for the given provider allows a request,
// or the context is canceled or its deadline cannot be met.
func (m *RateLimiterMap) Wait(ctx context.Context, name ProviderName) error {
	limiter, ok := m.limiters[name]
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
