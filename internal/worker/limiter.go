package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter rate-limits work per named scope. Batch proving uses one scope per
// proving backend so a slow remote service is paced independently of local
// backends.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with a default rate for unseen scopes.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the scope's limiter clears one event or ctx is done.
func (l *Limiter) Wait(ctx context.Context, scope string) error {
	return l.getLimiter(scope).Wait(ctx)
}

// Allow reports whether one event may proceed now, without waiting.
func (l *Limiter) Allow(scope string) bool {
	return l.getLimiter(scope).Allow()
}

func (l *Limiter) getLimiter(scope string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[scope]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring the write lock
	if limiter, exists := l.limiters[scope]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[scope] = limiter

	return limiter
}

// SetScopeRate overrides the rate for one scope.
func (l *Limiter) SetScopeRate(scope string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[scope] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
