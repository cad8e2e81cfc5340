package rest

import (
	"sync"

	"golang.org/x/time/rate"
)

// actorLimiter hands out one token-bucket limiter per (guild, actor),
// bounding how fast a single actor can fire attempts.
type actorLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newActorLimiter(perMinute, burst int) *actorLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 1
	}
	return &actorLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether the actor may proceed right now.
func (l *actorLimiter) Allow(guildID, actorID string) bool {
	key := guildID + "/" + actorID
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
