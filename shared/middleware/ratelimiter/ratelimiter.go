package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	key        string           // Reference to key for cleanup
	parent     *UserRateLimiter // Reference to parent for cleanup
}

// UserRateLimiter keeps one bucket per identity; idle buckets expire.
type UserRateLimiter struct {
	limiters       map[string]*RateLimiter
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a limiter refilling rate tokens per second up to capacity.
func New(rate float64, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*RateLimiter),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

func OnceInMinute() *UserRateLimiter { return New(1.0/60, 1, time.Hour) }
func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }

func (url *UserRateLimiter) cleanup(key string) {
	url.mu.Lock()
	delete(url.limiters, key)
	url.mu.Unlock()
}

// resetTimer resets the expiration timer for a limiter
func (rl *RateLimiter) resetTimer() {
	if rl.timer != nil {
		rl.timer.Stop()
	}
	rl.timer = time.AfterFunc(rl.parent.expirationTime, func() {
		rl.parent.cleanup(rl.key)
	})
}

// getLimiter gets or creates a rate limiter for an identity
func (url *UserRateLimiter) getLimiter(key string) *RateLimiter {
	url.mu.RLock()
	limiter, exists := url.limiters[key]
	url.mu.RUnlock()

	if exists {
		limiter.mu.Lock()
		limiter.resetTimer()
		limiter.mu.Unlock()
		return limiter
	}

	url.mu.Lock()
	defer url.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = url.limiters[key]; exists {
		limiter.mu.Lock()
		limiter.resetTimer()
		limiter.mu.Unlock()
		return limiter
	}

	limiter = &RateLimiter{
		tokens:     url.capacity,
		capacity:   url.capacity,
		rate:       url.rate,
		lastRefill: time.Now(),
		key:        key,
		parent:     url,
	}
	url.limiters[key] = limiter
	limiter.resetTimer()

	return limiter
}

func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()

	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Allow checks if a request should be allowed for a given identity
func (url *UserRateLimiter) Allow(key string) bool {
	return url.getLimiter(key).Allow()
}

// Stop cleans up all timers
func (url *UserRateLimiter) Stop() {
	url.mu.Lock()
	defer url.mu.Unlock()

	for _, limiter := range url.limiters {
		limiter.mu.Lock()
		if limiter.timer != nil {
			limiter.timer.Stop()
		}
		limiter.mu.Unlock()
	}
}
