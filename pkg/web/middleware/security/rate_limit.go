// Package security provides rate limiting and security header middleware.
package security

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fluxorio/todo-service/pkg/web"
)

// RateLimitConfig configures per-client rate limiting
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests per minute per client
	RequestsPerMinute int

	// KeyFunc extracts a key identifying the client (default: remote IP)
	KeyFunc func(ctx *web.RequestContext) string

	// OnLimitReached is called when the limit is exceeded
	// If nil, a 429 Too Many Requests is returned
	OnLimitReached func(ctx *web.RequestContext) error
}

// DefaultRateLimitConfig returns a default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 100,
		KeyFunc: func(ctx *web.RequestContext) string {
			host, _, err := net.SplitHostPort(ctx.Request.RemoteAddr)
			if err != nil {
				return ctx.Request.RemoteAddr
			}
			return host
		},
	}
}

// tokenBucket refills one token per interval up to capacity
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func (b *tokenBucket) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// rateLimiter tracks a bucket per client key
type rateLimiter struct {
	mu                sync.Mutex
	buckets           map[string]*tokenBucket
	requestsPerMinute int
	done              chan struct{}
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	rl := &rateLimiter{
		buckets:           make(map[string]*tokenBucket),
		requestsPerMinute: requestsPerMinute,
		done:              make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops buckets idle for more than 10 minutes
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, bucket := range rl.buckets {
				bucket.mu.Lock()
				idle := now.Sub(bucket.lastRefill) > 10*time.Minute
				bucket.mu.Unlock()
				if idle {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) allow(key string) bool {
	now := time.Now()
	rl.mu.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &tokenBucket{
			tokens:     float64(rl.requestsPerMinute),
			capacity:   float64(rl.requestsPerMinute),
			refillRate: float64(rl.requestsPerMinute) / 60.0,
			lastRefill: now,
		}
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()
	return bucket.allow(now)
}

// RateLimit enforces a per-client token bucket limit
func RateLimit(config RateLimitConfig) web.Middleware {
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultRateLimitConfig().KeyFunc
	}
	limiter := newRateLimiter(config.RequestsPerMinute)

	return func(next web.RequestHandler) web.RequestHandler {
		return func(ctx *web.RequestContext) error {
			if limiter.allow(config.KeyFunc(ctx)) {
				return next(ctx)
			}
			if config.OnLimitReached != nil {
				return config.OnLimitReached(ctx)
			}
			return ctx.Error(http.StatusTooManyRequests, "rate_limited", "too many requests")
		}
	}
}
