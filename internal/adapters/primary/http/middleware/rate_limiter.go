package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor pairs a token bucket with its last activity time.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// bucketSet keeps one token bucket per key and evicts idle entries in the
// background so the map cannot grow without bound.
type bucketSet struct {
	mu      sync.Mutex
	buckets map[string]*visitor
	rate    rate.Limit
	burst   int
}

func newBucketSet(requestsPerSecond float64, burst int, cleanupInterval, ttl time.Duration) *bucketSet {
	bs := &bucketSet{
		buckets: make(map[string]*visitor),
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
	}
	go bs.evictIdle(cleanupInterval, ttl)
	return bs
}

func (bs *bucketSet) allow(key string) bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	v, ok := bs.buckets[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(bs.rate, bs.burst)}
		bs.buckets[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (bs *bucketSet) evictIdle(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		bs.mu.Lock()
		for key, v := range bs.buckets {
			if time.Since(v.lastSeen) > ttl {
				delete(bs.buckets, key)
			}
		}
		bs.mu.Unlock()
	}
}

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// RateLimiter rejects requests from client IPs that exceed their token
// bucket.
type RateLimiter struct {
	buckets *bucketSet
}

// NewRateLimiter creates an IP-based rate limiter.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		buckets: newBucketSet(cfg.RequestsPerSecond, cfg.BurstSize, cfg.CleanupInterval, cfg.TTL),
	}
}

// Allow reports whether a request from the given IP may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.buckets.allow(ip)
}

// Middleware answers 429 with a Retry-After hint when the client IP is over
// its limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later.","code":"RATE_LIMITED"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP prefers the reverse-proxy headers over RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip, _, err := net.SplitHostPort(xff); err == nil {
			return ip
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimitByKey limits by an arbitrary key. The websocket handler uses it
// keyed by user ID to cap connection attempts per editor.
type RateLimitByKey struct {
	buckets *bucketSet
}

// NewRateLimitByKey creates a key-based rate limiter.
func NewRateLimitByKey(requestsPerSecond float64, burst int) *RateLimitByKey {
	return &RateLimitByKey{
		buckets: newBucketSet(requestsPerSecond, burst, time.Minute, 5*time.Minute),
	}
}

// Allow reports whether a request with the given key may proceed.
func (rl *RateLimitByKey) Allow(key string) bool {
	return rl.buckets.allow(key)
}
