// middleware/rate_limiter.go
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]struct {
		limit rate.Limit
		burst int
	}
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		mu:            &sync.RWMutex{},
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		endpointLimits: make(map[string]struct {
			limit rate.Limit
			burst int
		}),
	}

	// Login gets strict limits to slow brute force attempts
	limiter.endpointLimits["/api/auth/login"] = struct {
		limit rate.Limit
		burst int
	}{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}

	limiter.endpointLimits["/api/auth/signup"] = struct {
		limit rate.Limit
		burst int
	}{
		limit: rate.Every(500 * time.Millisecond),
		burst: 5,
	}

	// Donation order creation is public and abusable
	limiter.endpointLimits["/api/donations/order"] = struct {
		limit rate.Limit
		burst int
	}{
		limit: rate.Every(time.Second),
		burst: 10,
	}

	go limiter.cleanupBlockedIPs()

	return limiter
}

func (rl *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		now := time.Now()
		for ip, blockedUntil := range rl.blockedIPs {
			if now.After(blockedUntil) {
				delete(rl.blockedIPs, ip)
				delete(rl.ips, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) getLimiter(ip, path string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := ip + path
	limiter, exists := rl.ips[key]
	if !exists {
		limit := rl.defaultLimit
		burst := rl.defaultBurst
		if endpointLimit, ok := rl.endpointLimits[path]; ok {
			limit = endpointLimit.limit
			burst = endpointLimit.burst
		}
		limiter = rate.NewLimiter(limit, burst)
		rl.ips[key] = limiter
	}

	return limiter
}

// RateLimit returns the rate limiting middleware
func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			path := c.Request().URL.Path

			// Webhooks are signed and must never be throttled
			if strings.HasPrefix(path, "/api/donations/webhook") {
				return next(c)
			}

			rl.mu.RLock()
			blockedUntil, blocked := rl.blockedIPs[ip]
			rl.mu.RUnlock()

			if blocked && time.Now().Before(blockedUntil) {
				return echo.NewHTTPError(429, "Too many requests, try again later")
			}

			limiter := rl.getLimiter(ip, path)
			if !limiter.Allow() {
				rl.mu.Lock()
				rl.blockedIPs[ip] = time.Now().Add(rl.blockDuration)
				rl.mu.Unlock()
				return echo.NewHTTPError(429, "Too many requests, try again later")
			}

			return next(c)
		}
	}
}
