package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/biou/admin-console/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	sweepInterval = 3 * time.Minute
	staleAfter    = 5 * time.Minute
)

// clientBucket is a per-address token bucket plus its last activity time,
// used to drop buckets for clients that went quiet.
type clientBucket struct {
	limiter *rate.Limiter
	seenAt  time.Time
}

// RateLimiter throttles requests per client IP. It guards the public auth
// endpoints, where a single address hammering login or the DingTalk
// callback is either a bug or a credential-stuffing attempt.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	refill  rate.Limit
	burst   int
}

// NewRateLimiter builds a limiter refilling refillPerSecond tokens with
// the given burst capacity per client address.
func NewRateLimiter(refillPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		refill:  rate.Limit(refillPerSecond),
		burst:   burst,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) bucket(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.refill, rl.burst)}
		rl.clients[ip] = b
	}
	b.seenAt = time.Now()
	return b.limiter
}

// sweep drops buckets idle past staleAfter so the map stays bounded.
func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(sweepInterval)
		rl.mu.Lock()
		for ip, b := range rl.clients {
			if time.Since(b.seenAt) > staleAfter {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware rejects requests over the per-address budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.bucket(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Response{
				Code:    http.StatusTooManyRequests,
				Message: "too many requests, try again later",
			})
			return
		}
		c.Next()
	}
}
