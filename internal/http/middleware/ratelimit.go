package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc derives the rate-limit bucket key for a request.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP buckets authenticated traffic per user id and anonymous
// traffic per client IP. Authenticated users therefore cannot starve each
// other from behind a shared NAT.
func KeyByUserOrIP(c *gin.Context) string {
	if id := UserID(c); id != 0 {
		return "u:" + strconv.FormatUint(uint64(id), 10)
	}
	return "ip:" + c.ClientIP()
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a token-bucket limit of rps requests per second with
// the given burst, keyed by keyFn. Idle buckets are evicted after ttl to keep
// the map bounded. Requests over the limit get a 429 JSON envelope with a
// Retry-After hint.
func RateLimiter(rps float64, burst int, ttl time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = KeyByUserOrIP
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	var (
		mu       sync.Mutex
		buckets  = make(map[string]*limiterEntry)
		lastScan = time.Now()
	)

	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastScan) > ttl {
			for k, e := range buckets {
				if now.Sub(e.lastSeen) > ttl {
					delete(buckets, k)
				}
			}
			lastScan = now
		}

		e, ok := buckets[key]
		if !ok {
			e = &limiterEntry{lim: rate.NewLimiter(rate.Limit(rps), burst)}
			buckets[key] = e
		}
		e.lastSeen = now
		return e.lim
	}

	return func(c *gin.Context) {
		if !get(keyFn(c)).Allow() {
			rid, _ := c.Get(requestIDKey)
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": asString(rid),
				"code":       "too_many_requests",
				"message":    "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
