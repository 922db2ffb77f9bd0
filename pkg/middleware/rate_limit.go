package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/recordbook/recordbook/pkg/metrics"
)

const rateLimitMessage = "Rate limit exceeded"

// minIdle is the shortest time a client bucket is kept after its last use.
const minIdle = time.Minute

// limiterStore hands out one token bucket per client key. Buckets idle for
// longer than idle are dropped on the next sweep; by then they have refilled,
// so a fresh bucket behaves the same.
type limiterStore struct {
	rps     float64
	burst   int
	idle    time.Duration
	now     func() time.Time
	buckets sync.Map // map[string]*bucket

	mu        sync.Mutex
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	idle := minIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &limiterStore{rps: rps, burst: burst, idle: idle, now: time.Now}
}

// get returns (and lazily creates) the token-bucket limiter for key.
func (s *limiterStore) get(key string) *rate.Limiter {
	now := s.now()
	s.sweep(now)
	v, ok := s.buckets.Load(key)
	if !ok {
		v, _ = s.buckets.LoadOrStore(key, &bucket{lim: rate.NewLimiter(rate.Limit(s.rps), s.burst)})
	}
	b := v.(*bucket)
	b.lastSeen.Store(now.UnixNano())
	return b.lim
}

// sweep drops idle buckets, at most once per idle period.
func (s *limiterStore) sweep(now time.Time) {
	s.mu.Lock()
	if now.Sub(s.lastSweep) < s.idle {
		s.mu.Unlock()
		return
	}
	s.lastSweep = now
	s.mu.Unlock()

	cutoff := now.Add(-s.idle).UnixNano()
	s.buckets.Range(func(k, v any) bool {
		if v.(*bucket).lastSeen.Load() < cutoff {
			s.buckets.Delete(k)
		}
		return true
	})
}

func (s *limiterStore) size() int {
	n := 0
	s.buckets.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket limit
// per client IP. rps = allowed events per second, burst = maximum tokens in
// bucket. Each call gets its own set of buckets; idle client buckets are
// evicted.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		if !store.get(clientKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": rateLimitMessage})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
