package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/agenthands/physiokg/internal/logger"
	"github.com/agenthands/physiokg/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}

func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// CORS allows read-only browser access from the given origins.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

// DefaultMaxClients bounds how many per-IP buckets a RateLimiter holds.
const DefaultMaxClients = 10000

// RateLimiter keeps one token bucket per client IP. A bucket refills
// completely within a minute, so a client idle that long is forgotten.
type RateLimiter struct {
	perMinute  int
	limit      rate.Limit
	idle       time.Duration
	maxClients int
	now        func() time.Time

	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil when perMinute is not positive.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		perMinute:  perMinute,
		limit:      rate.Limit(float64(perMinute) / 60.0),
		idle:       time.Minute,
		maxClients: DefaultMaxClients,
		now:        time.Now,
		clients:    make(map[string]*clientBucket),
	}
}

// Allow reports whether ip may make another request now.
func (l *RateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	b, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.evict(now)
		}
		b = &clientBucket{lim: rate.NewLimiter(l.limit, l.perMinute)}
		l.clients[ip] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// evict drops idle buckets. If every bucket is still active the least
// recently seen one goes, so the map never exceeds maxClients.
// Callers hold l.mu.
func (l *RateLimiter) evict(now time.Time) {
	var oldestIP string
	var oldest time.Time
	for ip, b := range l.clients {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.clients, ip)
			continue
		}
		if oldestIP == "" || b.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, b.lastSeen
		}
	}
	if len(l.clients) >= l.maxClients && oldestIP != "" {
		delete(l.clients, oldestIP)
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.perMinute))
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
