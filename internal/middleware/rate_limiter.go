package middleware

import (
	"net/http"
	"sync"
	"time"

	"colectas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type limiter struct {
	entries map[string]*rateEntry
	mu      sync.Mutex
	limit   int
	window  time.Duration
	mensaje string
}

var limiters []*limiter
var limitersMu sync.Mutex

func newLimiter(limit int, window time.Duration, mensaje string) *limiter {
	l := &limiter{
		entries: make(map[string]*rateEntry),
		limit:   limit,
		window:  window,
		mensaje: mensaje,
	}
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	return l
}

func (l *limiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		entry, exists := l.entries[ip]
		if !exists {
			entry = &rateEntry{}
			l.entries[ip] = entry
		}
		l.mu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(l.window)
		}

		entry.count++
		if entry.count > l.limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// RateLimiter returns a general-purpose sliding-window limiter per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries so IPs that never return do not
// accumulate forever.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purged := 0

		limitersMu.Lock()
		active := make([]*limiter, len(limiters))
		copy(active, limiters)
		limitersMu.Unlock()

		for _, l := range active {
			l.mu.Lock()
			for ip, entry := range l.entries {
				entry.mu.Lock()
				if now.After(entry.windowEnd) {
					delete(l.entries, ip)
					purged++
				}
				entry.mu.Unlock()
			}
			l.mu.Unlock()
		}

		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}
