// Package ratelimit throttles requests per client IP.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
)

const (
	// CleanupInterval is how often stale limiters are swept.
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is how long an idle client keeps its limiter.
	LimiterTTL = 10 * time.Minute
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// New returns a Limiter allowing perMinute requests per client with the given burst.
// Stale entries are swept until ctx is done.
func New(ctx context.Context, perMinute, burst int) *Limiter {
	l := &Limiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		now:      time.Now,
	}

	go l.sweep(ctx)

	return l
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[client]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[client] = e
	}

	e.lastSeen = l.now()

	return e.limiter.Allow()
}

func (l *Limiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evict()
		case <-ctx.Done():
			return
		}
	}
}

// evict drops limiters idle for longer than LimiterTTL.
func (l *Limiter) evict() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	for client, e := range l.limiters {
		if now.Sub(e.lastSeen) > LimiterTTL {
			delete(l.limiters, client)
		}
	}
}

// Middleware answers 429 once the client's budget is spent.
func (l *Limiter) Middleware(rs *respond.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)

			if !l.Allow(client) {
				retryAfter := max(1, int(math.Round(1/float64(l.limit))))

				slog.Warn("rate limit exceeded", "client", client, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				rs.Status(w, http.StatusTooManyRequests, "Too many requests, try again later")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP uses RemoteAddr, which chi's RealIP middleware rewrites when the
// server sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
