package web

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP to slow down
// credential stuffing. Entries for idle clients are cleaned up in the
// background.
type LoginLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh chan struct{}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter creates a LoginLimiter allowing ratePerSec sustained
// attempts with the given burst, and starts its cleanup goroutine.
func NewLoginLimiter(ratePerSec float64, burst int) *LoginLimiter {
	l := &LoginLimiter{
		limit:    rate.Limit(ratePerSec),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop terminates the cleanup goroutine.
func (l *LoginLimiter) Stop() {
	close(l.stopCh)
}

// Middleware returns the throttling middleware. Requests over the limit
// receive 429 with a Retry-After hint.
func (l *LoginLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.allow(ip) {
				slog.Warn("login rate limit exceeded", slog.String("ip", ip))
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *LoginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(10 * time.Minute)
		case <-l.stopCh:
			return
		}
	}
}

func (l *LoginLimiter) cleanup(ttl time.Duration) {
	now := time.Now()
	l.mu.Lock()
	for ip, cl := range l.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(l.limiters, ip)
		}
	}
	l.mu.Unlock()
}

// clientIP extracts the client address, relying on chi's RealIP middleware
// having rewritten RemoteAddr from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
