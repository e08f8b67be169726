package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ActionLimiter throttles one class of world-mutating request per caller
// address over a fixed window. Each action class carries its own budget
// so an exhausted strike quota does not block routine influence spending.
type ActionLimiter struct {
	action string
	budget int
	window time.Duration

	mu   sync.Mutex
	seen map[string]*visitor
}

type visitor struct {
	remaining   int
	windowStart time.Time
}

// NewActionLimiter creates a limiter allowing budget requests of the named
// action per window, per caller.
func NewActionLimiter(action string, budget int, window time.Duration) *ActionLimiter {
	al := &ActionLimiter{
		action: action,
		budget: budget,
		window: window,
		seen:   make(map[string]*visitor),
	}
	// Periodic sweep of idle callers.
	go func() {
		for {
			time.Sleep(time.Hour)
			al.sweep()
		}
	}()
	return al
}

// Allow reports whether the caller still has budget in the current window
// and consumes one unit if so.
func (al *ActionLimiter) Allow(ip string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	v, ok := al.seen[ip]
	if !ok || now.Sub(v.windowStart) >= al.window {
		al.seen[ip] = &visitor{remaining: al.budget - 1, windowStart: now}
		return true
	}
	if v.remaining > 0 {
		v.remaining--
		return true
	}
	return false
}

// RetryAfter returns whole seconds until the caller's window resets.
func (al *ActionLimiter) RetryAfter(ip string) int {
	al.mu.Lock()
	defer al.mu.Unlock()

	v, ok := al.seen[ip]
	if !ok {
		return 0
	}
	remaining := al.window - time.Since(v.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (al *ActionLimiter) sweep() {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()
	for ip, v := range al.seen {
		if now.Sub(v.windowStart) > 2*al.window {
			delete(al.seen, ip)
		}
	}
}

// Wrap guards a handler with this limiter. Over-budget callers get 429
// with a Retry-After header.
func (al *ActionLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !al.Allow(ip) {
			slog.Warn("action rate limited", "action", al.action, "ip", ip)
			w.Header().Set("Retry-After", strconv.Itoa(al.RetryAfter(ip)))
			http.Error(w, al.action+" rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP extracts the caller's address, honoring X-Forwarded-For for
// proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndexByte(ip, ':'); idx >= 0 {
		ip = ip[:idx]
	}
	return ip
}
