// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts events per key in fixed windows. It is safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit events per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records one event for key and reports whether it is within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Blocked reports whether key has used its budget, without counting an
// event.
func (l *Limiter) Blocked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	return ok && !l.now().After(w.expiresAt) && w.count >= l.limit
}

// Remaining returns how many events are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if rem := l.limit - w.count; rem > 0 {
		return rem
	}
	return 0
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows once the map grows; callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if len(l.windows) < 1024 {
		return
	}
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then
// the RemoteAddr host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// globalKey is the single account's failure budget, shared by all clients.
const globalKey = "admin"

// LoginLimiter throttles failed sign-ins for the admin account. Failures
// are counted per client IP and, since there is only one account, across
// all clients.
type LoginLimiter struct {
	perIP  *Limiter
	global *Limiter
}

// NewLoginLimiter allows 10 failures per IP per minute and 30 failures in
// total per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 30, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, globalLimit int, globalDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		perIP:  New(ipLimit, ipDuration),
		global: New(globalLimit, globalDuration),
	}
}

// Check reports whether a sign-in attempt from r may proceed. The reason
// is a user-facing message when it may not.
func (ll *LoginLimiter) Check(r *http.Request) (bool, string) {
	if ll.perIP.Blocked(ClientIP(r)) {
		return false, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if ll.global.Blocked(globalKey) {
		return false, "Sign-in is temporarily locked after repeated failures. Please wait a few minutes."
	}
	return true, ""
}

// Failed records a failed attempt from r.
func (ll *LoginLimiter) Failed(r *http.Request) {
	ll.perIP.Allow(ClientIP(r))
	ll.global.Allow(globalKey)
}

// Succeeded clears the caller's per-IP window. The global window is left
// to expire on its own.
func (ll *LoginLimiter) Succeeded(r *http.Request) {
	ll.perIP.Reset(ClientIP(r))
}
