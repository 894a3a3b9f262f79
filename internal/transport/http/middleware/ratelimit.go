package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"smarthr/internal/transport/http/api"
)

// Throttle holds fixed-window limits for login attempts and for the
// operations that rewrite payroll, decide leave or remove employees.
// A client IP may try twice Login logins per window across usernames.
type Throttle struct {
	Login     int
	Mutations int
	Window    time.Duration
	Now       func() time.Time
}

// Middleware enforces the limits. Requests outside the throttled routes pass
// untouched.
func (t Throttle) Middleware() func(http.Handler) http.Handler {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	window := t.Window
	if window <= 0 {
		window = time.Minute
	}
	loginLimit := max(t.Login, 1)
	loginsByIP := newWindowCounter(loginLimit*2, window, now)
	loginsByUser := newWindowCounter(loginLimit, window, now)
	mutations := newWindowCounter(max(t.Mutations, 1), window, now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch throttleClass(r) {
			case classLogin:
				if !loginsByIP.allow(w, r, "ip:"+clientIP(r)) {
					return
				}
				if !loginsByUser.allow(w, r, loginKey(r)) {
					return
				}
			case classMutation:
				if !mutations.allow(w, r, actorKey(r)) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type windowCounter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string]*windowHits
}

type windowHits struct {
	count int
	reset time.Time
}

func newWindowCounter(limit int, window time.Duration, now func() time.Time) *windowCounter {
	return &windowCounter{limit: limit, window: window, now: now, hits: map[string]*windowHits{}}
}

// allow counts one hit for key and writes the 429 envelope once the window's
// budget is spent.
func (c *windowCounter) allow(w http.ResponseWriter, r *http.Request, key string) bool {
	now := c.now()
	c.mu.Lock()
	h, ok := c.hits[key]
	if !ok || !now.Before(h.reset) {
		h = &windowHits{reset: now.Add(c.window)}
		c.hits[key] = h
	}
	h.count++
	count, reset := h.count, h.reset
	c.mu.Unlock()

	resetIn := int(reset.Sub(now).Round(time.Second) / time.Second)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(c.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(c.limit-count, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if count <= c.limit {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", c.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

type class int

const (
	classNone class = iota
	classLogin
	classMutation
)

func throttleClass(r *http.Request) class {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		return classNone
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch {
	case path == "/auth/login":
		return classLogin
	case path == "/payroll/compute", path == "/payroll/generate", path == "/payroll/archive":
		return classMutation
	case strings.HasPrefix(path, "/leave/requests/") &&
		(strings.HasSuffix(path, "/approve") || strings.HasSuffix(path, "/reject")):
		return classMutation
	case strings.HasPrefix(path, "/employees/") && r.Method == http.MethodDelete:
		return classMutation
	}
	return classNone
}

// loginKey keys a login attempt by the username in its JSON body, falling
// back to the client IP. The body is restored for the handler.
func loginKey(r *http.Request) string {
	if r.Body == nil {
		return "ip:" + clientIP(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return "ip:" + clientIP(r)
	}
	var body struct {
		Username string `json:"username"`
	}
	if json.Unmarshal(raw, &body) != nil || strings.TrimSpace(body.Username) == "" {
		return "ip:" + clientIP(r)
	}
	return "username:" + strings.TrimSpace(body.Username)
}

func actorKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.Username != "" {
		return "user:" + user.Username
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
