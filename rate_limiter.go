package main

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// SlowDownLimiter throttles chatty sources by delaying their requests instead
// of rejecting them: after delayAfter requests within one window, each further
// request waits an additional delayStep.
type SlowDownLimiter struct {
	window     time.Duration
	delayAfter int
	delayStep  time.Duration

	visitors map[string]*visitorWindow
	mutex    sync.Mutex
}

type visitorWindow struct {
	windowStart time.Time
	count       int
}

// NewSlowDownLimiter creates a new slow-down limiter
func NewSlowDownLimiter(window time.Duration, delayAfter int, delayStep time.Duration) *SlowDownLimiter {
	return &SlowDownLimiter{
		window:     window,
		delayAfter: delayAfter,
		delayStep:  delayStep,
		visitors:   make(map[string]*visitorWindow),
	}
}

// Delay records one request from the given source and returns how long it
// must wait before being handled. Request delayAfter+1 waits one delayStep,
// delayAfter+2 waits two, and so on until the window expires.
func (sl *SlowDownLimiter) Delay(source string) time.Duration {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	now := time.Now()
	visitor, exists := sl.visitors[source]
	if !exists || now.Sub(visitor.windowStart) > sl.window {
		visitor = &visitorWindow{windowStart: now}
		sl.visitors[source] = visitor
	}

	visitor.count++
	if visitor.count <= sl.delayAfter {
		return 0
	}
	return time.Duration(visitor.count-sl.delayAfter) * sl.delayStep
}

// StartCleanupRoutine starts a background routine that drops expired windows
// to prevent the visitor map from growing without bound.
func (sl *SlowDownLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			sl.cleanup()
		}
	}()
}

func (sl *SlowDownLimiter) cleanup() {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	now := time.Now()
	for source, visitor := range sl.visitors {
		if now.Sub(visitor.windowStart) > sl.window {
			delete(sl.visitors, source)
		}
	}
}

// SlowDownMiddleware applies the limiter to every request. Delayed requests
// still complete unless the client goes away while waiting.
func (app *App) SlowDownMiddleware(limiter *SlowDownLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getRealIP(r)

			if delay := limiter.Delay(ip); delay > 0 {
				log.WithFields(log.Fields{
					"ip":       ip,
					"method":   r.Method,
					"path":     r.URL.Path,
					"delay_ms": delay.Milliseconds(),
				}).Warn("Request delayed by slow-down limiter")

				select {
				case <-time.After(delay):
				case <-r.Context().Done():
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getRealIP extracts the real IP address from the request
func getRealIP(r *http.Request) string {
	// Check X-Real-IP header (nginx)
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// Check X-Forwarded-For header (load balancers, proxies)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
