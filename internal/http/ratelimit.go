package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Only mutating requests go through the limiter (see withMiddleware), so
// the budget is sized for booking bursts: a vendor uploading a day's
// parcels should fit, a runaway script should not.
const (
	writeBudget = 120
	writeWindow = time.Minute
	staleAfter  = 15 * time.Minute
)

// rateLimiter counts writes per client IP over a fixed window.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*writeWindowState
	done    chan struct{}
	once    sync.Once
}

type writeWindowState struct {
	windowStart time.Time
	writes      int
	lastSeen    time.Time
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*writeWindowState),
		done:    make(chan struct{}),
	}
	go rl.pruneLoop()
	return rl
}

func (rl *rateLimiter) pruneLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune()
		case <-rl.done:
			return
		}
	}
}

// prune drops clients that have gone quiet so the map stays bounded.
func (rl *rateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for ip, w := range rl.windows {
		if w.lastSeen.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow reports whether clientIP still has write budget in the current
// window. Exhausting the budget bumps the rate limit metric.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.windowStart) > writeWindow {
		rl.windows[clientIP] = &writeWindowState{
			windowStart: now,
			writes:      1,
			lastSeen:    now,
		}
		return true
	}

	w.writes++
	w.lastSeen = now
	if w.writes > writeBudget {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
