package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const cleanupInterval = 3 * time.Minute

// LocalLimiter keeps one rate.Limiter per key in process memory.
type LocalLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int
	stop   chan struct{}
	once   sync.Once
}

// NewLocalLimiter creates a limiter and starts a background goroutine that
// drops idle buckets. Call Close to stop it.
func NewLocalLimiter(config Config) *LocalLimiter {
	l := &LocalLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      rate.Limit(config.RequestsPerSecond),
		b:      config.Burst,
		stop:   make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow consumes one token from the bucket identified by key.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.limiter(key).Allow(), nil
}

// limiter returns the bucket for key, creating it with double-checked locking.
func (l *LocalLimiter) limiter(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limits[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limits[key]; !ok {
		lim = rate.NewLimiter(l.r, l.b)
		l.limits[key] = lim
	}
	return lim
}

func (l *LocalLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

// cleanup removes buckets that have refilled completely; they carry no state.
func (l *LocalLimiter) cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, lim := range l.limits {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limits, key)
			removed++
		}
	}
	return removed
}

// Close stops the cleanup goroutine.
func (l *LocalLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
