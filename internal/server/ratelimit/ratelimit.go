// Package ratelimit provides per-client request limiting using a token
// bucket per (client, route class).
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Config sets the per-minute budgets for the two route classes.
type Config struct {
	// LLMPerMinute applies to routes that trigger model completions.
	LLMPerMinute int
	// DefaultPerMinute applies to everything else.
	DefaultPerMinute int
	// CleanupInterval controls how often idle buckets are dropped.
	CleanupInterval time.Duration
}

// DefaultConfig is tuned so a single interactive user never hits the
// limit while a runaway client does.
func DefaultConfig() Config {
	return Config{
		LLMPerMinute:     20,
		DefaultPerMinute: 120,
		CleanupInterval:  5 * time.Minute,
	}
}

// llmRoutePrefixes classifies routes whose handlers call the LLM.
var llmRoutePrefixes = []string{
	"/skills",
	"/career-question",
	"/transition-plan",
}

type bucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func (b *bucket) allow(now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Limiter tracks one token bucket per (client, route class).
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	done    chan struct{}
}

// NewLimiter creates a limiter and starts its cleanup loop.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may issue one more request to the
// given path.
func (l *Limiter) Allow(clientID, path string) bool {
	class, perMinute := l.classify(path)
	key := clientID + "|" + class

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			capacity:   float64(perMinute),
			refillRate: float64(perMinute) / 60,
			tokens:     float64(perMinute),
			lastRefill: time.Now(),
		}
		l.buckets[key] = b
	}
	return b.allow(time.Now())
}

// Stop terminates the cleanup loop.
func (l *Limiter) Stop() {
	close(l.stop)
	<-l.done
}

func (l *Limiter) classify(path string) (string, int) {
	for _, prefix := range llmRoutePrefixes {
		if strings.HasPrefix(path, prefix) {
			return "llm", l.cfg.LLMPerMinute
		}
	}
	return "default", l.cfg.DefaultPerMinute
}

func (l *Limiter) cleanupLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.dropIdle(2 * l.cfg.CleanupInterval)
		}
	}
}

func (l *Limiter) dropIdle(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	for key, b := range l.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
