package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		LLMPerMinute:     3,
		DefaultPerMinute: 10,
		CleanupInterval:  time.Minute,
	}
}

func TestAllow_ExhaustsBudget(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4", "/skills/extract"), "request %d within budget", i)
	}
	assert.False(t, l.Allow("1.2.3.4", "/skills/extract"))
}

func TestAllow_ClientsIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", "/career-question")
	}
	assert.False(t, l.Allow("1.2.3.4", "/career-question"))
	assert.True(t, l.Allow("5.6.7.8", "/career-question"))
}

func TestAllow_RouteClassesIndependent(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", "/transition-plan")
	}
	assert.False(t, l.Allow("1.2.3.4", "/skills/missing"), "llm routes share one bucket")
	assert.True(t, l.Allow("1.2.3.4", "/chat-history/recent"), "default routes have their own bucket")
}

func TestBucket_Refills(t *testing.T) {
	b := &bucket{capacity: 2, refillRate: 2, tokens: 0, lastRefill: time.Now().Add(-time.Second)}
	assert.True(t, b.allow(time.Now()), "one second at 2 tokens/s refills enough for a request")
}

func TestDropIdle(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("1.2.3.4", "/health")
	l.mu.Lock()
	for _, b := range l.buckets {
		b.lastRefill = time.Now().Add(-time.Hour)
	}
	l.mu.Unlock()

	l.dropIdle(10 * time.Minute)
	l.mu.Lock()
	assert.Empty(t, l.buckets)
	l.mu.Unlock()
}
