package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 1.0, clock.Now())

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take(clock.Now())
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}
	allowed, _, reset := bucket.take(clock.Now())
	assert.False(t, allowed)
	assert.Equal(t, clock.Now().Add(10*time.Second), reset)
	assert.Equal(t, time.Second, bucket.nextToken(clock.Now()))

	clock.Advance(1100 * time.Millisecond)
	allowed, _, _ = bucket.take(clock.Now())
	assert.True(t, allowed)
	allowed, _, _ = bucket.take(clock.Now())
	assert.False(t, allowed)
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(3, 1.0, clock.Now())

	clock.Advance(time.Hour)
	_, remaining, reset := bucket.take(clock.Now())
	assert.Equal(t, 2, remaining)
	assert.True(t, reset.After(clock.Now()))
}

func TestLimiter_Allow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, Now: clock.Now})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/v1/platforms", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/v1/platforms", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))

	// Other clients and paths have their own buckets.
	allowed, _ = limiter.Allow("127.0.0.2", "/v1/platforms", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/v1/charts", "POST")
	assert.True(t, allowed)

	clock.Advance(7 * time.Second)
	allowed, _ = limiter.Allow("127.0.0.1", "/v1/platforms", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/v1/platforms", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	allowed, _ := limiter.Allow("10.0.0.2", "/v1/platforms", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, CleanupInterval: time.Millisecond})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/v1/platforms", "GET")
		assert.True(t, allowed)
	}
	assert.Zero(t, limiter.Len())
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/v1/auth/request-code", "POST")
		require.True(t, allowed)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := limiter.Allow("127.0.0.1", "/v1/auth/request-code", "POST")
	assert.False(t, allowed, "burst of 3 exhausted")

	allowed, info := limiter.Allow("127.0.0.1", "/health", "GET")
	assert.True(t, allowed)
	assert.Zero(t, info.Limit)
}

func TestLimiter_PrefixMatchesShareBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/v1/sections/", Method: "DELETE", Limit: 2, Window: time.Minute},
		},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("c", "/v1/sections/a", "DELETE")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/v1/sections/b", "DELETE")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/v1/sections/c", "DELETE")
	assert.False(t, allowed)
	assert.Equal(t, 1, limiter.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/v1/platforms", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_Evict(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
		Now:           clock.Now,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/v1/platforms", "GET")
	}
	clock.Advance(45 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/v1/platforms", "GET")
	}
	clock.Advance(30 * time.Minute)

	assert.Equal(t, 5, limiter.Evict())
	assert.Equal(t, 5, limiter.Len())
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, CleanupInterval: time.Millisecond})
	time.Sleep(5 * time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/v1/platforms", "GET")
	assert.True(t, allowed)
	assert.Equal(t, DefaultLimit, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/v1/sections", Method: "POST", Limit: 1},
		{Path: "/v1/", Method: "PUT", Limit: 2},
		{Path: "/v1/sections/", Method: "PUT", Limit: 3},
	}

	assert.Equal(t, 1, MatchEndpoint("/v1/sections", "POST", configs).Limit)
	assert.Equal(t, 3, MatchEndpoint("/v1/sections/abc", "PUT", configs).Limit, "longest prefix wins")
	assert.Equal(t, 2, MatchEndpoint("/v1/other", "PUT", configs).Limit)
	assert.Nil(t, MatchEndpoint("/v1/sections/abc", "GET", configs))
	assert.Zero(t, MatchEndpoint("/health", "GET", configs).Limit)
	assert.Zero(t, MatchEndpoint("/v1/sections", "OPTIONS", configs).Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,10.0.0.2")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "not-a-duration")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, DefaultWindow, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
