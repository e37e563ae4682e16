package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuardRemembersFailure(t *testing.T) {
	guard := NewLookupGuard(100, 30*time.Minute)

	assert.False(t, guard.RecentlyFailed("abc", 2, 5))
	guard.RecordFailure("abc", 2, 5)
	assert.True(t, guard.RecentlyFailed("abc", 2, 5))

	// Other targets in the same pack are unaffected.
	assert.False(t, guard.RecentlyFailed("abc", 2, 6))
	assert.False(t, guard.RecentlyFailed("abc", 3, 5))
	assert.False(t, guard.RecentlyFailed("def", 2, 5))
}

func TestGuardCooldownExpires(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	guard := NewLookupGuardWithClock(100, 30*time.Minute, clock)
	guard.RecordFailure("abc", 1, 1)

	current = current.Add(29 * time.Minute)
	assert.True(t, guard.RecentlyFailed("abc", 1, 1))

	current = current.Add(2 * time.Minute)
	assert.False(t, guard.RecentlyFailed("abc", 1, 1))
}

func TestGuardForget(t *testing.T) {
	guard := NewLookupGuard(100, 30*time.Minute)

	guard.RecordFailure("abc", 1, 1)
	guard.Forget("abc", 1, 1)
	assert.False(t, guard.RecentlyFailed("abc", 1, 1))
}

func TestGuardBoundedByCapacity(t *testing.T) {
	guard := NewLookupGuard(10, 30*time.Minute)

	for i := 0; i < 100; i++ {
		guard.RecordFailure(fmt.Sprintf("hash%02d", i), 1, 1)
	}

	assert.Equal(t, 10, guard.Len())
	// Oldest entries were evicted, newest survive.
	assert.False(t, guard.RecentlyFailed("hash00", 1, 1))
	assert.True(t, guard.RecentlyFailed("hash99", 1, 1))
}

func TestLRUCacheEvictionOrder(t *testing.T) {
	c := New(2, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction victim.
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCacheTTL(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithClock(10, time.Minute, func() time.Time { return current })

	c.Set("key", "value")
	value, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("key")
	assert.False(t, ok)
}
