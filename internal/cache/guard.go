package cache

import (
	"fmt"
	"time"
)

// LookupGuard remembers recent failed external lookups so the resolver
// does not hammer providers for a target it already knows is missing.
// It is process-local and safe to lose on restart: it only prevents
// redundant work, never correctness.
type LookupGuard struct {
	cache *LRUCache
}

// NewLookupGuard creates a guard bounded to maxEntries keys, each
// remembered for cooldown.
func NewLookupGuard(maxEntries int, cooldown time.Duration) *LookupGuard {
	return NewLookupGuardWithClock(maxEntries, cooldown, time.Now)
}

// NewLookupGuardWithClock creates a guard with an injectable clock.
func NewLookupGuardWithClock(maxEntries int, cooldown time.Duration, now func() time.Time) *LookupGuard {
	return &LookupGuard{
		cache: NewWithClock(maxEntries, cooldown, now),
	}
}

func guardKey(infoHash string, season, episode int) string {
	return fmt.Sprintf("%s:%d:%d", infoHash, season, episode)
}

// RecordFailure remembers that the given target could not be found in
// the pack.
func (g *LookupGuard) RecordFailure(infoHash string, season, episode int) {
	g.cache.Set(guardKey(infoHash, season, episode), struct{}{})
}

// RecentlyFailed reports whether a failed lookup for the same target is
// still inside the cool-down window.
func (g *LookupGuard) RecentlyFailed(infoHash string, season, episode int) bool {
	_, found := g.cache.Get(guardKey(infoHash, season, episode))
	return found
}

// Forget clears the record for one target, letting the next request
// reach the providers again.
func (g *LookupGuard) Forget(infoHash string, season, episode int) {
	g.cache.Delete(guardKey(infoHash, season, episode))
}

// Len returns the number of remembered failures.
func (g *LookupGuard) Len() int {
	return g.cache.Len()
}
