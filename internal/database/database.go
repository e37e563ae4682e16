// Package database persists resolved pack indexes in BoltDB.
package database

import (
	"strings"
	"time"

	"github.com/amaumene/packarr/internal/models"
)

// Database is the persistent pack store consumed by the resolver.
type Database interface {
	// GetPackIndex returns the cached pack index for an info hash, plus
	// whether it is older than ttl. Returns (nil, false, nil) when the
	// pack has never been indexed.
	GetPackIndex(infoHash string, ttl time.Duration) (*models.PackIndex, bool, error)
	// UpsertPackEntries merges entries into the stored index and
	// returns the number of stored entries after the merge. Existing
	// MatchedTitleID annotations are never overwritten with empty
	// values, and CreatedAt is preserved across merges.
	UpsertPackEntries(infoHash, packTitle string, entries []models.PackFileEntry) (int, error)
	// Close closes the underlying store.
	Close() error
}

// normalizeHash enforces the lowercase info-hash invariant at the
// storage boundary.
func normalizeHash(infoHash string) string {
	return strings.ToLower(strings.TrimSpace(infoHash))
}

// mergeEntries folds incoming entries into an existing listing keyed by
// file index. The file list itself is append-only; per-file season,
// episode and title annotations fill in blanks but never clobber values
// a previous resolution already committed.
func mergeEntries(existing, incoming []models.PackFileEntry) []models.PackFileEntry {
	byIndex := make(map[int]int, len(existing))
	for i, e := range existing {
		byIndex[e.Index] = i
	}

	for _, in := range incoming {
		pos, ok := byIndex[in.Index]
		if !ok {
			existing = append(existing, in)
			byIndex[in.Index] = len(existing) - 1
			continue
		}

		current := &existing[pos]
		if current.ParsedSeason == 0 {
			current.ParsedSeason = in.ParsedSeason
		}
		if current.ParsedEpisode == 0 {
			current.ParsedEpisode = in.ParsedEpisode
		}
		if current.MatchedTitleID == "" {
			current.MatchedTitleID = in.MatchedTitleID
		}
	}

	return existing
}
