package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/packarr/internal/models"
)

const testHash = "aabbccddeeff00112233445566778899aabbccdd"

func testDB(t *testing.T, now func() time.Time) *BoltDB {
	t.Helper()

	db, err := NewBoltWithClock(filepath.Join(t.TempDir(), "packs.db"), now)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleEntries() []models.PackFileEntry {
	return []models.PackFileEntry{
		{Index: 1, Path: "Show/Show.S01E01.mkv", SizeBytes: 2_000_000_000, ParsedSeason: 1, ParsedEpisode: 1},
		{Index: 2, Path: "Show/Show.S01E02.mkv", SizeBytes: 2_100_000_000, ParsedSeason: 1, ParsedEpisode: 2},
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t, time.Now)

	count, err := db.UpsertPackEntries(testHash, "Show.S01.1080p", sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pack, expired, err := db.GetPackIndex(testHash, 10*24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, pack)
	assert.False(t, expired)
	assert.Equal(t, testHash, pack.InfoHash)
	assert.Equal(t, "Show.S01.1080p", pack.PackTitle)
	assert.Len(t, pack.Entries, 2)
}

func TestGetUnknownPack(t *testing.T) {
	db := testDB(t, time.Now)

	pack, expired, err := db.GetPackIndex(testHash, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, pack)
	assert.False(t, expired)
}

func TestHashNormalizedOnWriteAndRead(t *testing.T) {
	db := testDB(t, time.Now)

	upper := "AABBCCDDEEFF00112233445566778899AABBCCDD"
	_, err := db.UpsertPackEntries(upper, "Pack", sampleEntries())
	require.NoError(t, err)

	pack, _, err := db.GetPackIndex(testHash, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, pack)
	assert.Equal(t, testHash, pack.InfoHash)
}

func TestTTLExpiry(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := testDB(t, func() time.Time { return current })

	_, err := db.UpsertPackEntries(testHash, "Pack", sampleEntries())
	require.NoError(t, err)

	ttl := 10 * 24 * time.Hour

	current = current.Add(9 * 24 * time.Hour)
	pack, expired, err := db.GetPackIndex(testHash, ttl)
	require.NoError(t, err)
	require.NotNil(t, pack)
	assert.False(t, expired)

	// An 11 day old index against a 10 day TTL is stale but still
	// returned, so callers can fall back to it if a refetch fails.
	current = current.Add(2 * 24 * time.Hour)
	pack, expired, err = db.GetPackIndex(testHash, ttl)
	require.NoError(t, err)
	require.NotNil(t, pack)
	assert.True(t, expired)
}

func TestMergePreservesAnnotations(t *testing.T) {
	db := testDB(t, time.Now)

	annotated := []models.PackFileEntry{
		{Index: 1, Path: "Pack/Movie.2001.mkv", SizeBytes: 2_000_000_000, MatchedTitleID: "tt0126029"},
	}
	_, err := db.UpsertPackEntries(testHash, "Pack", annotated)
	require.NoError(t, err)

	// A later resolution of the same pack reports the file without the
	// annotation; the stored one must survive.
	bare := []models.PackFileEntry{
		{Index: 1, Path: "Pack/Movie.2001.mkv", SizeBytes: 2_000_000_000},
		{Index: 2, Path: "Pack/Movie.2.2004.mkv", SizeBytes: 2_100_000_000},
	}
	count, err := db.UpsertPackEntries(testHash, "Pack", bare)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pack, _, err := db.GetPackIndex(testHash, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "tt0126029", pack.Entries[0].MatchedTitleID)
	assert.Equal(t, 2, pack.Entries[1].Index)
}

func TestMergeFillsBlankAnnotations(t *testing.T) {
	db := testDB(t, time.Now)

	_, err := db.UpsertPackEntries(testHash, "Pack", []models.PackFileEntry{
		{Index: 1, Path: "Pack/Movie.mkv", SizeBytes: 2_000_000_000},
	})
	require.NoError(t, err)

	_, err = db.UpsertPackEntries(testHash, "Pack", []models.PackFileEntry{
		{Index: 1, Path: "Pack/Movie.mkv", SizeBytes: 2_000_000_000, MatchedTitleID: "tt0126029"},
	})
	require.NoError(t, err)

	pack, _, err := db.GetPackIndex(testHash, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "tt0126029", pack.Entries[0].MatchedTitleID)
}

func TestMergeKeepsCreatedAt(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := testDB(t, func() time.Time { return current })

	_, err := db.UpsertPackEntries(testHash, "Pack", sampleEntries())
	require.NoError(t, err)

	first, _, err := db.GetPackIndex(testHash, 0)
	require.NoError(t, err)

	// A merge five days later must not push the expiry forward.
	current = current.Add(5 * 24 * time.Hour)
	_, err = db.UpsertPackEntries(testHash, "Pack", []models.PackFileEntry{
		{Index: 3, Path: "Show/Show.S01E03.mkv", SizeBytes: 2_000_000_000, ParsedSeason: 1, ParsedEpisode: 3},
	})
	require.NoError(t, err)

	second, _, err := db.GetPackIndex(testHash, 0)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
	assert.Len(t, second.Entries, 3)
}

func TestFindEpisodeAbsoluteNumbering(t *testing.T) {
	pack := &models.PackIndex{
		Entries: []models.PackFileEntry{
			{Index: 1, Path: "Anime - 28.mkv", ParsedEpisode: 28},
		},
	}

	// No parsed season matches any requested season.
	assert.NotNil(t, pack.FindEpisode(3, 28))
	assert.NotNil(t, pack.FindEpisode(1, 28))
	assert.Nil(t, pack.FindEpisode(3, 29))
}
