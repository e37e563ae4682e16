package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/amaumene/packarr/internal/cache"
	"github.com/amaumene/packarr/internal/constants"
	"github.com/amaumene/packarr/internal/database"
	apperrors "github.com/amaumene/packarr/internal/errors"
	"github.com/amaumene/packarr/internal/models"
	"github.com/amaumene/packarr/pkg/bencode"
	"github.com/amaumene/packarr/pkg/logger"
	"github.com/amaumene/packarr/pkg/moviematcher"
	"github.com/amaumene/packarr/pkg/titleparser"
)

// Resolver maps a (pack, target) request to a concrete file index. It
// consults the persistent pack store first, falls back to the provider
// chain, and annotates the store with whatever the parse pass learned
// so later requests against the same pack stay local.
type Resolver struct {
	db      database.Database
	fetcher ListingFetcher
	guard   *cache.LookupGuard
	logger  logger.Logger
	packTTL time.Duration
}

func NewResolver(db database.Database, fetcher ListingFetcher, guard *cache.LookupGuard, packTTL time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		db:      db,
		fetcher: fetcher,
		guard:   guard,
		logger:  log,
		packTTL: packTTL,
	}
}

// Resolve finds the file inside the pack that corresponds to the
// requested episode or movie title. A nil error with a non-nil
// resolution is the only success shape; a missing target yields a
// not-found typed error so callers can tell it apart from provider
// trouble.
func (r *Resolver) Resolve(ctx context.Context, req models.ResolveRequest) (*models.Resolution, error) {
	infoHash, err := normalizeInfoHash(req.InfoHash)
	if err != nil {
		return nil, err
	}
	req.InfoHash = infoHash

	pack, expired, err := r.db.GetPackIndex(infoHash, r.packTTL)
	if err != nil {
		return nil, err
	}

	if pack != nil && !expired {
		resolution, done, err := r.resolveFromCache(pack, req)
		if done {
			return resolution, err
		}
		// Partial hit worth a refetch. The guard stops us from asking
		// the providers again for a target they already failed to
		// yield.
		if r.guard.RecentlyFailed(infoHash, req.Season, req.Episode) {
			r.logger.Debugf("[resolver] guard cool-down active for %s s%de%d", infoHash, req.Season, req.Episode)
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("target not in pack %s (recent lookup failed)", infoHash))
		}
	}

	if r.guard.RecentlyFailed(infoHash, req.Season, req.Episode) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("target not in pack %s (recent lookup failed)", infoHash))
	}

	listing, err := r.fetcher.FetchListing(ctx, infoHash)
	if err != nil {
		return nil, err
	}

	return r.resolveFromListing(listing, req)
}

// ResolveTorrent resolves a target from raw .torrent metadata supplied
// by the caller, bypassing the provider chain. The decoded listing is
// persisted exactly like a provider response.
func (r *Resolver) ResolveTorrent(ctx context.Context, torrentData []byte, req models.ResolveRequest) (*models.Resolution, error) {
	torrent, err := bencode.ParseTorrent(torrentData)
	if err != nil {
		return nil, apperrors.NewParseError("failed to decode torrent metadata", err)
	}
	req.InfoHash = torrent.InfoHash

	pack, expired, err := r.db.GetPackIndex(torrent.InfoHash, r.packTTL)
	if err != nil {
		return nil, err
	}
	if pack != nil && !expired {
		if resolution, done, err := r.resolveFromCache(pack, req); done {
			return resolution, err
		}
	}

	listing := &models.FileListing{DisplayName: torrent.Name, Source: "torrent"}
	for _, f := range torrent.Files {
		listing.Files = append(listing.Files, models.ProviderFile{
			Index:     f.Index,
			Path:      f.Path,
			SizeBytes: f.Size,
		})
	}
	return r.resolveFromListing(listing, req)
}

// resolveFromCache serves the request from the stored pack index. The
// second return value reports whether the cache settled the request;
// false means the caller should consult the providers.
func (r *Resolver) resolveFromCache(pack *models.PackIndex, req models.ResolveRequest) (*models.Resolution, bool, error) {
	if req.IsSeries() {
		if entry := findEpisode(pack.Entries, req.Season, req.Episode); entry != nil {
			r.logger.Debugf("[resolver] cache hit for %s s%de%d", pack.InfoHash, req.Season, req.Episode)
			return resolution(pack.InfoHash, entry, pack.TotalSize(), "cache"), true, nil
		}
		if packCoversSeason(pack.PackTitle, req.Season) {
			return nil, false, nil
		}
		return nil, true, apperrors.NewNotFoundError(
			fmt.Sprintf("s%de%d not in pack %s", req.Season, req.Episode, pack.InfoHash))
	}

	if entry := pack.FindMatched(req.TitleID); entry != nil {
		return resolution(pack.InfoHash, entry, pack.TotalSize(), "cache"), true, nil
	}

	// The stored listing is complete for movie packs, so a fresh
	// provider fetch cannot add information. Run the matcher over the
	// cached entries and commit the annotation if it lands.
	entry := matchMovie(pack.Entries, req)
	if entry == nil {
		return nil, true, apperrors.NewNotFoundError(
			fmt.Sprintf("no file in pack %s matches %q", pack.InfoHash, req.TitleID))
	}

	annotated := *entry
	annotated.MatchedTitleID = req.TitleID
	if _, err := r.db.UpsertPackEntries(pack.InfoHash, pack.PackTitle, []models.PackFileEntry{annotated}); err != nil {
		r.logger.Warnf("[resolver] failed to persist title annotation for %s: %v", pack.InfoHash, err)
	}
	return resolution(pack.InfoHash, &annotated, pack.TotalSize(), "cache"), true, nil
}

// resolveFromListing runs the parse-and-match stage over a fresh
// provider listing, persists what it learned, and extracts the target.
func (r *Resolver) resolveFromListing(listing *models.FileListing, req models.ResolveRequest) (*models.Resolution, error) {
	entries := buildEntries(listing)

	if len(entries) == 0 {
		r.guard.RecordFailure(req.InfoHash, req.Season, req.Episode)
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("pack %s holds no playable video files", req.InfoHash))
	}

	var target *models.PackFileEntry
	if req.IsSeries() {
		if countStructured(entries) == 0 {
			// Persist anyway so the unreliable verdict is reproducible
			// from cache instead of costing another provider round trip.
			if _, err := r.db.UpsertPackEntries(req.InfoHash, listing.DisplayName, entries); err != nil {
				r.logger.Warnf("[resolver] failed to persist pack %s: %v", req.InfoHash, err)
			}
			r.guard.RecordFailure(req.InfoHash, req.Season, req.Episode)
			return nil, apperrors.NewUnreliablePackError(req.InfoHash)
		}
		target = findEpisode(entries, req.Season, req.Episode)
	} else {
		target = matchMovie(entries, req)
		if target != nil {
			target.MatchedTitleID = req.TitleID
		}
	}

	count, err := r.db.UpsertPackEntries(req.InfoHash, listing.DisplayName, entries)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("[resolver] indexed pack %s via %s (%d entries)", req.InfoHash, listing.Source, count)

	if target == nil {
		r.guard.RecordFailure(req.InfoHash, req.Season, req.Episode)
		if req.IsSeries() {
			return nil, apperrors.NewNotFoundError(
				fmt.Sprintf("s%de%d not in pack %s", req.Season, req.Episode, req.InfoHash))
		}
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("no file in pack %s matches the requested title", req.InfoHash))
	}

	return resolution(req.InfoHash, target, totalSize(entries), listing.Source), nil
}

func resolution(infoHash string, entry *models.PackFileEntry, packSize int64, source string) *models.Resolution {
	return &models.Resolution{
		InfoHash:           infoHash,
		FileIndex:          entry.Index,
		FileName:           path.Base(entry.Path),
		FileSizeBytes:      entry.SizeBytes,
		TotalPackSizeBytes: packSize,
		Source:             source,
	}
}

func normalizeInfoHash(infoHash string) (string, error) {
	hash := strings.ToLower(strings.TrimSpace(infoHash))
	if len(hash) != 40 {
		return "", apperrors.NewParseError(fmt.Sprintf("invalid info hash %q", infoHash), nil)
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", apperrors.NewParseError(fmt.Sprintf("invalid info hash %q", infoHash), nil)
		}
	}
	return hash, nil
}

// packCoversSeason reports whether the stored pack title suggests the
// pack may contain the requested season even though no indexed entry
// does. Multi-season markers and an explicit season range both count.
func packCoversSeason(packTitle string, season int) bool {
	lower := strings.ToLower(packTitle)
	for _, keyword := range constants.MultiSeasonKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	parsed := titleparser.Parse(packTitle)
	for _, s := range parsed.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

func matchMovie(entries []models.PackFileEntry, req models.ResolveRequest) *models.PackFileEntry {
	candidates := make([]moviematcher.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, moviematcher.Candidate{
			Index: e.Index,
			Path:  e.Path,
			Size:  e.SizeBytes,
		})
	}

	best := moviematcher.Match(candidates, req.Titles, req.Year)
	if best == nil {
		return nil
	}
	for i := range entries {
		if entries[i].Index == best.Index {
			return &entries[i]
		}
	}
	return nil
}

// findEpisode locates the entry for a season/episode pair. The stored
// annotation carries only the first episode of a file, so when no entry
// matches directly the filenames are re-parsed and multi-episode files
// (S01E01-03) satisfy any episode they cover.
func findEpisode(entries []models.PackFileEntry, season, episode int) *models.PackFileEntry {
	for i := range entries {
		e := &entries[i]
		if e.ParsedEpisode != episode {
			continue
		}
		if e.ParsedSeason == 0 || e.ParsedSeason == season {
			return e
		}
	}
	for i := range entries {
		e := &entries[i]
		if e.ParsedEpisode == 0 {
			continue
		}
		if e.ParsedSeason != 0 && e.ParsedSeason != season {
			continue
		}
		if titleparser.Parse(baseName(e.Path)).HasEpisode(season, episode) {
			return e
		}
	}
	return nil
}

func countStructured(entries []models.PackFileEntry) int {
	count := 0
	for _, e := range entries {
		if e.ParsedEpisode > 0 {
			count++
		}
	}
	return count
}

func totalSize(entries []models.PackFileEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.SizeBytes
	}
	return total
}
