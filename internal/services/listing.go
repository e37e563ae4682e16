package services

import (
	"strings"

	"github.com/amaumene/packarr/internal/constants"
	"github.com/amaumene/packarr/internal/models"
	"github.com/amaumene/packarr/pkg/titleparser"
)

// buildEntries filters a provider listing down to playable video files
// and annotates each with the season/episode parsed from its name.
// Files that carry an episode number but no season inherit one from
// their folder path, so flat "Episode 03.mkv" layouts inside a
// "Season 2" directory still index correctly.
func buildEntries(listing *models.FileListing) []models.PackFileEntry {
	packSeason := titleparser.Parse(listing.DisplayName).Season()

	entries := make([]models.PackFileEntry, 0, len(listing.Files))
	for _, f := range listing.Files {
		if !isVideoFile(f.Path) || f.SizeBytes < constants.MinVideoFileBytes {
			continue
		}

		parsed := titleparser.Parse(baseName(f.Path))
		season := parsed.Season()
		episode := parsed.Episode()

		if episode > 0 && season == 0 {
			season = folderSeason(f.Path)
		}
		if episode > 0 && season == 0 {
			season = packSeason
		}

		entries = append(entries, models.PackFileEntry{
			Index:         f.Index,
			Path:          f.Path,
			SizeBytes:     f.SizeBytes,
			ParsedSeason:  season,
			ParsedEpisode: episode,
		})
	}
	return entries
}

func isVideoFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range constants.VideoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func baseName(filePath string) string {
	if i := strings.LastIndexByte(filePath, '/'); i >= 0 {
		return filePath[i+1:]
	}
	return filePath
}

// folderSeason extracts a season number from the directory components
// of a file path, innermost directory first.
func folderSeason(filePath string) int {
	parts := strings.Split(filePath, "/")
	if len(parts) < 2 {
		return 0
	}
	for i := len(parts) - 2; i >= 0; i-- {
		if s := titleparser.Parse(parts[i]).Season(); s > 0 {
			return s
		}
	}
	return 0
}
