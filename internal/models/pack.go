// Package models defines the shared data structures of the pack
// resolution engine.
package models

import "time"

// PackFileEntry is one member file of a pack. The provider-assigned
// index is stable and 1-based; (info hash, index) is unique.
type PackFileEntry struct {
	Index          int    `json:"index"`
	Path           string `json:"path"`
	SizeBytes      int64  `json:"size_bytes"`
	ParsedSeason   int    `json:"parsed_season,omitempty"`
	ParsedEpisode  int    `json:"parsed_episode,omitempty"`
	MatchedTitleID string `json:"matched_title_id,omitempty"`
}

// PackIndex is the cached file listing of one pack. The file list is
// immutable once populated; only MatchedTitleID annotations accumulate
// over later resolutions. CreatedAt is set on first creation and drives
// the TTL, it is never reset by merges.
type PackIndex struct {
	InfoHash  string          `json:"info_hash"`
	PackTitle string          `json:"pack_title,omitempty"`
	Entries   []PackFileEntry `json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
}

// TotalSize returns the combined size of all files in the pack.
func (p *PackIndex) TotalSize() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.SizeBytes
	}
	return total
}

// FindEpisode returns the entry parsed as the given season/episode, or
// nil. Entries without a parsed season match any requested season
// (absolute numbering).
func (p *PackIndex) FindEpisode(season, episode int) *PackFileEntry {
	for i := range p.Entries {
		e := &p.Entries[i]
		if e.ParsedEpisode != episode {
			continue
		}
		if e.ParsedSeason == 0 || e.ParsedSeason == season {
			return e
		}
	}
	return nil
}

// FindMatched returns the entry previously annotated with the given
// title id, or nil.
func (p *PackIndex) FindMatched(titleID string) *PackFileEntry {
	if titleID == "" {
		return nil
	}
	for i := range p.Entries {
		if p.Entries[i].MatchedTitleID == titleID {
			return &p.Entries[i]
		}
	}
	return nil
}

// ProviderFile is one file as reported by a debrid provider or decoded
// from torrent metadata.
type ProviderFile struct {
	Index     int
	Path      string
	SizeBytes int64
}

// FileListing is the result of a provider lookup for one pack.
type FileListing struct {
	DisplayName string
	Files       []ProviderFile
	Source      string
}

// ResolveRequest asks for one file inside the pack identified by
// InfoHash. Series requests carry Season/Episode; movie requests carry
// the acceptable title variants, a target year and the id to annotate
// the matched file with.
type ResolveRequest struct {
	InfoHash string
	Season   int
	Episode  int
	Titles   []string
	Year     int
	TitleID  string
}

// IsSeries reports whether the request targets a season/episode rather
// than a movie title.
func (r ResolveRequest) IsSeries() bool {
	return r.Episode > 0
}

// Resolution is the outcome handed to the streaming layer: which file
// index inside which pack corresponds to the requested target.
type Resolution struct {
	InfoHash           string `json:"info_hash"`
	FileIndex          int    `json:"file_index"`
	FileName           string `json:"file_name"`
	FileSizeBytes      int64  `json:"file_size_bytes"`
	TotalPackSizeBytes int64  `json:"total_pack_size_bytes"`
	Source             string `json:"source"`
}
