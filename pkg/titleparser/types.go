// Package titleparser turns loose release filenames into structured
// metadata: season/episode numbers, resolution, quality, codec, language
// and tag labels, release group and a cleaned title.
//
// Parsing is a pure function of the input string. Every category is
// extracted independently from an ordered pattern table, so the result
// is deterministic and idempotent.
package titleparser

// Resolution is the video resolution class of a release.
type Resolution string

const (
	ResolutionUnknown Resolution = "unknown"
	Resolution2160p   Resolution = "2160p"
	Resolution1080p   Resolution = "1080p"
	Resolution720p    Resolution = "720p"
	Resolution480p    Resolution = "480p"
)

// Quality is the source/rip type of a release.
type Quality string

const (
	QualityUnknown     Quality = "unknown"
	QualityBluRayRemux Quality = "BluRay REMUX"
	QualityBluRay      Quality = "BluRay"
	QualityBDRip       Quality = "BDRip"
	QualityBRRip       Quality = "BRRip"
	QualityWEBDL       Quality = "WEB-DL"
	QualityWEBRip      Quality = "WEBRip"
	QualityWEB         Quality = "WEB"
	QualityHDRip       Quality = "HDRip"
	QualityHDTV        Quality = "HDTV"
	QualityDVDRip      Quality = "DVDRip"
	QualityCAM         Quality = "CAM"
	QualityTS          Quality = "TS"
	QualitySCR         Quality = "SCR"
)

// Codec is the video codec of a release.
type Codec string

const (
	CodecUnknown Codec = "unknown"
	CodecAVC     Codec = "AVC"
	CodecHEVC    Codec = "HEVC"
	CodecAV1     Codec = "AV1"
	CodecXvid    Codec = "Xvid"
	CodecDivX    Codec = "DivX"
)

// ParsedTitle is the structured result of parsing one filename.
type ParsedTitle struct {
	Title        string     `json:"title,omitempty"`
	Year         int        `json:"year,omitempty"`
	Seasons      []int      `json:"seasons,omitempty"`
	Episodes     []int      `json:"episodes,omitempty"`
	Resolution   Resolution `json:"resolution"`
	Quality      Quality    `json:"quality"`
	Codec        Codec      `json:"codec"`
	Languages    []string   `json:"languages,omitempty"`
	AudioTags    []string   `json:"audio_tags,omitempty"`
	VisualTags   []string   `json:"visual_tags,omitempty"`
	Channels     []string   `json:"audio_channels,omitempty"`
	ReleaseGroup string     `json:"release_group,omitempty"`
	Complete     bool       `json:"complete,omitempty"`
	Extended     bool       `json:"extended,omitempty"`
	Repack       bool       `json:"repack,omitempty"`
	Proper       bool       `json:"proper,omitempty"`
}

// Season returns the first parsed season number, or 0 if none was found.
func (p ParsedTitle) Season() int {
	if len(p.Seasons) > 0 {
		return p.Seasons[0]
	}
	return 0
}

// Episode returns the first parsed episode number, or 0 if none was found.
func (p ParsedTitle) Episode() int {
	if len(p.Episodes) > 0 {
		return p.Episodes[0]
	}
	return 0
}

// HasEpisode reports whether the parse found the given season/episode
// pair. A file that carries episode numbers but no season marker matches
// any requested season (absolute numbering).
func (p ParsedTitle) HasEpisode(season, episode int) bool {
	episodeOK := false
	for _, e := range p.Episodes {
		if e == episode {
			episodeOK = true
			break
		}
	}
	if !episodeOK {
		return false
	}

	if len(p.Seasons) == 0 {
		return true
	}
	for _, s := range p.Seasons {
		if s == season {
			return true
		}
	}
	return false
}
