package titleparser

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parse extracts structured metadata from a release filename. It never
// performs I/O and always returns the same result for the same input.
func Parse(name string) ParsedTitle {
	name = strings.TrimSpace(name)
	base := videoExtPattern.ReplaceAllString(name, "")

	parsed := ParsedTitle{
		Resolution: ResolutionUnknown,
		Quality:    QualityUnknown,
		Codec:      CodecUnknown,
	}

	if label, ok := firstMatch(resolutionTable, base); ok {
		parsed.Resolution = Resolution(label)
	}
	if label, ok := firstMatch(qualityTable, base); ok {
		parsed.Quality = Quality(label)
	}
	if label, ok := firstMatch(codecTable, base); ok {
		parsed.Codec = Codec(label)
	}

	parsed.Languages = matchLanguages(base)
	parsed.AudioTags = allMatches(audioTagTable, base)
	parsed.VisualTags = allMatches(visualTagTable, base)
	parsed.Channels = allMatches(channelsTable, base)

	parsed.Complete = completePattern.MatchString(base)
	parsed.Extended = extendedPattern.MatchString(base)
	parsed.Repack = repackPattern.MatchString(base)
	parsed.Proper = properPattern.MatchString(base)

	parsed.Seasons, parsed.Episodes = parseSeasonEpisode(base)
	if m := yearPattern.FindString(base); m != "" {
		parsed.Year, _ = strconv.Atoi(m)
	}

	parsed.Title = extractTitle(base)
	parsed.ReleaseGroup = extractReleaseGroup(base)

	return parsed
}

// firstMatch returns the label of the first table entry matching name.
// Table order is the priority order.
func firstMatch(table []pattern, name string) (string, bool) {
	for _, p := range table {
		if p.re.MatchString(name) {
			return p.label, true
		}
	}
	return "", false
}

// allMatches returns the labels of every table entry matching name.
func allMatches(table []pattern, name string) []string {
	var labels []string
	for _, p := range table {
		if p.re.MatchString(name) {
			labels = append(labels, p.label)
		}
	}
	return labels
}

// matchLanguages collects language labels, discarding matches that are
// marked as subtitle-only by an adjacent token.
func matchLanguages(name string) []string {
	var labels []string
	for _, p := range languageTable {
		locs := p.re.FindAllStringIndex(name, -1)
		for _, loc := range locs {
			if !subtitleMarked(name, loc[0], loc[1]) {
				labels = append(labels, p.label)
				break
			}
		}
	}
	return labels
}

var subtitleTokens = map[string]bool{
	"sub":       true,
	"subs":      true,
	"subbed":    true,
	"subtitle":  true,
	"subtitles": true,
	"vost":      true,
	"legendado": true,
}

// subtitleMarked reports whether the match at [start,end) is flanked by
// a standalone subtitle token. "ENG.sub.ita" marks Italian as subtitles
// only; "ITA.SUBITA" does not, because SUBITA is a single compound token
// and the standalone ITA before it stands on its own.
func subtitleMarked(name string, start, end int) bool {
	if tok := tokenBefore(name, start); subtitleTokens[strings.ToLower(tok)] {
		return true
	}
	if tok := tokenAfter(name, end); subtitleTokens[strings.ToLower(tok)] {
		return true
	}
	return false
}

func isSeparator(c byte) bool {
	return c == '.' || c == ' ' || c == '_' || c == '-' || c == '[' || c == ']' || c == '(' || c == ')'
}

func tokenBefore(name string, pos int) string {
	end := pos
	for end > 0 && isSeparator(name[end-1]) {
		end--
	}
	start := end
	for start > 0 && !isSeparator(name[start-1]) {
		start--
	}
	return name[start:end]
}

func tokenAfter(name string, pos int) string {
	start := pos
	for start < len(name) && isSeparator(name[start]) {
		start++
	}
	end := start
	for end < len(name) && !isSeparator(name[end]) {
		end++
	}
	return name[start:end]
}

// parseSeasonEpisode tries the season/episode patterns in priority
// order; the first pattern that matches wins. When nothing matches, an
// absolute-episode fallback covers serialized content without season
// numbering.
func parseSeasonEpisode(name string) (seasons, episodes []int) {
	if m := sxxExxPattern.FindStringSubmatchIndex(name); m != nil {
		season := atoi(name[m[2]:m[3]])
		first := atoi(name[m[4]:m[5]])
		episodes = append(episodes, first)
		episodes = append(episodes, trailingEpisodes(name[m[1]:], first)...)
		return []int{season}, dedupeSorted(episodes)
	}

	if m := nxMPattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}, []int{atoi(m[2])}
	}

	if m := seasonEpisodePattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}, []int{atoi(m[2])}
	}

	if m := seasonRangePattern.FindStringSubmatch(name); m != nil {
		return expandRange(atoi(m[1]), atoi(m[2])), nil
	}

	if m := loneSeasonPattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}, nil
	}

	if m := seasonWordPattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}, nil
	}

	return nil, absoluteEpisode(name)
}

// trailingEpisodes extends an SxxExx match over multi-episode suffixes:
// "S01E01E02E03" contributes the extra episodes, "S01E01-03" expands the
// inclusive range.
func trailingEpisodes(rest string, first int) []int {
	if m := sxxExxMorePattern.FindString(rest); m != "" {
		var extra []int
		for _, d := range episodeDigitsPattern.FindAllStringSubmatch(m, -1) {
			extra = append(extra, atoi(d[1]))
		}
		return extra
	}

	if m := sxxExxRangePattern.FindStringSubmatch(rest); m != nil {
		if end := atoi(m[1]); end > first {
			return expandRange(first+1, end)
		}
	}

	return nil
}

func absoluteEpisode(name string) []int {
	if m := animeDashPattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}
	}
	if m := loneEpisodePattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}
	}
	if m := epWordPattern.FindStringSubmatch(name); m != nil {
		return []int{atoi(m[1])}
	}
	return nil
}

// extractTitle takes everything before the earliest terminator match.
// When two terminators match at different offsets the smaller offset
// wins regardless of category, so a number inside the title that looks
// like a year or resolution can truncate it early.
func extractTitle(name string) string {
	cut := len(name)
	for _, re := range titleTerminators {
		if loc := re.FindStringIndex(name); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	return normalizeTitle(name[:cut])
}

func normalizeTitle(raw string) string {
	raw = bracketedPattern.ReplaceAllString(raw, " ")
	raw = separatorRun.ReplaceAllString(raw, " ")
	raw = strings.Trim(raw, " -–")
	if raw == "" {
		return ""
	}
	return cases.Title(language.English, cases.NoLower).String(raw)
}

// extractReleaseGroup looks for a non-numeric token after the final
// hyphen, skipping tokens that are really season/episode or resolution
// markers.
func extractReleaseGroup(name string) string {
	idx := strings.LastIndex(name, "-")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}

	token := strings.TrimSpace(name[idx+1:])
	if !groupTokenOK.MatchString(token) {
		return ""
	}
	if sxxExxPattern.MatchString(token) || loneSeasonPattern.MatchString(token) {
		return ""
	}
	for _, p := range resolutionTable {
		if p.re.MatchString(token) {
			return ""
		}
	}
	// Hyphenated source tags (WEB-DL, Blu-Ray) leave their second half
	// after the final hyphen; reject the token when it is a quality
	// marker itself or completes one together with the token before the
	// hyphen. The joined form must match whole, so HDTV-LOL still yields
	// the group LOL.
	joined := tokenBefore(name, idx) + "-" + token
	for _, p := range qualityTable {
		if p.re.FindString(token) == token || p.re.FindString(joined) == joined {
			return ""
		}
	}
	return token
}

func expandRange(start, end int) []int {
	if start > end || end-start > 100 {
		return []int{start}
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}

func dedupeSorted(values []int) []int {
	sort.Ints(values)
	out := values[:0]
	for i, v := range values {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
