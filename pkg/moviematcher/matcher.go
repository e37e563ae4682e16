// Package moviematcher picks the file inside a movie pack that matches
// a requested title, using sequel-number gating and word-coverage
// scoring across all localized title variants.
package moviematcher

import (
	"regexp"
	"strconv"
	"strings"
)

// Candidate is one pack member offered to the matcher.
type Candidate struct {
	Index int
	Path  string
	Size  int64
}

const (
	yearScore      = 50
	titleScore     = 50
	junkPenalty    = 50
	scoreThreshold = 60
)

var (
	partPattern    = regexp.MustCompile(`(?i)\bpart[ea]?[ ._-]*(\d{1,2}|[ivxlc]+)\b`)
	tokenPattern   = regexp.MustCompile(`[A-Za-z0-9]+`)
	digitToken     = regexp.MustCompile(`^\d{1,2}$`)
	mediaToken     = regexp.MustCompile(`(?i)^(2160p?|1080[pi]?|720p?|480p?|4k|uhd|x\.?26[45]|h\.?26[45]|hevc|avc|av1|10bit|(19|20)\d{2})$`)
	junkPattern    = regexp.MustCompile(`(?i)(trailer|sample)`)
	nonSignificant = map[string]bool{
		"the": true, "and": true, "for": true, "les": true, "des": true,
		"los": true, "las": true, "der": true, "die": true, "das": true,
		"une": true, "uno": true, "una": true, "del": true, "von": true,
	}
)

var romanNumerals = map[string]int{
	"ii": 2, "iii": 3, "iv": 4, "vi": 6, "vii": 7, "viii": 8, "ix": 9,
	"xi": 11, "xii": 12, "xiii": 13, "xiv": 14, "xv": 15,
}

// Match returns the pack member best matching one of the target title
// variants, or nil when no candidate clears the acceptance threshold.
// Ties keep the earliest candidate.
func Match(candidates []Candidate, titles []string, year int) *Candidate {
	targetSequel := 0
	for _, t := range titles {
		if n := SequelNumber(t); n > 0 {
			targetSequel = n
			break
		}
	}

	var best *Candidate
	bestScore := 0

	for i := range candidates {
		c := &candidates[i]
		if !sequelMatches(SequelNumber(c.Path), targetSequel) {
			continue
		}

		score := scoreCandidate(c.Path, titles, year)
		if score >= scoreThreshold && score > bestScore {
			best = c
			bestScore = score
		}
	}

	return best
}

// sequelMatches applies the hard sequel gate. A side with no number is
// the first installment; a target with no number accepts none or 1 and
// rejects everything later.
func sequelMatches(candidate, target int) bool {
	if candidate == 0 {
		candidate = 1
	}
	if target == 0 {
		target = 1
	}
	return candidate == target
}

// SequelNumber extracts the installment number of a title or filename.
// Priority: explicit Part/Parte marker, standalone roman numeral token,
// standalone trailing digit that is not a resolution/codec/year token.
func SequelNumber(s string) int {
	if m := partPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
		if n, ok := romanNumerals[strings.ToLower(m[1])]; ok {
			return n
		}
	}

	tokens := tokenPattern.FindAllString(s, -1)
	for _, tok := range tokens {
		if n, ok := romanNumerals[strings.ToLower(tok)]; ok {
			return n
		}
	}

	// Trailing digit: the last small numeric token that follows at
	// least one word and is not itself a media marker.
	sequel := 0
	seenWord := false
	for _, tok := range tokens {
		if mediaToken.MatchString(tok) {
			continue
		}
		if digitToken.MatchString(tok) {
			if seenWord {
				if n, _ := strconv.Atoi(tok); n >= 1 && n <= 20 {
					sequel = n
				}
			}
			continue
		}
		seenWord = true
	}
	return sequel
}

// scoreCandidate scores a filename against every acceptable title
// variant and keeps the best.
func scoreCandidate(path string, titles []string, year int) int {
	lower := strings.ToLower(path)

	score := 0
	for _, title := range titles {
		s := 0
		if year == 0 || strings.Contains(lower, strconv.Itoa(year)) {
			s += yearScore
		}
		s += int(titleScore * wordCoverage(lower, title))
		if s > score {
			score = s
		}
	}

	if junkPattern.MatchString(lower) {
		score -= junkPenalty
	}
	return score
}

// wordCoverage is the fraction of significant title words found as
// substrings of the lowercased filename.
func wordCoverage(lowerPath, title string) float64 {
	var significant []string
	for _, w := range tokenPattern.FindAllString(strings.ToLower(title), -1) {
		if len(w) > 2 && !nonSignificant[w] {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return 0
	}

	found := 0
	for _, w := range significant {
		if strings.Contains(lowerPath, w) {
			found++
		}
	}
	return float64(found) / float64(len(significant))
}
