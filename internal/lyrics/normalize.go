// Package lyrics provides lyric text normalization, cleaning, and
// instrumental-track detection for the scoring pipeline.
package lyrics

import (
	"regexp"
	"strings"
)

// titlePatterns strips release metadata that hurts lyric lookup.
// Later patterns run against the already-shortened string.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*-\s*Remaster(ed)?\s*\d*`),
	regexp.MustCompile(`(?i)\s*-\s*\d{4}\s*Remaster`),
	regexp.MustCompile(`(?i)\s*\(.*?Remix.*?\)`),
	regexp.MustCompile(`(?i)\s*\(.*?Edit.*?\)`),
	regexp.MustCompile(`(?i)\s*\(.*?Version.*?\)`),
	regexp.MustCompile(`(?i)\s*\(feat\..*?\)`),
	regexp.MustCompile(`(?i)\s*\[.*?\]`),
	regexp.MustCompile(`(?i)\s*-\s*Live.*`),
	regexp.MustCompile(`(?i)\s*\(Live.*?\)`),
}

var theArtistPrefix = regexp.MustCompile(`(?i)^The\s+`)

var (
	embedMarker    = regexp.MustCompile(`\d+Embed$`)
	alsoLikeMarker = regexp.MustCompile(`You might also like`)
	sectionMarker  = regexp.MustCompile(`\[.*?\]`)
	urlMarker      = regexp.MustCompile(`http\S+`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
	spaceRuns      = regexp.MustCompile(` {2,}`)
)

// NormalizeTitle strips remaster suffixes, remix/edit/version/feat.
// parentheticals, bracketed annotations, and live-version suffixes from a
// track title so provider search matches the canonical recording.
func NormalizeTitle(title string) string {
	normalized := title
	for _, p := range titlePatterns {
		normalized = p.ReplaceAllString(normalized, "")
	}
	return strings.TrimSpace(normalized)
}

// NormalizeArtist picks the primary artist from a track's artist list and
// strips a leading "The " for better provider matching. An empty list
// yields an empty string.
func NormalizeArtist(artists []string) string {
	if len(artists) == 0 {
		return ""
	}
	return strings.TrimSpace(theArtistPrefix.ReplaceAllString(artists[0], ""))
}

// Clean removes provider artifacts from raw lyric text: trailing embed
// markers, the "You might also like" banner, [Verse]/[Chorus] section
// markers, URLs, and excess whitespace. Clean is idempotent.
func Clean(raw string) string {
	cleaned := embedMarker.ReplaceAllString(raw, "")
	cleaned = alsoLikeMarker.ReplaceAllString(cleaned, "")
	cleaned = sectionMarker.ReplaceAllString(cleaned, "")
	cleaned = urlMarker.ReplaceAllString(cleaned, "")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n\n")
	cleaned = spaceRuns.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
