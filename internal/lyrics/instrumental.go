package lyrics

import (
	"strings"
	"unicode"
)

// MinLyricLength is the secondary instrumental threshold applied by the
// fetch layer: cleaned lyrics shorter than this are treated as
// instrumental even when IsInstrumental returned false, guarding against
// truncated or garbage provider responses.
const MinLyricLength = 50

// minTextLength is the detector's own short-text cutoff.
const minTextLength = 20

// minAlphaRatio is the minimum fraction of alphabetic characters for text
// to count as real lyrics.
const minAlphaRatio = 0.5

// instrumentalKeywords are provider placeholders that mark a track as
// having no lyric content.
var instrumentalKeywords = []string{
	"instrumental",
	"no lyrics",
	"purely instrumental",
	"music only",
}

// IsInstrumental reports whether cleaned lyric text looks like an
// instrumental placeholder rather than real lyrics. This is a heuristic;
// callers must treat a positive as "no lyrics available", not as an error.
func IsInstrumental(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minTextLength {
		return true
	}

	lower := strings.ToLower(text)
	for _, kw := range instrumentalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	alpha := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha) < float64(len([]rune(text)))*minAlphaRatio
}
