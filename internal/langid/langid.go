// Package langid provides best-effort lyric language identification.
package langid

import (
	"strings"

	prose "github.com/tsawler/prose/v3"
)

// DefaultLanguage is returned whenever detection fails or is inconclusive.
const DefaultLanguage = "en"

// Detector identifies the language of lyric text. Zero-confidence or
// malformed results fall back to DefaultLanguage rather than erroring;
// downstream consumers never need to handle detection failure.
type Detector struct {
	inner *prose.LanguageDetector
}

// New creates a Detector.
func New() *Detector {
	return &Detector{inner: prose.NewLanguageDetector()}
}

// Detect returns the ISO-639-1 code for text, or DefaultLanguage when the
// text is empty or the detector has no confident answer.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultLanguage
	}

	lang, confidence := d.inner.DetectLanguage(text)
	code := strings.ToLower(string(lang))
	if confidence <= 0 || len(code) != 2 {
		return DefaultLanguage
	}
	return code
}
