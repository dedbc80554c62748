package lyrics

// Source identifies where a lyric document came from.
type Source string

const (
	// SourceGenius means the lyrics were fetched from the Genius API.
	SourceGenius Source = "genius"
	// SourceNone means no lyric provider was configured or the provider
	// had no result.
	SourceNone Source = "none"
	// SourceError means the provider lookup failed. Treated the same as
	// SourceNone for control flow; kept distinct for diagnostics.
	SourceError Source = "error"
)

// Document is the outcome of one lyric fetch attempt. It is immutable
// once produced; scoring consumes it read-only.
type Document struct {
	RawText        string
	CleanedText    string
	Source         Source
	Language       string // ISO-639-1, empty if not detected
	IsInstrumental bool
}

// HasLyrics reports whether the document carries usable lyric text.
func (d Document) HasLyrics() bool {
	return !d.IsInstrumental && d.CleanedText != ""
}
