// Package batch applies the lyric fetch and language detection pipeline
// across many tracks, bounding the item count and isolating per-item
// failures so one bad track never aborts the rest.
package batch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kmorowski/lyricmood/internal/lyrics"
)

// DefaultConcurrency bounds the worker pool for batch processing. Real
// throughput is governed by the lyric provider's rate limiting, not by
// this pool.
const DefaultConcurrency = 5

// LyricFetcher abstracts the lyric provider. Provider-level misses are
// reported inside the Document via its Source; a non-nil error means the
// item itself failed and is excluded from the batch result.
type LyricFetcher interface {
	Fetch(ctx context.Context, trackName, artistName string) (lyrics.Document, error)
}

// LanguageDetector identifies the language of lyric text, defaulting to
// "en" rather than failing.
type LanguageDetector interface {
	Detect(text string) string
}

// Item is one track submitted for batch lyric processing.
type Item struct {
	Name       string
	Artists    []string
	TrackID    string // preferred identifier
	ProviderID string // fallback identifier (e.g. Spotify ID)
}

// id resolves the item's identifier, preferring the explicit track ID.
func (i Item) id() string {
	if i.TrackID != "" {
		return i.TrackID
	}
	return i.ProviderID
}

// Result is the lyric outcome for one successfully processed item.
type Result struct {
	Lyrics         *string
	Source         lyrics.Source
	IsInstrumental bool
	Language       *string
}

// Coordinator runs the fetch/clean/detect pipeline over track batches.
type Coordinator struct {
	fetcher     LyricFetcher
	languages   LanguageDetector
	concurrency int
	logger      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConcurrency sets the number of concurrent fetch workers.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the coordinator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a batch coordinator.
func New(fetcher LyricFetcher, languages LanguageDetector, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		languages:   languages,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLyrics fetches and classifies lyrics for up to maxItems tracks
// (maxItems <= 0 means no cap; truncation keeps input order). Items
// without a display name or identifier are skipped silently. A failing
// item is logged and omitted; remaining items still process. The result
// map is keyed by each item's resolved identifier.
func (c *Coordinator) FetchLyrics(ctx context.Context, items []Item, maxItems int) map[string]Result {
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	type outcome struct {
		id     string
		result Result
		ok     bool
	}
	outcomes := make([]outcome, len(items))

	type workItem struct {
		index int
		item  Item
	}
	workCh := make(chan workItem, len(items))
	for i, it := range items {
		workCh <- workItem{index: i, item: it}
	}
	close(workCh)

	var wg sync.WaitGroup
	for w := 0; w < c.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				id, result, ok := c.safeProcess(ctx, work.item)
				outcomes[work.index] = outcome{id: id, result: result, ok: ok}
			}
		}()
	}
	wg.Wait()

	results := make(map[string]Result, len(items))
	for _, o := range outcomes {
		if o.ok {
			results[o.id] = o.result
		}
	}

	c.logger.Info("batch lyric fetch complete", "requested", len(items), "processed", len(results))
	return results
}

// safeProcess confines a panicking fetcher to the item that triggered it.
func (c *Coordinator) safeProcess(ctx context.Context, item Item) (id string, result Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("batch item panicked", "track", item.Name, "panic", r)
			id, result, ok = "", Result{}, false
		}
	}()
	return c.processItem(ctx, item)
}

// processItem runs the pipeline for a single track. ok is false when the
// item was skipped or failed; the caller contributes no entry for it.
func (c *Coordinator) processItem(ctx context.Context, item Item) (string, Result, bool) {
	id := item.id()
	if item.Name == "" || id == "" {
		return "", Result{}, false
	}

	artist := lyrics.NormalizeArtist(item.Artists)
	if artist == "" {
		artist = "Unknown"
	}

	doc, err := c.fetcher.Fetch(ctx, item.Name, artist)
	if err != nil {
		c.logger.Warn("batch item failed", "track", item.Name, "id", id, "error", err)
		return "", Result{}, false
	}

	result := Result{
		Source:         doc.Source,
		IsInstrumental: doc.IsInstrumental,
	}
	if doc.HasLyrics() {
		text := doc.CleanedText
		result.Lyrics = &text
		lang := c.detectLanguage(text)
		result.Language = &lang
	}
	return id, result, true
}

// detectLanguage is best-effort: any detector misbehavior, including a
// panic, falls back to the default language.
func (c *Coordinator) detectLanguage(text string) (lang string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("language detection panicked", "panic", r)
			lang = "en"
		}
	}()

	lang = c.languages.Detect(text)
	if lang == "" {
		lang = "en"
	}
	return lang
}
