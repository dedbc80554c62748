package genius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/kmorowski/lyricmood/internal/lyrics"
)

const (
	apiBaseURL = "https://api.genius.com"
	userAgent  = "lyricmood/1.0"
)

// ErrRateLimited is returned when the API rate limit is exceeded after retries.
var ErrRateLimited = errors.New("rate limit exceeded")

// Client fetches lyrics from Genius: metadata via the search API, lyric
// text from the song page. Results are cached in memory per
// (artist, track) pair. A Client with no token is "disabled": every
// fetch reports source "none" without touching the network.
type Client struct {
	token      string
	httpClient *http.Client
	apiURL     string
	logger     *slog.Logger

	cache   map[string]lyrics.Document
	cacheMu sync.RWMutex
}

// NewClient creates a Genius client from the provided configuration.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		token: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiURL: apiBaseURL,
		logger: logger,
		cache:  make(map[string]lyrics.Document),
	}
}

// Disabled returns a client without credentials. Fetch always reports
// source "none".
func Disabled(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		logger: logger,
		cache:  make(map[string]lyrics.Document),
	}
}

// FromEnv builds a client from environment configuration. Any
// configuration error, including a missing token, degrades to a
// disabled client rather than failing startup.
func FromEnv(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := LoadConfig()
	if err != nil {
		logger.Warn("lyric fetching disabled", "error", err)
		return Disabled(logger)
	}
	return NewClient(cfg, logger)
}

// Fetch looks up lyrics for a track. Lookup failures are absorbed into a
// Document with Source "error" rather than returned: a missing provider
// produces Source "none". Both mean "no lyrics available" downstream.
// The error return exists only to satisfy the batch coordinator's fetcher
// contract and to surface context cancellation.
func (c *Client) Fetch(ctx context.Context, trackName, artistName string) (lyrics.Document, error) {
	if err := ctx.Err(); err != nil {
		return lyrics.Document{}, err
	}
	if c.token == "" {
		return lyrics.Document{Source: lyrics.SourceNone}, nil
	}

	cleanTrack := lyrics.NormalizeTitle(trackName)
	cleanArtist := strings.TrimSpace(artistName)

	cacheKey := cleanArtist + "\x00" + cleanTrack
	c.cacheMu.RLock()
	if doc, ok := c.cache[cacheKey]; ok {
		c.cacheMu.RUnlock()
		return doc, nil
	}
	c.cacheMu.RUnlock()

	doc := c.fetch(ctx, cleanTrack, cleanArtist)

	// Transient failures are not cached; a later batch may succeed.
	if doc.Source != lyrics.SourceError {
		c.cacheMu.Lock()
		c.cache[cacheKey] = doc
		c.cacheMu.Unlock()
	}
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, track, artist string) lyrics.Document {
	match, err := c.search(ctx, track, artist)
	if err != nil {
		c.logger.Warn("lyrics search failed", "track", track, "artist", artist, "error", err)
		return lyrics.Document{Source: lyrics.SourceError}
	}
	if match == nil {
		return lyrics.Document{Source: lyrics.SourceGenius}
	}

	raw, err := c.fetchSongLyrics(ctx, match.URL)
	if err != nil {
		c.logger.Warn("lyrics page fetch failed", "url", match.URL, "error", err)
		return lyrics.Document{Source: lyrics.SourceError}
	}
	if raw == "" {
		return lyrics.Document{Source: lyrics.SourceGenius}
	}

	if lyrics.IsInstrumental(raw) {
		return lyrics.Document{Source: lyrics.SourceGenius, IsInstrumental: true}
	}

	cleaned := lyrics.Clean(raw)
	if len(strings.TrimSpace(cleaned)) < lyrics.MinLyricLength {
		// Too short to be real lyrics even though the detector passed.
		return lyrics.Document{Source: lyrics.SourceGenius, IsInstrumental: true}
	}

	return lyrics.Document{
		RawText:     raw,
		CleanedText: cleaned,
		Source:      lyrics.SourceGenius,
	}
}

// search finds the best song match for a (track, artist) pair. Returns
// nil without error when nothing matches.
func (c *Client) search(ctx context.Context, track, artist string) (*song, error) {
	params := url.Values{
		"q": {track + " " + artist},
	}

	body, err := c.doRequest(ctx, c.apiURL+"/search?"+params.Encode(), true)
	if err != nil {
		return nil, fmt.Errorf("searching songs: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	wantArtist := strings.ToLower(artist)
	var fallback *song
	for i := range resp.Response.Hits {
		hit := resp.Response.Hits[i]
		if hit.Type != "" && hit.Type != "song" {
			continue
		}
		s := hit.Result
		if fallback == nil {
			fallback = &s
		}
		got := strings.ToLower(s.PrimaryArtist.Name)
		if wantArtist == "" || strings.Contains(got, wantArtist) || strings.Contains(wantArtist, got) {
			return &s, nil
		}
	}
	return fallback, nil
}

// lyricsContainer matches the lyric blocks on a Genius song page.
var (
	lyricsContainer = regexp.MustCompile(`(?s)<div[^>]+data-lyrics-container="true"[^>]*>(.*?)</div>`)
	lineBreaks      = regexp.MustCompile(`<br\s*/?>`)
	htmlTags        = regexp.MustCompile(`<[^>]+>`)
)

// fetchSongLyrics scrapes the lyric text from a Genius song page. The
// lyrics themselves are not exposed through the API.
func (c *Client) fetchSongLyrics(ctx context.Context, songURL string) (string, error) {
	body, err := c.doRequest(ctx, songURL, false)
	if err != nil {
		return "", fmt.Errorf("fetching song page: %w", err)
	}

	matches := lyricsContainer.FindAllStringSubmatch(string(body), -1)
	if len(matches) == 0 {
		return "", nil
	}

	var out strings.Builder
	for _, m := range matches {
		block := lineBreaks.ReplaceAllString(m[1], "\n")
		block = htmlTags.ReplaceAllString(block, "")
		out.WriteString(html.UnescapeString(block))
		out.WriteString("\n")
	}
	return strings.TrimSpace(out.String()), nil
}

// doRequest performs an HTTP GET with retry on rate limit.
// Retries up to 3 times with exponential backoff (1s, 2s, 4s).
func (c *Client) doRequest(ctx context.Context, reqURL string, authenticated bool) ([]byte, error) {
	delays := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var lastErr error

	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL, authenticated)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrRateLimited) {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

func (c *Client) doSingleRequest(ctx context.Context, reqURL string, authenticated bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
