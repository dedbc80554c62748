package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kmorowski/lyricmood/internal/lyrics"
)

// newTestServer serves a fake search API plus a fake song page.
func newTestServer(t *testing.T, pageLyrics string, searchHits func(r *http.Request) []searchHit) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search"):
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("Authorization = %q", got)
			}
			var resp searchResponse
			resp.Response.Hits = searchHits(r)
			// Point song URLs at this same server.
			for i := range resp.Response.Hits {
				resp.Response.Hits[i].Result.URL = server.URL + "/songs/" + fmt.Sprint(resp.Response.Hits[i].Result.ID)
			}
			json.NewEncoder(w).Encode(resp)
		case strings.HasPrefix(r.URL.Path, "/songs/"):
			fmt.Fprintf(w, `<html><body><div data-lyrics-container="true">%s</div></body></html>`, pageLyrics)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestGenius(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c := NewClient(&Config{AccessToken: "test-token"}, nil)
	c.apiURL = server.URL
	return c
}

func songHit(id int, title, artist string) searchHit {
	var h searchHit
	h.Type = "song"
	h.Result.ID = id
	h.Result.Title = title
	h.Result.PrimaryArtist.Name = artist
	return h
}

func TestFetchReturnsCleanedLyrics(t *testing.T) {
	page := "[Verse 1]<br/>I walk these streets alone at night<br/>Counting every fading light<br/><br/>[Chorus]<br/>And I sing, and I sing, and I sing it loud"
	server := newTestServer(t, page, func(r *http.Request) []searchHit {
		return []searchHit{songHit(1, "Streets", "The Strides")}
	})
	c := newTestGenius(t, server)

	doc, err := c.Fetch(context.Background(), "Streets", "Strides")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if doc.Source != lyrics.SourceGenius {
		t.Errorf("source = %q, want genius", doc.Source)
	}
	if doc.IsInstrumental {
		t.Errorf("unexpected instrumental flag")
	}
	if strings.Contains(doc.CleanedText, "[Verse 1]") {
		t.Errorf("section marker survived cleaning: %q", doc.CleanedText)
	}
	if !strings.Contains(doc.CleanedText, "I walk these streets alone at night") {
		t.Errorf("cleaned text missing lyric line: %q", doc.CleanedText)
	}
}

func TestFetchShortLyricsTreatedAsInstrumental(t *testing.T) {
	// Long enough to pass the detector, under the secondary length floor
	// after cleaning.
	page := "[Skit - spoken word segment]la la la hmm hmm yeah"
	server := newTestServer(t, page, func(r *http.Request) []searchHit {
		return []searchHit{songHit(2, "Interlude", "Band")}
	})
	c := newTestGenius(t, server)

	doc, err := c.Fetch(context.Background(), "Interlude", "Band")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !doc.IsInstrumental {
		t.Errorf("want instrumental reclassification for short cleaned lyrics, got %+v", doc)
	}
	if doc.Source != lyrics.SourceGenius {
		t.Errorf("source = %q, want genius", doc.Source)
	}
}

func TestFetchInstrumentalKeyword(t *testing.T) {
	page := "This song is purely instrumental from beginning to end, just music."
	server := newTestServer(t, page, func(r *http.Request) []searchHit {
		return []searchHit{songHit(3, "Suite", "Ensemble")}
	})
	c := newTestGenius(t, server)

	doc, _ := c.Fetch(context.Background(), "Suite", "Ensemble")
	if !doc.IsInstrumental {
		t.Errorf("want instrumental for keyword text, got %+v", doc)
	}
}

func TestFetchNoMatch(t *testing.T) {
	server := newTestServer(t, "", func(r *http.Request) []searchHit { return nil })
	c := newTestGenius(t, server)

	doc, _ := c.Fetch(context.Background(), "Ghost Song", "Nobody")
	if doc.Source != lyrics.SourceGenius || doc.HasLyrics() || doc.IsInstrumental {
		t.Errorf("want empty genius document for no match, got %+v", doc)
	}
}

func TestFetchDisabledClient(t *testing.T) {
	c := Disabled(nil)
	doc, _ := c.Fetch(context.Background(), "Anything", "Anyone")
	if doc.Source != lyrics.SourceNone {
		t.Errorf("source = %q, want none", doc.Source)
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("missing token degrades to disabled", func(t *testing.T) {
		t.Setenv("GENIUS_ACCESS_TOKEN", "")
		c := FromEnv(nil)
		doc, err := c.Fetch(context.Background(), "Song", "Artist")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if doc.Source != lyrics.SourceNone {
			t.Errorf("source = %q, want none", doc.Source)
		}
	})

	t.Run("token configures live client", func(t *testing.T) {
		t.Setenv("GENIUS_ACCESS_TOKEN", "env-token")
		c := FromEnv(nil)
		if c.token != "env-token" {
			t.Errorf("token = %q, want env-token", c.token)
		}
	})
}

func TestFetchServerErrorReportsErrorSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	c := newTestGenius(t, server)

	doc, _ := c.Fetch(context.Background(), "Song", "Artist")
	if doc.Source != lyrics.SourceError {
		t.Errorf("source = %q, want error", doc.Source)
	}
}

func TestFetchUsesCache(t *testing.T) {
	var searches atomic.Int32
	page := "Some reasonably long lyric text that easily clears both length thresholds for real songs"
	server := newTestServer(t, page, func(r *http.Request) []searchHit {
		searches.Add(1)
		return []searchHit{songHit(4, "Hit", "Artist")}
	})
	c := newTestGenius(t, server)

	first, _ := c.Fetch(context.Background(), "Hit", "Artist")
	second, _ := c.Fetch(context.Background(), "Hit", "Artist")

	if searches.Load() != 1 {
		t.Errorf("search called %d times, want 1 (cached)", searches.Load())
	}
	if first.CleanedText != second.CleanedText {
		t.Errorf("cache returned different document")
	}
}

func TestSearchPrefersArtistMatch(t *testing.T) {
	page := "Another reasonably long lyric body so the fetch path treats this as a real sung track"
	server := newTestServer(t, page, func(r *http.Request) []searchHit {
		return []searchHit{
			songHit(10, "Cover", "Tribute Band"),
			songHit(11, "Original", "Real Artist"),
		}
	})
	c := newTestGenius(t, server)

	match, err := c.search(context.Background(), "Original", "Real Artist")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if match == nil || match.ID != 11 {
		t.Errorf("match = %+v, want song 11", match)
	}
}
