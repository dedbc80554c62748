package web

import (
	"time"

	"github.com/kmorowski/lyricmood/internal/db"
	"github.com/kmorowski/lyricmood/internal/sentiment"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          *userInfo  `json:"user,omitempty"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
}

type userInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type recentTracksResponse struct {
	Tracks []trackResponse `json:"tracks"`
}

type trackResponse struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Artist   string     `json:"artist"`
	Album    *string    `json:"album,omitempty"`
	PlayedAt *time.Time `json:"played_at,omitempty"`
	Valence  *float64   `json:"audio_valence,omitempty"`
	Energy   *float64   `json:"audio_energy,omitempty"`
	Lyric    *lyricInfo `json:"lyric,omitempty"`
	Score    *scoreInfo `json:"score,omitempty"`
}

type lyricInfo struct {
	Source         string  `json:"source"`
	IsInstrumental bool    `json:"is_instrumental"`
	Language       *string `json:"language,omitempty"`
	Text           *string `json:"text,omitempty"`
}

type scoreInfo struct {
	Polarity   float64                 `json:"polarity"`
	Valence    float64                 `json:"valence"`
	Arousal    float64                 `json:"arousal"`
	Confidence float64                 `json:"confidence"`
	Emotions   sentiment.EmotionVector `json:"emotions"`
	ScoredAt   time.Time               `json:"scored_at"`
}

func newTrackResponse(t db.Track, playedAt time.Time) trackResponse {
	resp := trackResponse{
		ID:      t.ID,
		Name:    t.Name,
		Artist:  t.Artist,
		Album:   t.Album,
		Valence: t.Valence,
		Energy:  t.Energy,
	}
	if !playedAt.IsZero() {
		resp.PlayedAt = &playedAt
	}
	return resp
}

// newLyricInfo converts a stored lyric row; the full text only travels on
// the single-track endpoint.
func newLyricInfo(l db.Lyric, includeText bool) *lyricInfo {
	info := &lyricInfo{
		Source:         l.Source,
		IsInstrumental: l.IsInstrumental,
		Language:       l.Language,
	}
	if includeText {
		info.Text = l.Text
	}
	return info
}

func newScoreInfo(rec sentiment.Record) *scoreInfo {
	return &scoreInfo{
		Polarity:   rec.Polarity,
		Valence:    rec.Valence,
		Arousal:    rec.Arousal,
		Confidence: rec.Confidence,
		Emotions:   rec.Emotions,
		ScoredAt:   rec.CreatedAt,
	}
}
