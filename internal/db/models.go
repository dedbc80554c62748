package db

import (
	"time"
)

// User represents a Spotify user profile. LastSyncAt is the sync
// cursor: nil until the first listen sync completes.
type User struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastSyncAt  *time.Time // nullable
}

// SyncDue reports whether the user is past the sync cooldown. When the
// cooldown still applies, the second return value is when the next sync
// unlocks. Users who never synced are always due.
func (u *User) SyncDue(cooldown time.Duration, now time.Time) (bool, time.Time) {
	if u.LastSyncAt == nil {
		return true, time.Time{}
	}
	next := u.LastSyncAt.Add(cooldown)
	if now.Before(next) {
		return false, next
	}
	return true, time.Time{}
}

// Session represents an authenticated web session.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Track represents a Spotify track. Audio feature columns are nullable
// because the feature endpoint can decline individual tracks.
type Track struct {
	ID           string
	Name         string
	Artist       string
	Album        *string  // nullable
	AlbumID      *string  // nullable
	DurationMs   *int     // nullable
	Valence      *float64 // nullable, Spotify audio feature
	Energy       *float64 // nullable, Spotify audio feature
	Danceability *float64 // nullable, Spotify audio feature
	Tempo        *float64 // nullable, Spotify audio feature
	CreatedAt    time.Time
}

// Listen represents one playback of a track by a user. The played-at
// timestamp is part of the key: the same track replayed is a new row.
type Listen struct {
	UserID   string
	TrackID  string
	PlayedAt time.Time
}

// Lyric represents the stored lyric outcome for a track. Text is nil for
// instrumental tracks and provider misses; Source records where the
// lookup ended up ("genius", "none", "error").
type Lyric struct {
	TrackID        string
	Text           *string // nullable
	Source         string
	IsInstrumental bool
	Language       *string // nullable
	FetchedAt      time.Time
}
