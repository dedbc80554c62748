package spotify

import "time"

// PlayedTrack is one recently-played item flattened for syncing.
type PlayedTrack struct {
	ID         string
	Name       string
	Artists    []string
	Album      string
	AlbumID    string
	DurationMs int
	PlayedAt   time.Time
}

// Profile identifies the authenticated user.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
}

// AudioFeatures is the subset of Spotify's audio analysis the service
// stores alongside each track.
type AudioFeatures struct {
	Valence      float64
	Energy       float64
	Danceability float64
	Tempo        float64
}
