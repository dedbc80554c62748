package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"
)

// maxRecentlyPlayed is Spotify's per-request cap on the recently-played
// endpoint; the endpoint also never reaches further back than 50 items.
const maxRecentlyPlayed = 50

// FetchRecentlyPlayed retrieves the user's recently played tracks, newest
// first. A non-zero after narrows the result to plays strictly after that
// time.
func (c *Client) FetchRecentlyPlayed(ctx context.Context, after time.Time) ([]PlayedTrack, error) {
	opts := &spotify.RecentlyPlayedOptions{Limit: maxRecentlyPlayed}
	if !after.IsZero() {
		opts.AfterEpochMs = after.UnixMilli()
	}

	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}

	tracks := make([]PlayedTrack, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, convertPlayedItem(item))
	}
	return tracks, nil
}

// convertPlayedItem flattens a Spotify RecentlyPlayedItem.
func convertPlayedItem(item spotify.RecentlyPlayedItem) PlayedTrack {
	artists := make([]string, len(item.Track.Artists))
	for i, a := range item.Track.Artists {
		artists[i] = a.Name
	}

	return PlayedTrack{
		ID:         item.Track.ID.String(),
		Name:       item.Track.Name,
		Artists:    artists,
		Album:      item.Track.Album.Name,
		AlbumID:    item.Track.Album.ID.String(),
		DurationMs: int(item.Track.Duration),
		PlayedAt:   item.PlayedAt,
	}
}
