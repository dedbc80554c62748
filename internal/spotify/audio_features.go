package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

const maxTracksPerRequest = 100

// FetchAudioFeatures retrieves audio features for the given tracks,
// keyed by track ID. Requests are batched to Spotify's 100-track limit;
// tracks the API declines are simply absent from the result.
func (c *Client) FetchAudioFeatures(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, error) {
	result := make(map[string]AudioFeatures, len(trackIDs))
	if len(trackIDs) == 0 {
		return result, nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))

		features, err := c.api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // track has no audio features
			}
			result[f.ID.String()] = AudioFeatures{
				Valence:      float64(f.Valence),
				Energy:       float64(f.Energy),
				Danceability: float64(f.Danceability),
				Tempo:        float64(f.Tempo),
			}
		}
	}

	return result, nil
}
