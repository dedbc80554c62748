// Package sync orchestrates the listen ingestion pipeline: recently
// played tracks from Spotify, lyric lookups, mood scoring, and mood
// grouping, all persisted to PostgreSQL.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kmorowski/lyricmood/internal/batch"
	"github.com/kmorowski/lyricmood/internal/db"
	"github.com/kmorowski/lyricmood/internal/moodcluster"
	"github.com/kmorowski/lyricmood/internal/sentiment"
	"github.com/kmorowski/lyricmood/internal/spotify"
)

// Common errors.
var (
	// ErrSyncTooRecent is returned when sync is attempted within the cooldown period.
	ErrSyncTooRecent = errors.New("sync attempted too recently")
)

// DefaultSyncCooldown is the default time between allowed syncs.
const DefaultSyncCooldown = 15 * time.Minute

// DefaultMoodWindow bounds how far back the mood grouping looks.
const DefaultMoodWindow = 7 * 24 * time.Hour

// maxBatchTracks caps how many tracks one sync sends through the lyric
// pipeline.
const maxBatchTracks = 50

// Scorer produces a mood score for lyric text.
type Scorer interface {
	Score(ctx context.Context, text string, mode sentiment.Mode) sentiment.Score
}

// Service handles syncing listens from Spotify into the database and
// running the lyric/scoring pipeline over them.
type Service struct {
	db           *db.DB
	coordinator  *batch.Coordinator
	scorer       Scorer
	syncCooldown time.Duration
	mode         sentiment.Mode
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSyncCooldown sets the minimum time between syncs.
func WithSyncCooldown(d time.Duration) Option {
	return func(s *Service) {
		s.syncCooldown = d
	}
}

// WithMode sets the scoring mode used for newly fetched lyrics.
func WithMode(mode sentiment.Mode) Option {
	return func(s *Service) {
		s.mode = mode
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a new sync service.
func New(database *db.DB, coordinator *batch.Coordinator, scorer Scorer, opts ...Option) *Service {
	s := &Service{
		db:           database,
		coordinator:  coordinator,
		scorer:       scorer,
		syncCooldown: DefaultSyncCooldown,
		mode:         sentiment.ModeComprehensive,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result contains the outcome of a sync operation.
type Result struct {
	ListenCount   int       `json:"listen_count"`
	NewTrackCount int       `json:"new_track_count"`
	LyricsFetched int       `json:"lyrics_fetched"`
	TracksScored  int       `json:"tracks_scored"`
	SyncedAt      time.Time `json:"synced_at"`
}

// CanSync checks if enough time has passed since the last sync. Returns
// whether sync is allowed and, when it is not, when it next will be.
func (s *Service) CanSync(ctx context.Context, userID string) (bool, time.Time, error) {
	user, err := s.db.Users().Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		// New user, allow sync
		return true, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, fmt.Errorf("getting user: %w", err)
	}

	due, next := user.SyncDue(s.syncCooldown, time.Now())
	return due, next, nil
}

// SyncRecentListens pulls the user's recently played tracks and runs the
// full pipeline: persist tracks and listens, fetch lyrics for tracks
// that have none, score the new lyrics, and store the score records.
// Returns ErrSyncTooRecent within the cooldown period unless forced.
func (s *Service) SyncRecentListens(ctx context.Context, client *spotify.Client, userID string, force bool) (*Result, error) {
	if !force {
		canSync, nextTime, err := s.CanSync(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !canSync {
			return nil, fmt.Errorf("%w: next sync available at %s", ErrSyncTooRecent, nextTime.Format(time.RFC3339))
		}
	}

	var after time.Time
	latest, err := s.db.Tracks().GetLatestListenTime(ctx, userID)
	switch {
	case err == nil:
		after = latest
	case errors.Is(err, db.ErrNotFound):
		// first sync, fetch everything the endpoint still has
	default:
		return nil, fmt.Errorf("getting latest listen: %w", err)
	}

	played, err := client.FetchRecentlyPlayed(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}

	if len(played) == 0 {
		syncTime := time.Now()
		if err := s.db.Users().MarkSynced(ctx, userID, syncTime); err != nil {
			return nil, fmt.Errorf("advancing sync cursor: %w", err)
		}
		return &Result{SyncedAt: syncTime}, nil
	}

	tracks, listens := convertPlayed(played, userID)

	if features, err := client.FetchAudioFeatures(ctx, trackIDs(tracks)); err != nil {
		// Audio features are enrichment only; the pipeline continues without them.
		s.logger.Warn("fetching audio features failed", "user", userID, "error", err)
	} else {
		applyFeatures(tracks, features)
	}

	if err := s.db.Tracks().UpsertBatch(ctx, tracks); err != nil {
		return nil, fmt.Errorf("upserting tracks: %w", err)
	}
	if err := s.db.Tracks().RecordListens(ctx, listens); err != nil {
		return nil, fmt.Errorf("recording listens: %w", err)
	}

	lyricCount, scoreCount, err := s.processLyrics(ctx, played, tracks)
	if err != nil {
		return nil, err
	}

	syncTime := time.Now()
	if err := s.db.Users().MarkSynced(ctx, userID, syncTime); err != nil {
		return nil, fmt.Errorf("advancing sync cursor: %w", err)
	}

	s.logger.Info("sync complete",
		"user", userID,
		"listens", len(listens),
		"tracks", len(tracks),
		"lyrics", lyricCount,
		"scored", scoreCount,
	)

	return &Result{
		ListenCount:   len(listens),
		NewTrackCount: len(tracks),
		LyricsFetched: lyricCount,
		TracksScored:  scoreCount,
		SyncedAt:      syncTime,
	}, nil
}

// processLyrics runs the lyric fetch and scoring stages for tracks that
// have no stored lyric row yet.
func (s *Service) processLyrics(ctx context.Context, played []spotify.PlayedTrack, tracks []db.Track) (int, int, error) {
	pending, err := s.db.Tracks().GetWithoutLyrics(ctx, trackIDs(tracks))
	if err != nil {
		return 0, 0, fmt.Errorf("finding tracks without lyrics: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	artistsByID := make(map[string][]string, len(played))
	for _, p := range played {
		artistsByID[p.ID] = p.Artists
	}

	items := make([]batch.Item, len(pending))
	for i, t := range pending {
		items[i] = batch.Item{
			Name:       t.Name,
			Artists:    artistsByID[t.ID],
			TrackID:    t.ID,
			ProviderID: t.ID,
		}
	}

	results := s.coordinator.FetchLyrics(ctx, items, maxBatchTracks)

	rows := make([]db.Lyric, 0, len(results))
	var records []sentiment.Record
	for trackID, res := range results {
		rows = append(rows, db.Lyric{
			TrackID:        trackID,
			Text:           res.Lyrics,
			Source:         string(res.Source),
			IsInstrumental: res.IsInstrumental,
			Language:       res.Language,
		})

		if res.Lyrics != nil {
			score := s.scorer.Score(ctx, *res.Lyrics, s.mode)
			records = append(records, score.Record(trackID))
		}
	}

	if err := s.db.Lyrics().UpsertBatch(ctx, rows); err != nil {
		return 0, 0, fmt.Errorf("upserting lyrics: %w", err)
	}
	if err := s.db.Scores().InsertBatch(ctx, records); err != nil {
		return 0, 0, fmt.Errorf("inserting scores: %w", err)
	}

	return len(rows), len(records), nil
}

// MoodResult contains the outcome of mood grouping.
type MoodResult struct {
	Groups       []moodcluster.Group `json:"groups"`
	OutlierCount int                 `json:"outlier_count"`
	TrackCount   int                 `json:"track_count"`
	Since        time.Time           `json:"since"`
}

// Moods groups the user's recently listened tracks by mood. The window
// bounds how far back listens are considered; zero means the default.
func (s *Service) Moods(ctx context.Context, userID string, window time.Duration, cfg moodcluster.Config) (*MoodResult, error) {
	if window <= 0 {
		window = DefaultMoodWindow
	}
	since := time.Now().Add(-window)

	recs, err := s.db.Scores().GetRecentForUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("loading recent scores: %w", err)
	}

	groups, outliers := moodcluster.Cluster(recs, cfg, s.logger)

	return &MoodResult{
		Groups:       groups,
		OutlierCount: len(outliers),
		TrackCount:   len(recs),
		Since:        since,
	}, nil
}

// GetLastSyncTime returns the last sync time for a user, or nil if the
// user has never synced.
func (s *Service) GetLastSyncTime(ctx context.Context, userID string) (*time.Time, error) {
	user, err := s.db.Users().Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user.LastSyncAt, nil
}

// convertPlayed maps recently played items to database rows, deduplicating
// tracks replayed within the window.
func convertPlayed(played []spotify.PlayedTrack, userID string) ([]db.Track, []db.Listen) {
	seen := make(map[string]bool, len(played))
	var tracks []db.Track
	listens := make([]db.Listen, 0, len(played))

	for _, p := range played {
		listens = append(listens, db.Listen{
			UserID:   userID,
			TrackID:  p.ID,
			PlayedAt: p.PlayedAt,
		})

		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		album := p.Album
		albumID := p.AlbumID
		duration := p.DurationMs
		tracks = append(tracks, db.Track{
			ID:         p.ID,
			Name:       p.Name,
			Artist:     joinArtists(p.Artists),
			Album:      &album,
			AlbumID:    &albumID,
			DurationMs: &duration,
		})
	}

	return tracks, listens
}

func joinArtists(artists []string) string {
	return strings.Join(artists, ", ")
}

func trackIDs(tracks []db.Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

// applyFeatures copies fetched audio features onto the track rows.
func applyFeatures(tracks []db.Track, features map[string]spotify.AudioFeatures) {
	for i := range tracks {
		f, ok := features[tracks[i].ID]
		if !ok {
			continue
		}
		valence := f.Valence
		energy := f.Energy
		danceability := f.Danceability
		tempo := f.Tempo
		tracks[i].Valence = &valence
		tracks[i].Energy = &energy
		tracks[i].Danceability = &danceability
		tracks[i].Tempo = &tempo
	}
}
