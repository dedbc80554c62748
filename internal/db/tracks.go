package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const trackColumns = `id, name, artist, album, album_id, duration_ms, valence, energy, danceability, tempo, created_at`

// TrackRepository handles track and listen database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

func scanTrack(row pgx.Row) (Track, error) {
	var t Track
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Artist,
		&t.Album,
		&t.AlbumID,
		&t.DurationMs,
		&t.Valence,
		&t.Energy,
		&t.Danceability,
		&t.Tempo,
		&t.CreatedAt,
	)
	return t, err
}

// Upsert creates or updates a track.
func (r *TrackRepository) Upsert(ctx context.Context, track *Track) error {
	query := `
		INSERT INTO tracks (id, name, artist, album, album_id, duration_ms, valence, energy, danceability, tempo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			artist = EXCLUDED.artist,
			album = EXCLUDED.album,
			album_id = EXCLUDED.album_id,
			duration_ms = EXCLUDED.duration_ms,
			valence = COALESCE(EXCLUDED.valence, tracks.valence),
			energy = COALESCE(EXCLUDED.energy, tracks.energy),
			danceability = COALESCE(EXCLUDED.danceability, tracks.danceability),
			tempo = COALESCE(EXCLUDED.tempo, tracks.tempo)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		track.ID,
		track.Name,
		track.Artist,
		track.Album,
		track.AlbumID,
		track.DurationMs,
		track.Valence,
		track.Energy,
		track.Danceability,
		track.Tempo,
	).Scan(&track.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting track: %w", err)
	}
	return nil
}

// UpsertBatch inserts or updates multiple tracks efficiently. Audio
// features only overwrite stored values when the incoming row has them.
func (r *TrackRepository) UpsertBatch(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tracks (id, name, artist, album, album_id, duration_ms, valence, energy, danceability, tempo, created_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::int[], $7::float8[], $8::float8[], $9::float8[], $10::float8[], $11::timestamptz[])
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			artist = EXCLUDED.artist,
			album = EXCLUDED.album,
			album_id = EXCLUDED.album_id,
			duration_ms = EXCLUDED.duration_ms,
			valence = COALESCE(EXCLUDED.valence, tracks.valence),
			energy = COALESCE(EXCLUDED.energy, tracks.energy),
			danceability = COALESCE(EXCLUDED.danceability, tracks.danceability),
			tempo = COALESCE(EXCLUDED.tempo, tracks.tempo)
	`

	ids := make([]string, len(tracks))
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	albums := make([]*string, len(tracks))
	albumIDs := make([]*string, len(tracks))
	durations := make([]*int, len(tracks))
	valences := make([]*float64, len(tracks))
	energies := make([]*float64, len(tracks))
	danceabilities := make([]*float64, len(tracks))
	tempos := make([]*float64, len(tracks))
	createdAts := make([]time.Time, len(tracks))

	now := time.Now()
	for i, t := range tracks {
		ids[i] = t.ID
		names[i] = t.Name
		artists[i] = t.Artist
		albums[i] = t.Album
		albumIDs[i] = t.AlbumID
		durations[i] = t.DurationMs
		valences[i] = t.Valence
		energies[i] = t.Energy
		danceabilities[i] = t.Danceability
		tempos[i] = t.Tempo
		createdAts[i] = now
	}

	_, err := r.pool.Exec(ctx, query, ids, names, artists, albums, albumIDs, durations, valences, energies, danceabilities, tempos, createdAts)
	if err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}
	return nil
}

// Get retrieves a track by ID.
func (r *TrackRepository) Get(ctx context.Context, id string) (*Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = $1`
	track, err := scanTrack(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	return &track, nil
}

// RecordListens inserts listen events, ignoring replays already stored.
func (r *TrackRepository) RecordListens(ctx context.Context, listens []Listen) error {
	if len(listens) == 0 {
		return nil
	}

	query := `
		INSERT INTO listens (user_id, track_id, played_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::timestamptz[])
		ON CONFLICT (user_id, track_id, played_at) DO NOTHING
	`

	userIDs := make([]string, len(listens))
	trackIDs := make([]string, len(listens))
	playedAts := make([]time.Time, len(listens))

	for i, l := range listens {
		userIDs[i] = l.UserID
		trackIDs[i] = l.TrackID
		playedAts[i] = l.PlayedAt
	}

	_, err := r.pool.Exec(ctx, query, userIDs, trackIDs, playedAts)
	if err != nil {
		return fmt.Errorf("batch inserting listens: %w", err)
	}
	return nil
}

// GetRecentListens retrieves a user's most recent listens with the
// associated tracks, newest first.
func (r *TrackRepository) GetRecentListens(ctx context.Context, userID string, limit int) ([]Listen, []Track, error) {
	query := `
		SELECT t.id, t.name, t.artist, t.album, t.album_id, t.duration_ms,
		       t.valence, t.energy, t.danceability, t.tempo, t.created_at,
		       l.played_at
		FROM tracks t
		JOIN listens l ON t.id = l.track_id
		WHERE l.user_id = $1
		ORDER BY l.played_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("querying recent listens: %w", err)
	}
	defer rows.Close()

	var listens []Listen
	var tracks []Track
	for rows.Next() {
		var track Track
		var playedAt time.Time
		if err := rows.Scan(
			&track.ID,
			&track.Name,
			&track.Artist,
			&track.Album,
			&track.AlbumID,
			&track.DurationMs,
			&track.Valence,
			&track.Energy,
			&track.Danceability,
			&track.Tempo,
			&track.CreatedAt,
			&playedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("scanning listen: %w", err)
		}
		tracks = append(tracks, track)
		listens = append(listens, Listen{
			UserID:   userID,
			TrackID:  track.ID,
			PlayedAt: playedAt,
		})
	}
	return listens, tracks, rows.Err()
}

// GetLatestListenTime returns the played-at timestamp of the user's most
// recent stored listen, or ErrNotFound when they have none.
func (r *TrackRepository) GetLatestListenTime(ctx context.Context, userID string) (time.Time, error) {
	query := `SELECT MAX(played_at) FROM listens WHERE user_id = $1`
	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("querying latest listen: %w", err)
	}
	if latest == nil {
		return time.Time{}, ErrNotFound
	}
	return *latest, nil
}

// GetWithoutLyrics returns tracks from the given set that have no stored
// lyric row yet.
func (r *TrackRepository) GetWithoutLyrics(ctx context.Context, trackIDs []string) ([]Track, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + trackColumns + `
		FROM tracks
		WHERE id = ANY($1)
		  AND id NOT IN (SELECT track_id FROM lyrics)
	`
	rows, err := r.pool.Query(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying tracks without lyrics: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
