package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LyricRepository handles lyric database operations.
type LyricRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or updates the lyric row for a track.
func (r *LyricRepository) Upsert(ctx context.Context, lyric *Lyric) error {
	query := `
		INSERT INTO lyrics (track_id, text, source, is_instrumental, language, fetched_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (track_id) DO UPDATE SET
			text = EXCLUDED.text,
			source = EXCLUDED.source,
			is_instrumental = EXCLUDED.is_instrumental,
			language = EXCLUDED.language,
			fetched_at = EXCLUDED.fetched_at
		RETURNING fetched_at
	`
	err := r.pool.QueryRow(ctx, query,
		lyric.TrackID,
		lyric.Text,
		lyric.Source,
		lyric.IsInstrumental,
		lyric.Language,
	).Scan(&lyric.FetchedAt)
	if err != nil {
		return fmt.Errorf("upserting lyric: %w", err)
	}
	return nil
}

// UpsertBatch inserts or updates multiple lyric rows efficiently.
func (r *LyricRepository) UpsertBatch(ctx context.Context, lyrics []Lyric) error {
	if len(lyrics) == 0 {
		return nil
	}

	query := `
		INSERT INTO lyrics (track_id, text, source, is_instrumental, language, fetched_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::bool[], $5::text[], $6::timestamptz[])
		ON CONFLICT (track_id) DO UPDATE SET
			text = EXCLUDED.text,
			source = EXCLUDED.source,
			is_instrumental = EXCLUDED.is_instrumental,
			language = EXCLUDED.language,
			fetched_at = EXCLUDED.fetched_at
	`

	trackIDs := make([]string, len(lyrics))
	texts := make([]*string, len(lyrics))
	sources := make([]string, len(lyrics))
	instrumentals := make([]bool, len(lyrics))
	languages := make([]*string, len(lyrics))
	fetchedAts := make([]time.Time, len(lyrics))

	now := time.Now()
	for i, l := range lyrics {
		trackIDs[i] = l.TrackID
		texts[i] = l.Text
		sources[i] = l.Source
		instrumentals[i] = l.IsInstrumental
		languages[i] = l.Language
		fetchedAts[i] = now
	}

	_, err := r.pool.Exec(ctx, query, trackIDs, texts, sources, instrumentals, languages, fetchedAts)
	if err != nil {
		return fmt.Errorf("batch upserting lyrics: %w", err)
	}
	return nil
}

// GetForTrack retrieves the lyric row for a track.
func (r *LyricRepository) GetForTrack(ctx context.Context, trackID string) (*Lyric, error) {
	query := `
		SELECT track_id, text, source, is_instrumental, language, fetched_at
		FROM lyrics
		WHERE track_id = $1
	`
	var lyric Lyric
	err := r.pool.QueryRow(ctx, query, trackID).Scan(
		&lyric.TrackID,
		&lyric.Text,
		&lyric.Source,
		&lyric.IsInstrumental,
		&lyric.Language,
		&lyric.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying lyric: %w", err)
	}
	return &lyric, nil
}

// GetForTracks retrieves lyric rows for multiple tracks, keyed by track ID.
func (r *LyricRepository) GetForTracks(ctx context.Context, trackIDs []string) (map[string]Lyric, error) {
	if len(trackIDs) == 0 {
		return make(map[string]Lyric), nil
	}

	query := `
		SELECT track_id, text, source, is_instrumental, language, fetched_at
		FROM lyrics
		WHERE track_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying lyrics: %w", err)
	}
	defer rows.Close()

	result := make(map[string]Lyric)
	for rows.Next() {
		var lyric Lyric
		if err := rows.Scan(
			&lyric.TrackID,
			&lyric.Text,
			&lyric.Source,
			&lyric.IsInstrumental,
			&lyric.Language,
			&lyric.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning lyric: %w", err)
		}
		result[lyric.TrackID] = lyric
	}
	return result, rows.Err()
}

// GetStale returns track IDs whose failed lookups are older than the
// given time, so they can be retried.
func (r *LyricRepository) GetStale(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	query := `
		SELECT track_id
		FROM lyrics
		WHERE source = 'error' AND fetched_at < $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("querying stale lyrics: %w", err)
	}
	defer rows.Close()

	var trackIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning track ID: %w", err)
		}
		trackIDs = append(trackIDs, id)
	}
	return trackIDs, rows.Err()
}

// DeleteForTrack removes the lyric row for a track.
func (r *LyricRepository) DeleteForTrack(ctx context.Context, trackID string) error {
	query := `DELETE FROM lyrics WHERE track_id = $1`
	_, err := r.pool.Exec(ctx, query, trackID)
	if err != nil {
		return fmt.Errorf("deleting lyric: %w", err)
	}
	return nil
}
