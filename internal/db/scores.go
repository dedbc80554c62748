package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kmorowski/lyricmood/internal/sentiment"
)

const scoreColumns = `id, track_id, model_tag, polarity, compound, emotions, valence, arousal, confidence, created_at`

// ScoreRepository handles mood score database operations. The emotion
// vector is stored as a jsonb column; pgx marshals it through its json
// struct tags.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

func scanScore(row pgx.Row) (sentiment.Record, error) {
	var rec sentiment.Record
	err := row.Scan(
		&rec.ID,
		&rec.TrackID,
		&rec.ModelTag,
		&rec.Polarity,
		&rec.Compound,
		&rec.Emotions,
		&rec.Valence,
		&rec.Arousal,
		&rec.Confidence,
		&rec.CreatedAt,
	)
	return rec, err
}

// Insert stores a new score record.
func (r *ScoreRepository) Insert(ctx context.Context, rec *sentiment.Record) error {
	query := `
		INSERT INTO scores (id, track_id, model_tag, polarity, compound, emotions, valence, arousal, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.TrackID,
		rec.ModelTag,
		rec.Polarity,
		rec.Compound,
		rec.Emotions,
		rec.Valence,
		rec.Arousal,
		rec.Confidence,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting score: %w", err)
	}
	return nil
}

// InsertBatch stores multiple score records in one transaction.
func (r *ScoreRepository) InsertBatch(ctx context.Context, recs []sentiment.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO scores (id, track_id, model_tag, polarity, compound, emotions, valence, arousal, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i := range recs {
		rec := &recs[i]
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if _, err := tx.Exec(ctx, query,
			rec.ID,
			rec.TrackID,
			rec.ModelTag,
			rec.Polarity,
			rec.Compound,
			rec.Emotions,
			rec.Valence,
			rec.Arousal,
			rec.Confidence,
			rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting score for track %s: %w", rec.TrackID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetLatestForTrack retrieves the newest score for a (track, model) pair.
func (r *ScoreRepository) GetLatestForTrack(ctx context.Context, trackID, modelTag string) (*sentiment.Record, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM scores
		WHERE track_id = $1 AND model_tag = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	rec, err := scanScore(r.pool.QueryRow(ctx, query, trackID, modelTag))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying score: %w", err)
	}
	return &rec, nil
}

// GetLatestForTracks retrieves the newest score per track for the given
// model tag, keyed by track ID.
func (r *ScoreRepository) GetLatestForTracks(ctx context.Context, trackIDs []string, modelTag string) (map[string]sentiment.Record, error) {
	if len(trackIDs) == 0 {
		return make(map[string]sentiment.Record), nil
	}

	query := `
		SELECT DISTINCT ON (track_id) ` + scoreColumns + `
		FROM scores
		WHERE track_id = ANY($1) AND model_tag = $2
		ORDER BY track_id, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, trackIDs, modelTag)
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	result := make(map[string]sentiment.Record)
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		result[rec.TrackID] = rec
	}
	return result, rows.Err()
}

// GetUnscored returns track IDs from the given set that have no score
// for the given model tag.
func (r *ScoreRepository) GetUnscored(ctx context.Context, trackIDs []string, modelTag string) ([]string, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id
		FROM unnest($1::text[]) AS id
		WHERE id NOT IN (SELECT track_id FROM scores WHERE model_tag = $2)
	`
	rows, err := r.pool.Query(ctx, query, trackIDs, modelTag)
	if err != nil {
		return nil, fmt.Errorf("querying unscored tracks: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning track ID: %w", err)
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

// GetRecentForUser retrieves the latest ensemble score for each track the
// user listened to since the cutoff. Used as clustering input.
func (r *ScoreRepository) GetRecentForUser(ctx context.Context, userID string, since time.Time) ([]sentiment.Record, error) {
	query := `
		SELECT DISTINCT ON (s.track_id) ` + prefixedScoreColumns + `
		FROM scores s
		JOIN listens l ON s.track_id = l.track_id
		WHERE l.user_id = $1 AND l.played_at >= $2 AND s.model_tag = $3
		ORDER BY s.track_id, s.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, since, sentiment.EnsembleTag)
	if err != nil {
		return nil, fmt.Errorf("querying user scores: %w", err)
	}
	defer rows.Close()

	var recs []sentiment.Record
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

const prefixedScoreColumns = `s.id, s.track_id, s.model_tag, s.polarity, s.compound, s.emotions, s.valence, s.arousal, s.confidence, s.created_at`

// DeleteForTrack removes all scores for a track.
func (r *ScoreRepository) DeleteForTrack(ctx context.Context, trackID string) error {
	query := `DELETE FROM scores WHERE track_id = $1`
	_, err := r.pool.Exec(ctx, query, trackID)
	if err != nil {
		return fmt.Errorf("deleting scores: %w", err)
	}
	return nil
}
