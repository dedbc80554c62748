package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, display_name, email, created_at, updated_at, last_sync_at`

// UserRepository handles user database operations. A user row anchors
// listens and carries the sync cursor for the lyric pipeline; profile
// fields are refreshed from Spotify on every login.
type UserRepository struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.DisplayName,
		&u.Email,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastSyncAt,
	)
	return u, err
}

// Upsert creates or refreshes a user from their Spotify profile. The
// sync cursor survives profile refreshes and is read back so the login
// path sees the user's sync state without a second query.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING created_at, updated_at, last_sync_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.LastSyncAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// Get retrieves a user by Spotify ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// MarkSynced advances the user's sync cursor after a completed listen
// sync. The cursor gates how often the pipeline runs for this user.
func (r *UserRepository) MarkSynced(ctx context.Context, id string, syncedAt time.Time) error {
	query := `
		UPDATE users
		SET last_sync_at = $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, syncedAt)
	if err != nil {
		return fmt.Errorf("marking user synced: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
