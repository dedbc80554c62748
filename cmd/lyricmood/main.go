// Command lyricmood runs the lyric mood scoring web service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kmorowski/lyricmood/internal/batch"
	"github.com/kmorowski/lyricmood/internal/db"
	"github.com/kmorowski/lyricmood/internal/genius"
	"github.com/kmorowski/lyricmood/internal/langid"
	"github.com/kmorowski/lyricmood/internal/logging"
	"github.com/kmorowski/lyricmood/internal/sentiment"
	syncsvc "github.com/kmorowski/lyricmood/internal/sync"
	"github.com/kmorowski/lyricmood/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := logging.FromEnv()
	slog.SetDefault(logger)

	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("please set SPOTIFY_ID and SPOTIFY_SECRET environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("please set the DATABASE_URL environment variable")
	}

	ctx := context.Background()

	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	ensemble, err := sentiment.Load(ctx, sentiment.LoadConfig(), logger)
	if err != nil {
		return fmt.Errorf("loading sentiment ensemble: %w", err)
	}

	fetcher := genius.FromEnv(logger)
	coordinator := batch.New(fetcher, langid.New(), batch.WithLogger(logger))

	syncService := syncsvc.New(database, coordinator, ensemble,
		syncsvc.WithMode(scoreMode()),
		syncsvc.WithLogger(logger),
	)

	go cleanupSessions(ctx, database, logger)

	server, err := web.NewServer(web.ServerConfig{
		Addr:         envOr("ADDR", web.DefaultAddr),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  envOr("REDIRECT_URI", web.DefaultRedirectURI),
		DB:           database,
		Sync:         syncService,
		Sessions:     web.NewDBSessionStore(database),
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// scoreMode reads SCORE_MODE; anything other than "fast" means the full
// ensemble.
func scoreMode() sentiment.Mode {
	if strings.EqualFold(os.Getenv("SCORE_MODE"), "fast") {
		return sentiment.ModeFast
	}
	return sentiment.ModeComprehensive
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// cleanupSessions deletes expired sessions on an hourly cadence.
func cleanupSessions(ctx context.Context, database *db.DB, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := database.Sessions().DeleteExpired(ctx)
			if err != nil {
				logger.Warn("deleting expired sessions failed", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
		}
	}
}
