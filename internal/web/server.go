package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/kmorowski/lyricmood/internal/db"
	syncsvc "github.com/kmorowski/lyricmood/internal/sync"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultRedirectURI must match the Spotify app configuration.
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	DB           *db.DB
	Sync         *syncsvc.Service
	Sessions     SessionManager
	Logger       *slog.Logger
}

// Server is the HTTP server exposing the JSON API.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions SessionManager
	handlers *Handlers
	logger   *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadRecentlyPlayed,
			spotifyauth.ScopeUserReadEmail,
			spotifyauth.ScopeUserReadPrivate,
		),
	)

	sessions := cfg.Sessions
	if sessions == nil {
		if cfg.DB == nil {
			return nil, fmt.Errorf("session store required: set Sessions or DB")
		}
		sessions = NewDBSessionStore(cfg.DB)
	}

	handlers := NewHandlers(auth, sessions, cfg.DB, cfg.Sync, cfg.Logger)

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		sessions: sessions,
		handlers: handlers,
		logger:   cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // sync requests do real work
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlers.Status)
	s.router.Get("/healthz", s.handlers.Health)

	// Auth routes
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/sync", s.handlers.Sync)
		r.Get("/tracks/recent", s.handlers.RecentTracks)
		r.Get("/tracks/{trackID}", s.handlers.TrackDetail)
		r.Get("/moods", s.handlers.Moods)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
