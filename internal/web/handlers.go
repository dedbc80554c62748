package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/kmorowski/lyricmood/internal/db"
	"github.com/kmorowski/lyricmood/internal/moodcluster"
	"github.com/kmorowski/lyricmood/internal/sentiment"
	"github.com/kmorowski/lyricmood/internal/spotify"
	syncsvc "github.com/kmorowski/lyricmood/internal/sync"
)

const defaultRecentLimit = 50

// Handlers contains the HTTP handlers for the JSON API.
type Handlers struct {
	auth     *spotifyauth.Authenticator
	sessions SessionManager
	db       *db.DB
	sync     *syncsvc.Service
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(auth *spotifyauth.Authenticator, sessions SessionManager, database *db.DB, sync *syncsvc.Service, logger *slog.Logger) *Handlers {
	return &Handlers{
		auth:     auth,
		sessions: sessions,
		db:       database,
		sync:     sync,
		logger:   logger,
	}
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports the caller's authentication state (GET /).
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)

	resp := statusResponse{Authenticated: session != nil}
	if session != nil {
		resp.User = &userInfo{ID: session.UserID, Name: session.UserName}
		if lastSync, err := h.sync.GetLastSyncTime(r.Context(), session.UserID); err == nil {
			resp.LastSyncAt = lastSync
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := generateOAuthState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback). On
// success the user row is upserted and a session cookie issued.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing state cookie")
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		respondError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("spotify auth error: %s", errMsg))
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to exchange token")
		return
	}

	client := spotify.New(spotifyapi.New(h.auth.Client(r.Context(), token)))
	profile, err := client.CurrentProfile(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get user info")
		return
	}

	user := &db.User{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
	}
	if err := h.db.Users().Upsert(r.Context(), user); err != nil {
		h.logger.Error("upserting user failed", "user", profile.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store user")
		return
	}

	session, err := h.sessions.Create(r.Context(), token, profile.ID, profile.DisplayName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessions.SetCookie(w, session)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.sessions.ClearCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Sync runs the listen ingestion pipeline for the caller (POST /api/sync).
// ?force=true bypasses the cooldown.
func (h *Handlers) Sync(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	force := r.URL.Query().Get("force") == "true"
	client := spotify.New(spotifyapi.New(h.auth.Client(r.Context(), session.Token)))

	result, err := h.sync.SyncRecentListens(r.Context(), client, session.UserID, force)
	if errors.Is(err, syncsvc.ErrSyncTooRecent) {
		respondError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("sync failed", "user", session.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// RecentTracks lists the caller's recent listens with lyric state and
// mood scores (GET /api/tracks/recent?limit=N).
func (h *Handlers) RecentTracks(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	listens, tracks, err := h.db.Tracks().GetRecentListens(r.Context(), session.UserID, limit)
	if err != nil {
		h.logger.Error("loading recent listens failed", "user", session.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load recent tracks")
		return
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	lyricsByID, err := h.db.Lyrics().GetForTracks(r.Context(), ids)
	if err != nil {
		h.logger.Error("loading lyrics failed", "user", session.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load lyrics")
		return
	}
	scoresByID, err := h.db.Scores().GetLatestForTracks(r.Context(), ids, sentiment.EnsembleTag)
	if err != nil {
		h.logger.Error("loading scores failed", "user", session.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load scores")
		return
	}

	items := make([]trackResponse, len(tracks))
	for i, t := range tracks {
		item := newTrackResponse(t, listens[i].PlayedAt)
		if lyric, ok := lyricsByID[t.ID]; ok {
			item.Lyric = newLyricInfo(lyric, false)
		}
		if score, ok := scoresByID[t.ID]; ok {
			item.Score = newScoreInfo(score)
		}
		items[i] = item
	}

	respondJSON(w, http.StatusOK, recentTracksResponse{Tracks: items})
}

// TrackDetail returns one track with its stored lyric text and latest
// score (GET /api/tracks/{trackID}).
func (h *Handlers) TrackDetail(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	trackID := chi.URLParam(r, "trackID")
	track, err := h.db.Tracks().Get(r.Context(), trackID)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "track not found")
		return
	}
	if err != nil {
		h.logger.Error("loading track failed", "track", trackID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load track")
		return
	}

	resp := newTrackResponse(*track, time.Time{})

	lyric, err := h.db.Lyrics().GetForTrack(r.Context(), trackID)
	if err == nil {
		resp.Lyric = newLyricInfo(*lyric, true)
	} else if !errors.Is(err, db.ErrNotFound) {
		h.logger.Error("loading lyric failed", "track", trackID, "error", err)
	}

	score, err := h.db.Scores().GetLatestForTrack(r.Context(), trackID, sentiment.EnsembleTag)
	if err == nil {
		resp.Score = newScoreInfo(*score)
	} else if !errors.Is(err, db.ErrNotFound) {
		h.logger.Error("loading score failed", "track", trackID, "error", err)
	}

	respondJSON(w, http.StatusOK, resp)
}

// Moods groups the caller's recent listens by mood
// (GET /api/moods?window_hours=N&clusters=K).
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	var window time.Duration
	if v := r.URL.Query().Get("window_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid window_hours")
			return
		}
		window = time.Duration(n) * time.Hour
	}

	cfg := moodcluster.DefaultConfig()
	if v := r.URL.Query().Get("clusters"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid clusters")
			return
		}
		cfg.NumClusters = n
	}

	result, err := h.sync.Moods(r.Context(), session.UserID, window, cfg)
	if err != nil {
		h.logger.Error("mood grouping failed", "user", session.UserID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to group moods")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// requireSession resolves the request session, writing a 401 and
// returning nil when there is none.
func (h *Handlers) requireSession(w http.ResponseWriter, r *http.Request) *Session {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return session
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
