// Package web provides the HTTP server and JSON API for the lyric mood
// service.
package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/kmorowski/lyricmood/internal/db"
)

const (
	sessionCookieName = "lyricmood_session"
	sessionTTL        = 24 * time.Hour
)

// Session is an authenticated user session as the handlers see it: the
// OAuth token for Spotify calls plus enough profile to render status.
type Session struct {
	ID        string
	Token     *oauth2.Token
	UserID    string
	UserName  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session lifetime has lapsed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionManager is the session surface the handlers depend on. The
// production implementation is the PostgreSQL-backed store below;
// handler tests substitute an in-memory one.
type SessionManager interface {
	Create(ctx context.Context, token *oauth2.Token, userID, userName string) (*Session, error)
	Get(ctx context.Context, id string) *Session
	Delete(ctx context.Context, id string)
	UpdateToken(ctx context.Context, id string, token *oauth2.Token)
	GetFromRequest(r *http.Request) *Session
	SetCookie(w http.ResponseWriter, session *Session)
	ClearCookie(w http.ResponseWriter)
}

// DBSessionStore keeps sessions in PostgreSQL so logins survive server
// restarts. OAuth credentials live on the session row; the display name
// is joined in from the user row on read.
type DBSessionStore struct {
	database *db.DB
}

// NewDBSessionStore creates a database-backed session store.
func NewDBSessionStore(database *db.DB) *DBSessionStore {
	return &DBSessionStore{database: database}
}

// Create issues a fresh session for a logged-in user and persists it.
func (s *DBSessionStore) Create(ctx context.Context, token *oauth2.Token, userID, userName string) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:        id,
		Token:     token,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}

	row := &db.Session{
		ID:           id,
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		CreatedAt:    session.CreatedAt,
		ExpiresAt:    session.ExpiresAt,
	}
	if err := s.database.Sessions().Create(ctx, row); err != nil {
		return nil, err
	}

	return session, nil
}

// Get loads a live session by ID, or nil when it is unknown or lapsed.
func (s *DBSessionStore) Get(ctx context.Context, id string) *Session {
	row, err := s.database.Sessions().Get(ctx, id)
	if err != nil {
		return nil
	}

	user, err := s.database.Users().Get(ctx, row.UserID)
	if err != nil {
		return nil
	}

	return &Session{
		ID: row.ID,
		Token: &oauth2.Token{
			AccessToken:  row.AccessToken,
			RefreshToken: row.RefreshToken,
			Expiry:       row.TokenExpiry,
			TokenType:    "Bearer",
		},
		UserID:    row.UserID,
		UserName:  user.DisplayName,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
}

// Delete removes a session (logout). Best effort; a failed delete only
// means the janitor reclaims the row later.
func (s *DBSessionStore) Delete(ctx context.Context, id string) {
	_ = s.database.Sessions().Delete(ctx, id)
}

// UpdateToken stores a refreshed OAuth token on the session.
func (s *DBSessionStore) UpdateToken(ctx context.Context, id string, token *oauth2.Token) {
	_ = s.database.Sessions().UpdateToken(ctx, id, token.AccessToken, token.RefreshToken, token.Expiry)
}

// GetFromRequest resolves the session named by the request cookie.
func (s *DBSessionStore) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.Get(r.Context(), cookie.Value)
}

// SetCookie sets the session cookie on the response.
func (s *DBSessionStore) SetCookie(w http.ResponseWriter, session *Session) {
	setCookie(w, session)
}

// ClearCookie removes the session cookie from the response.
func (s *DBSessionStore) ClearCookie(w http.ResponseWriter) {
	clearCookie(w)
}

var _ SessionManager = (*DBSessionStore)(nil)

// generateSessionID creates a cryptographically random session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// setCookie sets the session cookie, expiring alongside the session
// itself. SameSite stays Lax so the cookie rides the top-level redirect
// back from the Spotify consent page.
func setCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
	})
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
