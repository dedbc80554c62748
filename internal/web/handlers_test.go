package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// stubSessions is an in-memory SessionManager for handler tests.
type stubSessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[string]*Session)}
}

func (s *stubSessions) Create(_ context.Context, token *oauth2.Token, userID, userName string) (*Session, error) {
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
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	return session, nil
}

func (s *stubSessions) Get(_ context.Context, id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || session.Expired(time.Now()) {
		return nil
	}
	return session
}

func (s *stubSessions) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *stubSessions) UpdateToken(_ context.Context, id string, token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		session.Token = token
	}
}

func (s *stubSessions) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.Get(r.Context(), cookie.Value)
}

func (s *stubSessions) SetCookie(w http.ResponseWriter, session *Session) { setCookie(w, session) }
func (s *stubSessions) ClearCookie(w http.ResponseWriter)                 { clearCookie(w) }

var _ SessionManager = (*stubSessions)(nil)

func newTestHandlers(sessions SessionManager) *Handlers {
	auth := spotifyauth.New(
		spotifyauth.WithClientID("test-client"),
		spotifyauth.WithClientSecret("test-secret"),
		spotifyauth.WithRedirectURL("http://127.0.0.1:8080/callback"),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandlers(auth, sessions, nil, nil, logger)
}

func TestStatusUnauthenticated(t *testing.T) {
	h := newTestHandlers(newStubSessions())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Authenticated {
		t.Error("expected authenticated=false without a session")
	}
}

func TestLoginRedirectsToSpotify(t *testing.T) {
	h := newTestHandlers(newStubSessions())

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	loc := rec.Header().Get("Location")
	if loc == "" {
		t.Fatal("missing redirect location")
	}

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Error("expected oauth_state cookie to be set")
	}
}

func TestCallbackStateMismatch(t *testing.T) {
	h := newTestHandlers(newStubSessions())

	req := httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "right"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	h := newTestHandlers(newStubSessions())

	handlers := map[string]http.HandlerFunc{
		"sync":   h.Sync,
		"recent": h.RecentTracks,
		"moods":  h.Moods,
	}

	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			rec := httptest.NewRecorder()
			fn(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestLogoutClearsSession(t *testing.T) {
	store := newStubSessions()
	h := newTestHandlers(store)

	session, err := store.Create(context.Background(), &oauth2.Token{AccessToken: "tok"}, "user1", "User One")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if store.Get(context.Background(), session.ID) != nil {
		t.Error("session should be deleted after logout")
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	store := newStubSessions()
	h := newTestHandlers(store)

	session, err := store.Create(context.Background(), &oauth2.Token{AccessToken: "tok"}, "u", "U")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	// Age the session past its lifetime.
	store.mu.Lock()
	store.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Second)
	store.mu.Unlock()

	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	h.Sync(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d for lapsed session", rec.Code, http.StatusUnauthorized)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	live := Session{ExpiresAt: now.Add(time.Hour)}
	lapsed := Session{ExpiresAt: now.Add(-time.Hour)}
	boundary := Session{ExpiresAt: now}

	if live.Expired(now) {
		t.Error("session before its deadline reported expired")
	}
	if !lapsed.Expired(now) {
		t.Error("session past its deadline reported live")
	}
	if !boundary.Expired(now) {
		t.Error("session at its deadline should be expired")
	}
}
