package httphandler

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName        = "refsearch-session"
	sessionKeyID       = "sid"
	sessionKeyLoggedIn = "logged_in"
)

type sessionCtxKey struct{}

type sessionState struct {
	id       string
	loggedIn bool
	session  *sessions.Session
}

// NewSessionStore returns a signed cookie store. The secret is
// hashed into a 32-byte key. Cookies older than maxAge are rejected
// even when the client keeps them.
func NewSessionStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	// Also bounds the signed timestamp, not only the cookie attribute.
	store.MaxAge(int(maxAge.Seconds()))
	return store
}

// SessionID returns the id set by [WithSession] or "".
func SessionID(ctx context.Context) string {
	s, _ := ctx.Value(sessionCtxKey{}).(sessionState)
	return s.id
}

func loggedIn(ctx context.Context) bool {
	s, _ := ctx.Value(sessionCtxKey{}).(sessionState)
	return s.loggedIn
}

// Credentials is the single login accepted by the API. An empty
// Username disables the login.
type Credentials struct {
	Username     string
	PasswordHash string
}

func (c Credentials) Enabled() bool {
	return c.Username != ""
}

func (c Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	if !userOK || err != nil {
		return domain.ErrUnauthorized
	}
	return nil
}

// GET v1/session (200 OK)
// POST v1/session JSON {"username", "password"} (200 OK, 400 Bad request, 401 Unauthorized)
// DELETE v1/session (204 No content)

type SessionHandler struct {
	manager     port.SelectionManager
	credentials Credentials
}

func RegisterSession(
	mux *http.ServeMux, manager port.SelectionManager, credentials Credentials,
) {
	h := SessionHandler{manager, credentials}
	mux.HandleFunc("GET /v1/session", h.GetSession)
	mux.HandleFunc("POST /v1/session", h.PostSession)
	mux.HandleFunc("DELETE /v1/session", h.DeleteSession)
}

func (h SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.GetSession"
	log := slog.With("op", op)

	writeJSON(w, log, http.StatusOK, SessionResponse{
		Authenticated: !h.credentials.Enabled() || loggedIn(r.Context()),
		AuthRequired:  h.credentials.Enabled(),
	})
}

func (h SessionHandler) PostSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostSession"
	log := slog.With("op", op)

	if !h.credentials.Enabled() {
		writeJSON(w, log, http.StatusOK, SessionResponse{Authenticated: true})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.credentials.Verify(req.Username, req.Password); err != nil {
		log.Warn("login rejected", "username", req.Username)
		writeError(w, log, err)
		return
	}

	state, ok := r.Context().Value(sessionCtxKey{}).(sessionState)
	if !ok {
		writeError(w, log, errNoSession)
		return
	}
	// A fresh id on login, so an id issued before it is never authenticated.
	state.session.Values[sessionKeyID] = uuid.NewString()
	state.session.Values[sessionKeyLoggedIn] = true
	if err := state.session.Save(r, w); err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("logged in", "username", req.Username)
	writeJSON(w, log, http.StatusOK, SessionResponse{
		Authenticated: true, AuthRequired: true,
	})
}

// DeleteSession discards the selection and expires the cookie.
func (h SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.DeleteSession"
	log := slog.With("op", op)

	state, ok := r.Context().Value(sessionCtxKey{}).(sessionState)
	if !ok {
		writeError(w, log, errNoSession)
		return
	}

	if err := h.manager.EndSession(r.Context(), state.id); err != nil {
		writeError(w, log, err)
		return
	}

	state.session.Options.MaxAge = -1
	if err := state.session.Save(r, w); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
