package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

var errNoSession = errors.New("request has no session")

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// WithSession loads the session cookie and issues a new session id
// when the request has none. An undecodable cookie is replaced.
func WithSession(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hf := func(w http.ResponseWriter, r *http.Request) {
			const op = "WithSession"
			log := slog.With("op", op)

			s, err := store.Get(r, sessionName)
			if err != nil {
				log.Debug("discarding session cookie", "err", err)
			}
			if s == nil {
				s = sessions.NewSession(store, sessionName)
			}

			id, _ := s.Values[sessionKeyID].(string)
			if id == "" {
				id = uuid.NewString()
				s.Values[sessionKeyID] = id
				delete(s.Values, sessionKeyLoggedIn)
				if err := s.Save(r, w); err != nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					log.Error("failed to save session", "err", err)
					return
				}
			}

			logged, _ := s.Values[sessionKeyLoggedIn].(bool)
			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionState{
				id: id, loggedIn: logged, session: s,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hf)
	}
}

// RequireAuth rejects requests of sessions that did not log in.
func RequireAuth(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		hf := func(w http.ResponseWriter, r *http.Request) {
			if !loggedIn(r.Context()) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hf)
	}
}

// RequestLogger logs every request at debug level.
func RequestLogger(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Debug(
			"http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	}
	return http.HandlerFunc(hf)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
