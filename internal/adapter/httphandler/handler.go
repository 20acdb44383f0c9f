package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
)

type RouterConfig struct {
	Searcher    port.ProductsSearcher
	Exporter    port.ProductsExporter
	Selection   port.SelectionManager
	Sessions    sessions.Store
	Credentials Credentials
}

// NewRouter returns the API handler. Everything under /v1/ except
// the session endpoints requires a login when credentials are set.
func NewRouter(cfg RouterConfig) http.Handler {
	protected := http.NewServeMux()
	RegisterProducts(protected, cfg.Searcher, cfg.Exporter)
	RegisterSelection(protected, cfg.Selection)

	mux := http.NewServeMux()
	RegisterHealth(mux)
	RegisterSession(mux, cfg.Selection, cfg.Credentials)
	mux.Handle("/v1/", RequireAuth(cfg.Credentials.Enabled())(protected))

	var handler http.Handler = mux
	handler = AllowJSON(handler)
	handler = WithSession(cfg.Sessions)(handler)
	return RequestLogger(handler)
}

func RegisterHealth(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

// writeError maps err to a status code. Server side failures are
// logged with their cause, the client gets a generic message.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidDiscount):
		http.Error(w, domain.ErrInvalidDiscount.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNotLoaded):
		http.Error(w, "catalog is not loaded", http.StatusServiceUnavailable)
		log.Error("request before catalog load", "err", err)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		log.Error("request failed", "err", err)
	}
}
