// Package server is the definition service the reader queries:
// GET /define?word=&context= answers with an HTML fragment.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Definer produces a definition of word as used in passage. The answer may
// be Markdown.
type Definer interface {
	Define(ctx context.Context, word, passage string) (string, error)
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Definer Definer
	Logger  *slog.Logger
}

// NewRouter creates the service router.
func NewRouter(deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/define", NewDefineHandler(deps.Definer))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
