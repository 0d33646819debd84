package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okvist/miniref/internal/notestore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *notestore.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)
	ah := NewAssetHandler(store.Root())

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes (read-only).
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Get("/notes/{id}/assets/{filename}", ah.ServeFile)

	// Cache administration.
	r.Delete("/cache", h.ClearCache)
	r.Delete("/cache/{id}", h.InvalidateCache)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
