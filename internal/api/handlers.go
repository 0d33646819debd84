package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okvist/miniref/internal/apperr"
	"github.com/okvist/miniref/internal/checksum"
	"github.com/okvist/miniref/internal/notestore"
)

// Handler holds API route handlers.
type Handler struct {
	store *notestore.Store
}

// NewHandler creates a new Handler over the note store.
func NewHandler(store *notestore.Store) *Handler {
	return &Handler{store: store}
}

// ListNotes handles GET /notes. Unreadable or malformed notes are already
// excluded by the store; only a directory-level failure becomes an error.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": notes,
		"total": len(notes),
	})
}

// GetNote handles GET /notes/{id}. The ETag is the digest of the rendered
// content; a matching If-None-Match short-circuits to 304.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}

	note, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	etag := `"` + checksum.SumString(note.Content) + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// etagMatches reports whether any entity tag in an If-None-Match header
// value matches etag. Per RFC 9110 §8.8.3 the header is a comma-separated
// list, W/ prefixes compare weakly, and * matches any representation.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// ClearCache handles DELETE /cache.
func (h *Handler) ClearCache(w http.ResponseWriter, _ *http.Request) {
	h.store.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

// InvalidateCache handles DELETE /cache/{id}.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	h.store.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}
