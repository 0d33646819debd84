package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okvist/miniref/internal/assets"
)

// AssetHandler serves files from a note's asset directory.
type AssetHandler struct {
	notesRoot string
}

// NewAssetHandler creates a handler rooted at the notes directory.
func NewAssetHandler(notesRoot string) *AssetHandler {
	return &AssetHandler{notesRoot: notesRoot}
}

// safePath validates id and filename as plain names (no separators, no
// traversal) and resolves the asset's absolute path.
func (h *AssetHandler) safePath(id, filename string) (string, error) {
	for _, part := range []string{id, filename} {
		if part == "" {
			return "", fmt.Errorf("id and filename are required")
		}
		cleaned := filepath.Clean(part)
		if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
			return "", fmt.Errorf("invalid name: %s", part)
		}
	}
	assetDir := assets.Dir(filepath.Join(h.notesRoot, id+".md"))
	abs := filepath.Join(assetDir, filename)
	if !strings.HasPrefix(abs, assetDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes asset directory")
	}
	return abs, nil
}

// ServeFile handles GET /notes/{id}/assets/{filename}.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filename := chi.URLParam(r, "filename")

	abs, err := h.safePath(id, filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.Header().Set("Content-Type", assets.TypeByName(filename))
	http.ServeFile(w, r, abs)
}
