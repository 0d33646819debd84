// Package assets discovers file attachments stored next to a note.
//
// For a note at /root/42.md, attachments live in /root/42.assets/ and are
// enumerated non-recursively. A missing directory means the note simply has
// no attachments.
package assets

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/okvist/miniref/internal/models"
)

const fallbackMimeType = "application/octet-stream"

// Dir returns the attachment directory path for the given note file.
func Dir(notePath string) string {
	ext := filepath.Ext(notePath)
	return strings.TrimSuffix(notePath, ext) + ".assets"
}

// Scan returns the attachments associated with the note at notePath.
// Absence of the asset directory is not an error; entries that cannot be
// described are skipped so one bad entry never hides the rest.
func Scan(notePath string) []models.Asset {
	dir := Dir(notePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []models.Asset
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if name == "" {
			continue
		}
		out = append(out, models.Asset{
			Path:     filepath.Join(dir, name),
			Name:     name,
			MimeType: TypeByName(name),
		})
	}
	return out
}

// TypeByName guesses a MIME type from the file extension. Unknown extensions
// degrade to application/octet-stream rather than failing.
func TypeByName(name string) string {
	mt := mime.TypeByExtension(filepath.Ext(name))
	if mt == "" {
		return fallbackMimeType
	}
	// Strip parameters such as "; charset=utf-8".
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}
