// Package models defines the domain types for MiniRef.
package models

// Note is a fully rendered note as served to clients. Content is the HTML
// produced by the rendering pipeline; callers never see a raw half-state.
type Note struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	References []string `json:"references"`
	Assets     []Asset  `json:"assets"`
}

// Asset is a file attachment discovered next to a note.
type Asset struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// NoteMetadata is a lightweight projection of Note omitting content and
// assets, for callers that only need the descriptive fields.
type NoteMetadata struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	References []string `json:"references"`
}

// Metadata returns the metadata projection of the note.
func (n *Note) Metadata() NoteMetadata {
	return NoteMetadata{
		ID:         n.ID,
		Title:      n.Title,
		Tags:       n.Tags,
		References: n.References,
	}
}
