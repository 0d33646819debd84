// Package notestore serves fully rendered notes from a directory of Markdown
// files, caching renders keyed by source modification time.
package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/okvist/miniref/internal/apperr"
	"github.com/okvist/miniref/internal/models"
	"github.com/okvist/miniref/internal/render"
)

const noteExt = ".md"

// Store owns the notes root directory, the render cache, and the immutable
// highlight resources. Safe for concurrent use.
type Store struct {
	root     string
	renderer *render.Renderer
	cache    *cache

	// readFile is swappable so tests can count disk reads.
	readFile func(string) ([]byte, error)
}

// Option configures a Store.
type Option func(*Store)

// WithTheme selects the syntax highlighting theme.
func WithTheme(theme string) Option {
	return func(s *Store) {
		s.renderer = render.New(theme)
	}
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("notestore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("notestore: create root: %w", err)
	}

	s := &Store{
		root:     abs,
		renderer: render.New(render.DefaultTheme),
		cache:    newCache(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute notes root directory.
func (s *Store) Root() string {
	return s.root
}

// notePath maps an id to its backing file. Ids carrying path separators or
// traversal segments never resolve.
func (s *Store) notePath(id string) (string, bool) {
	if id == "" || id != filepath.Base(id) || strings.Contains(id, "..") {
		return "", false
	}
	return filepath.Join(s.root, id+noteExt), true
}

// List returns every renderable note in the root directory. Files that fail
// to read or parse are dropped from the result rather than failing the whole
// listing. The result is not a consistent snapshot under concurrent edits.
func (s *Store) List(_ context.Context) ([]models.Note, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("notestore: list: %w", err)
	}

	notes := make([]models.Note, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), noteExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), noteExt)
		path := filepath.Join(s.root, entry.Name())

		if e, ok := s.cache.get(id); ok && e.valid(path) {
			notes = append(notes, e.note)
			continue
		}

		note, err := s.renderAndCache(id, path)
		if err != nil {
			slog.Warn("skipping note", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		notes = append(notes, *note)
	}
	return notes, nil
}

// Get returns the rendered note with the given id. A missing backing file
// and an unparseable one both report apperr.ErrNotFound; a file that exists
// but cannot be read surfaces as an I/O error.
func (s *Store) Get(_ context.Context, id string) (*models.Note, error) {
	path, ok := s.notePath(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("notestore: stat %s: %w", id, err)
	}

	if e, ok := s.cache.get(id); ok && e.valid(path) {
		note := e.note
		return &note, nil
	}

	note, err := s.renderAndCache(id, path)
	if err != nil {
		if _, ok := err.(*readError); ok {
			return nil, err
		}
		slog.Warn("render failed", slog.String("id", id), slog.String("error", err.Error()))
		return nil, apperr.ErrNotFound
	}
	return note, nil
}

// Invalidate drops the cached render for id, if any.
func (s *Store) Invalidate(id string) {
	s.cache.remove(id)
}

// ClearCache drops every cached render.
func (s *Store) ClearCache() {
	s.cache.clear()
}

// readError marks failures of the raw file read, which must not be folded
// into not-found.
type readError struct{ err error }

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

// renderAndCache reads and renders the file at path, then stores the result
// stamped with the file's modification time. The cache lock is never held
// across the read or the render; racing renders of the same id may overwrite
// each other, which is harmless (last write wins).
func (s *Store) renderAndCache(id, path string) (*models.Note, error) {
	raw, err := s.readFile(path)
	if err != nil {
		return nil, &readError{fmt.Errorf("notestore: read %s: %w", id, err)}
	}
	note, err := s.renderer.Render(raw, path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil {
		s.cache.put(id, cacheEntry{note: *note, modified: info.ModTime()})
	}
	return note, nil
}
