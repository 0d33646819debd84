// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

// ErrNotFound is returned when a note has no backing file, or when its
// backing file cannot be parsed into a note.
var ErrNotFound = errors.New("not found")
