package core

import "errors"

var (
	// ErrBlocked is returned when a guarded operation is refused before any
	// local change was applied.
	ErrBlocked  = errors.New("operation not allowed")
	ErrNotFound = errors.New("entity not found")
	// ErrStale marks results that arrived for a superseded request.
	ErrStale       = errors.New("stale response")
	ErrKeyNotFound = errors.New("key not found")
	ErrEmptyQuery  = errors.New("empty query")
)
