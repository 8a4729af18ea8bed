package core

import "errors"

// Common errors.
var (
	// ErrCorruptState is returned when the stored payload is not a JSON array.
	// The collection is then read as empty; nothing is repaired automatically.
	ErrCorruptState = errors.New("stored collection is corrupt")
	// ErrInvalidImport is returned when an import payload has no usable notes array.
	ErrInvalidImport = errors.New("invalid import payload")
	// ErrWriteFailure wraps any error from the backend while persisting the collection.
	ErrWriteFailure = errors.New("failed to write collection")
	// ErrEmptyContent is returned when a note would be created without content.
	ErrEmptyContent = errors.New("note content is empty")
	// ErrNotImage is returned when attached data is not an image.
	ErrNotImage = errors.New("attachment is not an image")
	// ErrNotObservable is returned when the active backend has no change feed.
	ErrNotObservable = errors.New("backend does not support change observation")
	// ErrBusy is returned by a Session while another action is still pending.
	ErrBusy = errors.New("another action is pending")
	// ErrClosed is returned by a Session after Close.
	ErrClosed = errors.New("session is closed")
)
