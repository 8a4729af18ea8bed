package blinknote

import (
	"log/slog"
	"time"

	"github.com/aretw0/blinknote/internal/platform"
	"github.com/aretw0/blinknote/pkg/core"
)

// --- Types ---

// Note is a public alias for the persisted note record.
type Note = core.Note

// Service is a public alias for the collection mutator.
type Service = core.Service

// Session is a public alias for an open instance kept in sync with its backend.
type Session = core.Session

// --- Configuration ---

// Option defines a functional option for configuring BlinkNote.
type Option = platform.Option

// Adapter names accepted by WithAdapter.
const (
	AdapterAuto   = platform.AdapterAuto
	AdapterShared = platform.AdapterShared
	AdapterLocal  = platform.AdapterLocal
	AdapterMemory = platform.AdapterMemory
)

// WithLogger sets the logger for the service and its backend.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend allows injecting a custom storage backend.
func WithBackend(b core.Backend) Option {
	return platform.WithBackend(b)
}

// WithAdapter forces a backend by name instead of probing.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithKey sets the storage key holding the collection.
func WithKey(key string) Option {
	return platform.WithKey(key)
}

// WithSharedDir sets the directory of the shared (observable) backend.
func WithSharedDir(dir string) Option {
	return platform.WithSharedDir(dir)
}

// WithLocalPath sets the database file of the local fallback backend.
func WithLocalPath(path string) Option {
	return platform.WithLocalPath(path)
}

// WithDebounce sets how long the shared backend coalesces change events.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithWatcherErrorHandler registers a callback for runtime watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator replaces the note id generator.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// --- Factory ---

// New creates a new BlinkNote Service.
func New(opts ...Option) (*core.Service, error) {
	return platform.New(opts...)
}

// NewSession creates a Service wrapped in a Session.
func NewSession(opts ...Option) (*core.Session, error) {
	return platform.NewSession(opts...)
}

// --- Utils ---

// ProbeShared reports whether dir can host the shared backend.
func ProbeShared(dir string) error {
	return platform.ProbeShared(dir)
}

// DefaultLocalPath returns the default database file of the local backend.
func DefaultLocalPath() (string, error) {
	return platform.DefaultLocalPath()
}
