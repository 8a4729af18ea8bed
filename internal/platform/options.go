package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/blinknote/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterAuto   = "auto"
	AdapterShared = "shared"
	AdapterLocal  = "local"
	AdapterMemory = "memory"
)

// options holds the internal configuration for a BlinkNote instance.
type options struct {
	backend      core.Backend
	logger       *slog.Logger
	adapter      string
	key          string
	sharedDir    string
	localPath    string
	debounce     time.Duration
	errorHandler func(error)
	clock        func() time.Time
	idGenerator  func() string
}

// Option defines a functional option for configuring BlinkNote.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterAuto,
		key:     core.DefaultKey,
	}
}

// WithLogger sets the logger for the service and its backend.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend injects a storage backend (e.g. mock, memory).
// If provided, the capability probe is skipped.
func WithBackend(b core.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithAdapter forces a backend by name instead of probing ("auto").
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithKey sets the storage key holding the collection.
// Defaults to "blinknote-items".
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithSharedDir sets the directory of the shared (observable) backend.
// When it is writable, the probe selects the shared backend.
func WithSharedDir(dir string) Option {
	return func(o *options) {
		o.sharedDir = dir
	}
}

// WithLocalPath sets the database file of the local fallback backend.
// Defaults to <user config dir>/blinknote/local.db.
func WithLocalPath(path string) Option {
	return func(o *options) {
		o.localPath = path
	}
}

// WithDebounce sets how long the shared backend coalesces change events.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler registers a callback for runtime errors of the
// shared backend's watcher (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithClock replaces the time source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithIDGenerator replaces the note id generator (useful for testing).
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.idGenerator = fn
	}
}
