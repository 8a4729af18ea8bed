// Package shared implements the observable backend: every key is a JSON file
// in a directory that any number of instances (processes) may open at once.
// Writes are atomic renames and are reported to every watcher through fsnotify,
// the writer included.
package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/blinknote/pkg/core"
)

const fileExt = ".json"

// ErrInvalidKey is returned for keys that do not name a file inside the directory.
var ErrInvalidKey = errors.New("invalid key")

// Config holds the configuration for the shared store.
type Config struct {
	Dir          string
	Logger       *slog.Logger
	Debounce     time.Duration // coalescing window for change events; default 50ms
	ErrorHandler func(error)   // receives watcher runtime errors
}

// Store implements core.Backend and core.Observable over a directory.
type Store struct {
	config Config

	mu        sync.RWMutex
	watchers  int
	writes    int
	lastEvent *time.Time
}

// New creates a store rooted at config.Dir, creating the directory if needed.
func New(config Config) (*Store, error) {
	dir := strings.TrimSpace(config.Dir)
	if dir == "" {
		return nil, errors.New("shared store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create shared directory: %w", err)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	config.Dir = dir
	return &Store{config: config}, nil
}

// Dir returns the directory holding the key files.
func (s *Store) Dir() string {
	return s.config.Dir
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, "/\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.config.Dir, key+fileExt), nil
}

// keyOf maps a file name back to its key. Temp files and other files are rejected.
func (s *Store) keyOf(name string) (string, bool) {
	if isTempName(name) || filepath.Dir(name) != filepath.Clean(s.config.Dir) {
		return "", false
	}
	base := filepath.Base(name)
	if !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

// Get implements core.Backend.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set implements core.Backend.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := replaceFile(path, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

// Watch implements core.Observable. Changes are delivered until ctx is done,
// then the channel is closed.
func (s *Store) Watch(ctx context.Context) (<-chan core.Change, error) {
	events := make(chan core.Change, 16)
	w := newWatchWorker(s, events)
	if err := w.start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) setWatching(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers += delta
}

func (s *Store) recordEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastEvent = &now
}

func (s *Store) handleError(err error) {
	s.config.Logger.Error("shared store watcher error", "dir", s.config.Dir, "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Dir       string     `json:"dir"`
	Watchers  int        `json:"watchers"`
	Writes    int        `json:"writes"`
	LastEvent *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Dir:       s.config.Dir,
		Watchers:  s.watchers,
		Writes:    s.writes,
		LastEvent: s.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "shared"
}

var (
	_ core.Backend                 = (*Store)(nil)
	_ core.Observable              = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
