// Package local implements the single-origin fallback backend on top of a
// bbolt database file.
//
// bbolt holds an exclusive lock on the file, so only one process can use a
// local store at a time and there is no change feed: another instance only
// sees updates after it opens the file and reads again.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	bolt "go.etcd.io/bbolt"

	"github.com/aretw0/blinknote/pkg/core"
)

var bucketItems = []byte("blinknote")

// Config holds the configuration for the local store.
type Config struct {
	Path        string
	Logger      *slog.Logger
	LockTimeout time.Duration // how long Open waits for the file lock; default 2s
}

// Store implements core.Backend with a bbolt file.
type Store struct {
	db     *bolt.DB
	config Config

	mu     sync.RWMutex
	writes int
}

// Open opens (creating if needed) the database at config.Path.
func Open(config Config) (*Store, error) {
	path := strings.TrimSpace(config.Path)
	if path == "" {
		return nil, errors.New("local store path is required")
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = 2 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: config.LockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketItems)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	config.Path = path
	config.Logger.Debug("local store opened", "path", path)
	return &Store{db: db, config: config}, nil
}

// Get implements core.Backend.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		if b == nil {
			return nil
		}
		// bbolt values are only valid inside the transaction
		if v := b.Get([]byte(key)); v != nil {
			value = slices.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set implements core.Backend.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketItems)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

// Close releases the database file.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path   string `json:"path"`
	Writes int    `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{Path: s.config.Path, Writes: s.writes}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "local"
}

var (
	_ core.Backend                 = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
