// Package memory provides an in-process, observable key-value backend.
//
// Several services sharing one Store behave like several open instances of
// the extension sharing its storage area: every Set is broadcast to every
// watcher, the writer included.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/blinknote/pkg/core"
)

// DefaultBuffer is the per-watcher channel capacity.
const DefaultBuffer = 64

// Store is an in-memory core.Backend implementing core.Observable.
type Store struct {
	mu       sync.RWMutex
	values   map[string][]byte
	watchers map[int]chan core.Change
	nextID   int
	buffer   int
	failWith error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		values:   make(map[string][]byte),
		watchers: make(map[int]chan core.Change),
		buffer:   DefaultBuffer,
	}
}

// Get implements core.Backend.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

// Set implements core.Backend. Watchers are notified in write order.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.values[key] = slices.Clone(value)

	for _, ch := range s.watchers {
		select {
		case ch <- core.Change{Key: key, Value: slices.Clone(value)}:
		default:
			// slow watcher: every change carries the whole collection, the next one supersedes this
		}
	}
	return nil
}

// FailWrites makes every following Set fail with err (nil restores writes).
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Watch implements core.Observable.
func (s *Store) Watch(ctx context.Context) (<-chan core.Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan core.Change, s.buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Keys     int `json:"keys"`
	Watchers int `json:"watchers"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{Keys: len(s.values), Watchers: len(s.watchers)}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

var (
	_ core.Backend                 = (*Store)(nil)
	_ core.Observable              = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
