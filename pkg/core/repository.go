package core

import (
	"context"
	"fmt"
)

// Backend defines the contract of a key-value storage substrate.
// The collection is stored as one opaque blob under one key; the backend knows
// nothing about notes.
type Backend interface {
	// Get returns the value stored under key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Observable is implemented by backends whose writes can be observed by other
// instances (including the writer itself).
type Observable interface {
	// Watch streams changes until ctx is done. The channel is closed on shutdown.
	Watch(ctx context.Context) (<-chan Change, error)
}

// Change is a storage mutation reported by an Observable backend.
type Change struct {
	Key   string
	Value []byte
}

// String implements fmt.Stringer.
func (c Change) String() string {
	return fmt.Sprintf("change %s (%d bytes)", c.Key, len(c.Value))
}
