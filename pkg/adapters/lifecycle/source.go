// Package lifecycle exposes a backend change feed as a lifecycle.Source so a
// supervised application can route collection changes like any other event.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/blinknote/pkg/core"
)

type changeSource struct {
	changes <-chan core.Change
	key     string
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source emitting the changes of key.
// An empty key forwards every change.
func NewSource(changes <-chan core.Change, key string) lifecycle.Source {
	return &changeSource{
		changes: changes,
		key:     key,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards changes until ctx is done or the feed closes, then closes Events.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-s.changes:
				if !ok {
					return nil
				}
				if s.key != "" && c.Key != s.key {
					continue
				}
				select {
				case s.out <- c:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
