package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/aretw0/lifecycle"
)

// Session is one open instance of the note list: it holds the notes in memory,
// runs user actions through the Service and keeps itself current with changes
// written by other instances of the same store.
//
// Own writes are recognized by the digests of the payloads they wrote, so the
// change feed never makes a session reload what it just persisted.
type Session struct {
	svc    *Service
	logger *slog.Logger

	mu          sync.RWMutex
	notes       []Note
	current     Digest   // payload the in-memory notes correspond to
	pending     []Digest // own writes whose change has not been seen yet, oldest first
	generation  uint64   // bumped whenever the notes are replaced from storage
	closed      bool
	cancel      context.CancelFunc
	subscribers map[int]func([]Note)
	nextSub     int
	applied     int
	ignored     int

	busy atomic.Bool
}

// maxPending bounds the own-write digests kept while their changes are in transit.
const maxPending = 32

// NewSession creates a session over svc. Call Load to populate it.
func NewSession(svc *Service, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		svc:         svc,
		logger:      logger,
		notes:       []Note{},
		subscribers: make(map[int]func([]Note)),
	}
}

// Service returns the service the session writes through.
func (s *Session) Service() *Service {
	return s.svc
}

// Load reads the collection and replaces the in-memory notes.
func (s *Session) Load(ctx context.Context) ([]Note, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return s.reload(ctx)
}

// Notes returns a copy of the in-memory notes in canonical order.
func (s *Session) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Action is a user action expressed against the Service.
type Action func(ctx context.Context, svc *Service) ([]Note, error)

// Do runs an action and, once its write has succeeded, adopts the result as
// the in-memory state. Overlapping actions are rejected with ErrBusy.
// When storage was reloaded while the action was in flight, its result is
// dropped and the notes are read again from storage.
func (s *Session) Do(ctx context.Context, action Action) ([]Note, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.RLock()
	generation := s.generation
	s.mu.RUnlock()

	var digest Digest
	ctx = WithWriteHook(ctx, func(d Digest) {
		s.mu.Lock()
		s.pending = append(s.pending, d)
		if len(s.pending) > maxPending {
			s.pending = slices.Clone(s.pending[len(s.pending)-maxPending:])
		}
		s.mu.Unlock()
	}, func(d Digest, err error) {
		if err != nil {
			s.mu.Lock()
			s.forget(d)
			s.mu.Unlock()
			return
		}
		digest = d
	})

	notes, err := action(ctx, s.svc)
	if err != nil {
		return nil, err
	}
	sorted := Sorted(notes)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("discarding action result of closed session", "digest", digest)
		return sorted, nil
	}
	if s.generation != generation {
		s.mu.Unlock()
		s.logger.Debug("storage changed during action, reloading", "digest", digest)
		return s.reload(ctx)
	}
	s.notes = sorted
	if digest != "" {
		s.current = digest
	}
	s.mu.Unlock()

	s.notify(sorted)
	return slices.Clone(sorted), nil
}

// forget drops the most recent pending entry for d. Callers hold mu.
func (s *Session) forget(d Digest) {
	for i := len(s.pending) - 1; i >= 0; i-- {
		if s.pending[i] == d {
			s.pending = slices.Delete(s.pending, i, i+1)
			return
		}
	}
}

// HandleChange applies a change reported by the backend. It returns true when
// the in-memory notes were replaced. Changes to other keys, values that are
// not arrays and payloads this session wrote or already holds are ignored.
//
// A change arriving while own writes are still unseen predates the latest of
// them, so storage is read again instead of trusting the reported value.
func (s *Session) HandleChange(c Change) bool {
	if c.Key != s.svc.Store().Key() {
		return false
	}
	if !IsArrayPayload(c.Value) {
		s.logger.Debug("ignoring non-array change", "key", c.Key)
		return false
	}
	digest := DigestOf(c.Value)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if i := slices.Index(s.pending, digest); i >= 0 {
		// Changes arrive in write order: earlier own writes were superseded.
		s.pending = slices.Clone(s.pending[i+1:])
		s.ignored++
		s.mu.Unlock()
		return false
	}
	if digest == s.current {
		s.ignored++
		s.mu.Unlock()
		return false
	}
	inTransit := len(s.pending) > 0
	s.mu.Unlock()

	payload := c.Value
	if inTransit {
		stored, err := s.svc.Store().Payload(context.Background())
		if err != nil {
			s.logger.Error("failed to reread storage", "key", c.Key, "error", err)
			return false
		}
		payload, digest = stored, DigestOf(stored)
	}
	return s.apply(payload, digest, true)
}

// reload reads the stored payload and adopts it as the in-memory state.
func (s *Session) reload(ctx context.Context) ([]Note, error) {
	payload, err := s.svc.Store().Payload(ctx)
	if err != nil {
		return nil, err
	}
	s.apply(payload, DigestOf(payload), false)
	return s.Notes(), nil
}

// apply replaces the in-memory notes with payload unless they already hold it.
// Changes from the feed are counted in the session state.
func (s *Session) apply(payload []byte, digest Digest, fromFeed bool) bool {
	notes := s.decode(payload)

	s.mu.Lock()
	if s.closed || digest == s.current {
		if fromFeed {
			s.ignored++
		}
		s.mu.Unlock()
		return false
	}
	s.notes = notes
	s.current = digest
	s.generation++
	if fromFeed {
		s.applied++
	}
	s.mu.Unlock()

	s.logger.Debug("applied stored change", "key", s.svc.Store().Key(), "notes", len(notes))
	s.notify(notes)
	return true
}

// decode normalizes a stored payload into canonical order. Corrupt payloads read as empty.
func (s *Session) decode(payload []byte) []Note {
	notes := []Note{}
	if len(bytes.TrimSpace(payload)) > 0 {
		raws, err := DecodeCollection(payload)
		if err != nil {
			s.logger.Warn("stored collection is corrupt, treating as empty", "key", s.svc.Store().Key(), "error", err)
		}
		now := s.svc.Now()
		for _, raw := range raws {
			notes = append(notes, Normalize(raw, now))
		}
	}
	Sort(notes)
	return notes
}

// Start subscribes to the backend's change feed and applies changes in the
// background until ctx is done or the session is closed.
func (s *Session) Start(ctx context.Context) error {
	obs, ok := s.svc.Store().Backend().(Observable)
	if !ok {
		return ErrNotObservable
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	changes, err := obs.Watch(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch backend: %w", err)
	}

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-changes:
				if !ok {
					return nil
				}
				s.HandleChange(c)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("change listener failed", "error", err)
	}))
	return nil
}

// Subscribe registers fn to be called with the notes whenever they change.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func([]Note)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close stops the change listener. Results of actions still in flight are discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) notify(notes []Note) {
	s.mu.RLock()
	fns := make([]func([]Note), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(slices.Clone(notes))
	}
}
