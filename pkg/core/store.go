package core

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Digest identifies a serialized collection payload.
type Digest string

// DigestOf hashes a payload.
func DigestOf(payload []byte) Digest {
	sum := sha256.Sum256(payload)
	return Digest(hex.EncodeToString(sum[:]))
}

// Store adapts a Backend to the note collection stored under a single key.
type Store struct {
	backend Backend
	key     string
}

// NewStore creates a Store reading and writing key on backend.
// An empty key means DefaultKey.
func NewStore(backend Backend, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{backend: backend, key: key}
}

// Key returns the storage key of the collection.
func (s *Store) Key() string {
	return s.key
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Payload returns the stored bytes as they are, nil when the key is missing.
func (s *Store) Payload(ctx context.Context) ([]byte, error) {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return data, nil
}

// Read loads the raw collection. A missing key reads as empty.
// A payload that is not a JSON array reads as empty and returns ErrCorruptState.
func (s *Store) Read(ctx context.Context) ([]RawNote, error) {
	data, err := s.Payload(ctx)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []RawNote{}, nil
	}
	raws, err := DecodeCollection(data)
	if err != nil {
		return []RawNote{}, err
	}
	return raws, nil
}

// Write serializes the whole collection and stores it.
// It returns the digest of the payload written.
func (s *Store) Write(ctx context.Context, notes []Note) (Digest, error) {
	payload, err := EncodeCollection(notes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	if err := s.WritePayload(ctx, payload); err != nil {
		return "", err
	}
	return DigestOf(payload), nil
}

// WritePayload stores an already serialized collection.
func (s *Store) WritePayload(ctx context.Context, payload []byte) error {
	if err := s.backend.Set(ctx, s.key, payload); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	return nil
}

// EncodeCollection serializes notes the way they are persisted.
func EncodeCollection(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}
	return json.Marshal(notes)
}

// DecodeCollection parses a persisted payload. Elements that are not objects
// are skipped; a payload that is not an array fails with ErrCorruptState.
func DecodeCollection(data []byte) ([]RawNote, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	raws := make([]RawNote, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var raw RawNote
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// IsArrayPayload reports whether data is a JSON array.
func IsArrayPayload(data []byte) bool {
	var items []json.RawMessage
	return json.Unmarshal(data, &items) == nil && items != nil
}
