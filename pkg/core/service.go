package core

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service is the collection mutator. Every change to the notes goes through
// Transact: read the whole collection, transform it, write it back.
//
// Transactions are not serialized against each other. Two overlapping calls
// may lose an update (last write wins); callers that need more wait for each
// call to return before issuing the next one (see Session).
type Service struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu           sync.RWMutex
	transactions int
	lastDigest   Digest
	lastErr      error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used by the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the time source (useful for testing).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the note id generator (useful for testing).
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a new Service over store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the adapter the service persists through.
func (s *Service) Store() *Store {
	return s.store
}

// Now returns the current time according to the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Close releases the backend when it holds resources (e.g. a database lock).
func (s *Service) Close() error {
	if c, ok := s.store.Backend().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load reads and normalizes the collection without writing it.
// A corrupt payload is logged and read as empty.
func (s *Service) Load(ctx context.Context) ([]Note, error) {
	raws, err := s.store.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return nil, err
		}
		s.logger.Warn("stored collection is corrupt, treating as empty", "key", s.store.Key(), "error", err)
	}
	now := s.now()
	notes := make([]Note, len(raws))
	for i, raw := range raws {
		notes[i] = Normalize(raw, now)
	}
	return notes, nil
}

type contextKey string

// writeHookKey carries the writeHooks of a context.
const writeHookKey contextKey = "write_hook"

type writeHooks struct {
	before func(Digest)
	after  func(Digest, error)
}

// WithWriteHook returns a context whose transactions report the digest of the
// payload they write: before is called right before the write, after once the
// write has returned. Either may be nil.
func WithWriteHook(ctx context.Context, before func(Digest), after func(Digest, error)) context.Context {
	return context.WithValue(ctx, writeHookKey, writeHooks{before: before, after: after})
}

// Transact runs one read-modify-write cycle and returns the persisted result.
// The result is only returned once the write succeeded.
func (s *Service) Transact(ctx context.Context, fn func([]Note) ([]Note, error)) ([]Note, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []Note{}
	}
	payload, err := EncodeCollection(next)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailure, err)
	}
	digest := DigestOf(payload)
	hooks, _ := ctx.Value(writeHookKey).(writeHooks)
	if hooks.before != nil {
		hooks.before(digest)
	}
	err = s.store.WritePayload(ctx, payload)
	s.record(digest, err)
	if hooks.after != nil {
		hooks.after(digest, err)
	}
	if err != nil {
		s.logger.Error("write failed", "key", s.store.Key(), "error", err)
		return nil, err
	}
	s.logger.Debug("collection written", "key", s.store.Key(), "notes", len(next), "digest", digest)
	return next, nil
}

func (s *Service) record(digest Digest, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions++
	s.lastErr = err
	if err == nil {
		s.lastDigest = digest
	}
}

// List returns the collection in canonical display order.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	notes, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	Sort(notes)
	return notes, nil
}

// Get returns the note with the given id.
func (s *Service) Get(ctx context.Context, id string) (Note, bool, error) {
	notes, err := s.Load(ctx)
	if err != nil {
		return Note{}, false, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, true, nil
		}
	}
	return Note{}, false, nil
}

// Draft is the input of the compose form.
type Draft struct {
	Title     string
	Content   string
	Type      Type // optional; detected from Content when empty
	Color     string
	Reminder  *int64
	SourceURL string
}

// Append creates a note from a draft and adds it to the collection.
func (s *Service) Append(ctx context.Context, d Draft) (Note, []Note, error) {
	content := strings.TrimSpace(d.Content)
	if content == "" {
		return Note{}, nil, ErrEmptyContent
	}
	typ := d.Type
	if !typ.Valid() {
		typ = DetectType(content)
	}
	raw := RawNote{
		ID:        s.newID(),
		Type:      typ,
		Content:   content,
		Reminder:  d.Reminder,
		SourceURL: d.SourceURL,
	}
	if t := strings.TrimSpace(d.Title); t != "" {
		raw.Title = &t
	}
	if d.Color != "" {
		color := d.Color
		raw.Color = &color
	}
	return s.appendRaw(ctx, raw)
}

func (s *Service) appendRaw(ctx context.Context, raw RawNote) (Note, []Note, error) {
	var created Note
	notes, err := s.Transact(ctx, func(existing []Note) ([]Note, error) {
		ts := s.now().UnixMilli()
		order := NextOrder(existing)
		raw.CreatedAt = &ts
		raw.UpdatedAt = &ts
		raw.Order = &order
		created = Normalize(raw, s.now())
		next := append(slices.Clone(existing), created)
		Sort(next)
		return next, nil
	})
	if err != nil {
		return Note{}, nil, err
	}
	s.logger.Info("note added", "id", created.ID, "type", created.Type)
	return created, notes, nil
}

// CaptureKind identifies what a browser capture action selected.
type CaptureKind string

const (
	CaptureSelection CaptureKind = "selection"
	CapturePage      CaptureKind = "page"
	CaptureImage     CaptureKind = "image"
)

// Capture is a note captured from a page: selected text, the page link or an image.
type Capture struct {
	Kind          CaptureKind
	SelectionText string
	PageURL       string
	SrcURL        string
}

// Capture appends a note from a capture action. The page URL is kept as provenance.
func (s *Service) Capture(ctx context.Context, c Capture) (Note, []Note, error) {
	var typ Type
	var content string
	switch c.Kind {
	case CaptureSelection:
		typ, content = TypeText, c.SelectionText
	case CapturePage:
		typ, content = TypeLink, c.PageURL
	case CaptureImage:
		typ, content = TypeImage, c.SrcURL
	default:
		return Note{}, nil, fmt.Errorf("unknown capture kind %q", c.Kind)
	}
	if strings.TrimSpace(content) == "" {
		return Note{}, nil, ErrEmptyContent
	}
	return s.appendRaw(ctx, RawNote{
		ID:        s.newID(),
		Type:      typ,
		Content:   content,
		SourceURL: c.PageURL,
	})
}

// AttachImage reads an image (pasted or dropped) and appends it as a data-URI note.
func (s *Service) AttachImage(ctx context.Context, r io.Reader, sourceURL string) (Note, []Note, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Note{}, nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) == 0 {
		return Note{}, nil, ErrEmptyContent
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Note{}, nil, fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	content := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return s.appendRaw(ctx, RawNote{
		ID:        s.newID(),
		Type:      TypeImage,
		Content:   content,
		SourceURL: sourceURL,
	})
}

// Patch is an edit of a note. Nil fields are left unchanged.
type Patch struct {
	Title         *string
	Content       *string
	Color         *string
	Reminder      *int64
	ClearReminder bool
}

// Update applies a patch and bumps updatedAt. The type never changes.
// Updating a missing id is a no-op; blank content fails with ErrEmptyContent.
func (s *Service) Update(ctx context.Context, id string, p Patch) ([]Note, error) {
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return nil, ErrEmptyContent
	}
	return s.Transact(ctx, func(notes []Note) ([]Note, error) {
		ts := s.now().UnixMilli()
		next := mapNotes(notes, func(n Note) Note {
			if n.ID != id {
				return n
			}
			if p.Title != nil {
				n.Title = strings.TrimSpace(*p.Title)
				if n.Title == "" {
					n.Title = UntitledNote
				}
			}
			if p.Content != nil {
				n.Content = strings.TrimSpace(*p.Content)
			}
			if p.Color != nil && *p.Color != "" {
				n.Color = *p.Color
			}
			if p.ClearReminder {
				n.Reminder = nil
			} else if p.Reminder != nil {
				r := *p.Reminder
				n.Reminder = &r
			}
			n.UpdatedAt = max(ts, n.UpdatedAt)
			return n
		})
		Sort(next)
		return next, nil
	})
}

// Delete removes the note with the given id. Absent ids are ignored.
func (s *Service) Delete(ctx context.Context, id string) ([]Note, error) {
	return s.DeleteMany(ctx, []string{id})
}

// DeleteMany removes every note whose id is listed.
func (s *Service) DeleteMany(ctx context.Context, ids []string) ([]Note, error) {
	drop := toSet(ids)
	return s.Transact(ctx, func(notes []Note) ([]Note, error) {
		return slices.DeleteFunc(slices.Clone(notes), func(n Note) bool {
			return drop[n.ID]
		}), nil
	})
}

// TogglePin flips the pinned flag of a note and bumps updatedAt.
func (s *Service) TogglePin(ctx context.Context, id string) ([]Note, error) {
	return s.Transact(ctx, func(notes []Note) ([]Note, error) {
		ts := s.now().UnixMilli()
		next := mapNotes(notes, func(n Note) Note {
			if n.ID != id {
				return n
			}
			n.Pinned = !n.Pinned
			n.UpdatedAt = max(ts, n.UpdatedAt)
			return n
		})
		Sort(next)
		return next, nil
	})
}

// SetPinned pins or unpins every listed note.
func (s *Service) SetPinned(ctx context.Context, ids []string, pinned bool) ([]Note, error) {
	set := toSet(ids)
	return s.Transact(ctx, func(notes []Note) ([]Note, error) {
		ts := s.now().UnixMilli()
		next := mapNotes(notes, func(n Note) Note {
			if !set[n.ID] {
				return n
			}
			n.Pinned = pinned
			n.UpdatedAt = max(ts, n.UpdatedAt)
			return n
		})
		Sort(next)
		return next, nil
	})
}

// ReorderAtIndex drops dragged in front of the note at index in the visible list.
// An index past the end drops it last. Only the visible notes get a new order.
func (s *Service) ReorderAtIndex(ctx context.Context, visible []string, dragged string, index int) ([]Note, error) {
	marker := ""
	if index >= 0 && index < len(visible) {
		marker = visible[index]
	}
	ordered, ok := MoveBefore(visible, dragged, marker)
	if !ok {
		return s.List(ctx)
	}
	return s.reorder(ctx, ordered)
}

// ReorderOnto drops dragged onto target in the visible list.
func (s *Service) ReorderOnto(ctx context.Context, visible []string, dragged, target string) ([]Note, error) {
	ordered, ok := MoveOnto(visible, dragged, target)
	if !ok {
		return s.List(ctx)
	}
	return s.reorder(ctx, ordered)
}

func (s *Service) reorder(ctx context.Context, ordered []string) ([]Note, error) {
	return s.Transact(ctx, func(notes []Note) ([]Note, error) {
		return AssignOrder(notes, ordered), nil
	})
}

// importPayload is the document accepted by Import and produced by a full export.
type importPayload struct {
	Notes json.RawMessage `json:"notes"`
}

// Import replaces the whole collection with the notes of an exported payload.
// The existing notes are discarded; a rejected payload leaves them untouched.
func (s *Service) Import(ctx context.Context, payload []byte) ([]Note, error) {
	raws, err := ParseImport(payload)
	if err != nil {
		return nil, err
	}
	return s.ImportNotes(ctx, raws)
}

// ParseImport validates an import payload of the form {"notes": [...]}.
func ParseImport(payload []byte) ([]RawNote, error) {
	var p importPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if !IsArrayPayload(p.Notes) {
		return nil, fmt.Errorf("%w: notes is not an array", ErrInvalidImport)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(p.Notes, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	raws := make([]RawNote, 0, len(items))
	for i, item := range items {
		var raw RawNote
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("%w: note %d: %v", ErrInvalidImport, i, err)
		}
		if raw.ID == "" {
			return nil, fmt.Errorf("%w: note %d has no id", ErrInvalidImport, i)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// ImportNotes replaces the collection with the normalized raws.
func (s *Service) ImportNotes(ctx context.Context, raws []RawNote) ([]Note, error) {
	notes, err := s.Transact(ctx, func([]Note) ([]Note, error) {
		now := s.now()
		next := make([]Note, len(raws))
		for i, raw := range raws {
			next[i] = Normalize(raw, now)
		}
		Sort(next)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("collection replaced by import", "notes", len(notes))
	return notes, nil
}

// Clear removes every note.
func (s *Service) Clear(ctx context.Context) error {
	_, err := s.Transact(ctx, func([]Note) ([]Note, error) {
		return []Note{}, nil
	})
	return err
}

func mapNotes(notes []Note, fn func(Note) Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = fn(n)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
