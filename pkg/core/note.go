package core

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Type is the kind of content a note holds.
type Type string

const (
	TypeText  Type = "text"
	TypeLink  Type = "link"
	TypeImage Type = "image"
)

// Valid reports whether t is one of the known note types.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeLink, TypeImage:
		return true
	}
	return false
}

const (
	// DefaultKey is the storage key holding the note collection.
	DefaultKey = "blinknote-items"
	// DefaultColor is the accent color given to notes without one.
	DefaultColor = "#ffbd59"
	// UntitledNote is the title used by the compose and edit forms when left blank.
	UntitledNote = "Untitled note"
)

// Note is the sole persisted entity: a captured piece of text, a link or an image.
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      Type     `json:"type"`
	Content   string   `json:"content"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	Order     float64  `json:"order"`
	Color     string   `json:"color"`
	Pinned    bool     `json:"pinned"`
	Reminder  *int64   `json:"reminder"`
	Lineage   []string `json:"lineage"`
	SourceURL string   `json:"sourceUrl,omitempty"`
}

// RawNote is a partial, possibly legacy note record as found in storage or in an
// import payload. Nil fields are filled in by Normalize.
type RawNote struct {
	ID        string          `json:"id"`
	Title     *string         `json:"title,omitempty"`
	Type      Type            `json:"type,omitempty"`
	Content   string          `json:"content"`
	CreatedAt *int64          `json:"createdAt,omitempty"`
	UpdatedAt *int64          `json:"updatedAt,omitempty"`
	Order     *float64        `json:"order,omitempty"`
	Color     *string         `json:"color,omitempty"`
	Pinned    *bool           `json:"pinned,omitempty"`
	Reminder  *int64          `json:"reminder,omitempty"`
	Lineage   json.RawMessage `json:"lineage,omitempty"`
	SourceURL string          `json:"sourceUrl,omitempty"`
}

// Normalize coerces a partial record into a complete Note.
// It only fills what is missing; values present in raw are kept as they are.
func Normalize(raw RawNote, now time.Time) Note {
	createdAt := now.UnixMilli()
	if raw.CreatedAt != nil {
		createdAt = *raw.CreatedAt
	}
	updatedAt := createdAt
	if raw.UpdatedAt != nil {
		updatedAt = *raw.UpdatedAt
	}
	order := float64(createdAt)
	if raw.Order != nil {
		order = *raw.Order
	}

	typ := raw.Type
	if !typ.Valid() {
		typ = DetectType(raw.Content)
	}

	title := DefaultTitle(typ)
	if raw.Title != nil && strings.TrimSpace(*raw.Title) != "" {
		title = *raw.Title
	}

	color := DefaultColor
	if raw.Color != nil && *raw.Color != "" {
		color = *raw.Color
	}

	var reminder *int64
	if raw.Reminder != nil {
		r := *raw.Reminder
		reminder = &r
	}

	return Note{
		ID:        raw.ID,
		Title:     title,
		Type:      typ,
		Content:   raw.Content,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Order:     order,
		Color:     color,
		Pinned:    raw.Pinned != nil && *raw.Pinned,
		Reminder:  reminder,
		Lineage:   coerceLineage(raw.Lineage),
		SourceURL: raw.SourceURL,
	}
}

// coerceLineage keeps the string elements of a list-shaped value.
// Anything else (null, object, number) yields an empty lineage.
func coerceLineage(data json.RawMessage) []string {
	out := []string{}
	if len(data) == 0 {
		return out
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RawFromNote converts a complete note back into its raw form so it can be
// re-normalized (e.g. after an external edit of a single field).
func RawFromNote(n Note) RawNote {
	title := n.Title
	createdAt := n.CreatedAt
	updatedAt := n.UpdatedAt
	order := n.Order
	color := n.Color
	pinned := n.Pinned
	lineage := n.Lineage
	if lineage == nil {
		lineage = []string{}
	}
	data, _ := json.Marshal(lineage)

	raw := RawNote{
		ID:        n.ID,
		Title:     &title,
		Type:      n.Type,
		Content:   n.Content,
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
		Order:     &order,
		Color:     &color,
		Pinned:    &pinned,
		Lineage:   data,
		SourceURL: n.SourceURL,
	}
	if n.Reminder != nil {
		r := *n.Reminder
		raw.Reminder = &r
	}
	return raw
}

// DefaultTitle returns the label used for notes without a title.
func DefaultTitle(t Type) string {
	switch t {
	case TypeLink:
		return "Link"
	case TypeImage:
		return "Image"
	default:
		return "Note"
	}
}

var (
	linkPattern  = regexp.MustCompile(`(?i)^https?://`)
	imagePattern = regexp.MustCompile(`(?i)^data:image|\.(png|jpe?g|gif|webp)$`)
)

// DetectType guesses the note type from its content.
// It is a heuristic: anything that is neither a URL nor image-like is text.
func DetectType(value string) Type {
	v := strings.TrimSpace(value)
	if linkPattern.MatchString(v) {
		return TypeLink
	}
	if imagePattern.MatchString(v) {
		return TypeImage
	}
	return TypeText
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	c := n
	c.Lineage = append([]string{}, n.Lineage...)
	if n.Reminder != nil {
		r := *n.Reminder
		c.Reminder = &r
	}
	return c
}
