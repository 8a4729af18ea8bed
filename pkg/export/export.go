// Package export renders notes for download: Markdown, JSON, HTML, and the
// whole-collection document accepted back by Service.Import.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/aretw0/blinknote/pkg/core"
)

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatMarkdown, FormatJSON, FormatHTML:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

const timestampLayout = "2006-01-02 15:04"

// Timestamp formats a millisecond timestamp as "YYYY-MM-DD HH:MM" in UTC.
func Timestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(timestampLayout)
}

// Markdown renders a fixed header followed by the content, or an image embed
// for image notes.
func Markdown(n core.Note) []byte {
	var b strings.Builder
	b.WriteString("# BlinkNote\n\n")
	fmt.Fprintf(&b, "- Type: %s\n", n.Type)
	fmt.Fprintf(&b, "- Created: %s\n\n", Timestamp(n.CreatedAt))
	if n.Type == core.TypeImage {
		fmt.Fprintf(&b, "![image](%s)", n.Content)
	} else {
		b.WriteString(n.Content)
	}
	return []byte(b.String())
}

// JSON renders the note record, pretty-printed.
func JSON(n core.Note) ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}

var markdown = goldmark.New()

// HTML renders the Markdown export of a note as an HTML fragment.
func HTML(n core.Note) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(Markdown(n), &buf); err != nil {
		return nil, fmt.Errorf("failed to render note %s: %w", n.ID, err)
	}
	return buf.Bytes(), nil
}

// Note renders n in format f.
func Note(n core.Note, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return Markdown(n), nil
	case FormatJSON:
		return JSON(n)
	case FormatHTML:
		return HTML(n)
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// Filename returns the download name of a note export.
func Filename(n core.Note, f Format) string {
	return n.ID + "." + string(f)
}

// Document is the whole-collection export.
type Document struct {
	ExportedAt string      `json:"exportedAt"`
	Notes      []core.Note `json:"notes"`
}

// Collection renders every note as an importable document.
func Collection(notes []core.Note, now time.Time) ([]byte, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	return json.MarshalIndent(Document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Notes:      notes,
	}, "", "  ")
}
