package core

import (
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DayLayout is the layout of the day keys used by OnDate and CountByDay.
const DayLayout = "2006-01-02"

// Search returns the notes whose title or content contains term, ignoring case.
// A blank term matches nothing.
func Search(notes []Note, term string) []Note {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []Note{}
	}
	return filter(notes, func(n Note) bool {
		return strings.Contains(strings.ToLower(n.Title), term) ||
			strings.Contains(strings.ToLower(n.Content), term)
	})
}

// Day returns the calendar day (UTC) a note is filed under: its reminder when
// set, its creation time otherwise.
func Day(n Note) string {
	ref := n.CreatedAt
	if n.Reminder != nil {
		ref = *n.Reminder
	}
	return time.UnixMilli(ref).UTC().Format(DayLayout)
}

// OnDate returns the notes filed under day. An empty day matches every note.
func OnDate(notes []Note, day string) []Note {
	if day == "" {
		return notes
	}
	return filter(notes, func(n Note) bool {
		return Day(n) == day
	})
}

// CountByDay returns how many notes are filed under each day.
func CountByDay(notes []Note) map[string]int {
	counts := make(map[string]int)
	for _, n := range notes {
		counts[Day(n)]++
	}
	return counts
}

// OfType returns the notes of type t. An empty type, or "all", matches every note.
func OfType(notes []Note, t Type) []Note {
	if t == "" || t == "all" {
		return notes
	}
	return filter(notes, func(n Note) bool {
		return n.Type == t
	})
}

// FromSource returns the notes whose source page matches a glob pattern over
// "host/path", e.g. "github.com/**" or "*.wikipedia.org/wiki/*".
// Notes without a source never match.
func FromSource(notes []Note, pattern string) ([]Note, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	out := []Note{}
	for _, n := range notes {
		if n.SourceURL == "" {
			continue
		}
		ok, err := doublestar.Match(pattern, sourcePath(n.SourceURL))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// sourcePath reduces a URL to "host/path" without a trailing slash.
func sourcePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	}
	return strings.TrimSuffix(u.Host+u.Path, "/")
}

func filter(notes []Note, keep func(Note) bool) []Note {
	out := []Note{}
	for _, n := range notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
