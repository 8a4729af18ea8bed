package core

import (
	"cmp"
	"slices"
)

// Compare is the canonical display comparator: pinned notes first, then the
// most recently updated. Remaining ties fall back to order (desc) and id so
// sorting is deterministic.
func Compare(a, b Note) int {
	if a.Pinned != b.Pinned {
		if a.Pinned {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.UpdatedAt, a.UpdatedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Order, a.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Sort orders notes in place with Compare.
func Sort(notes []Note) {
	slices.SortStableFunc(notes, Compare)
}

// Sorted returns a sorted copy of notes.
func Sorted(notes []Note) []Note {
	out := slices.Clone(notes)
	Sort(out)
	return out
}

// SortManual orders notes by their persisted manual position: pinned first,
// then order descending. Views that let the user drag notes use this.
func SortManual(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		if a.Pinned != b.Pinned {
			if a.Pinned {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Order, a.Order)
	})
}

// NextOrder returns the order value for a note appended to notes.
func NextOrder(notes []Note) float64 {
	if len(notes) == 0 {
		return 1
	}
	highest := notes[0].Order
	for _, n := range notes[1:] {
		highest = max(highest, n.Order)
	}
	return highest + 1
}

// MoveBefore moves dragged in front of marker. An empty or unknown marker
// moves it to the end. It returns false when dragged is not in ids.
func MoveBefore(ids []string, dragged, marker string) ([]string, bool) {
	current := slices.Index(ids, dragged)
	if current == -1 {
		return ids, false
	}
	out := slices.Delete(slices.Clone(ids), current, current+1)
	insert := len(out)
	if marker != "" && marker != dragged {
		if i := slices.Index(out, marker); i != -1 {
			insert = i
		}
	}
	return slices.Insert(out, insert, dragged), true
}

// MoveOnto moves dragged to the position target occupies.
// Dragging onto itself, or an id missing from ids, is rejected.
func MoveOnto(ids []string, dragged, target string) ([]string, bool) {
	if dragged == target {
		return ids, false
	}
	current := slices.Index(ids, dragged)
	targetIndex := slices.Index(ids, target)
	if current == -1 || targetIndex == -1 {
		return ids, false
	}
	out := slices.Delete(slices.Clone(ids), current, current+1)
	return slices.Insert(out, targetIndex, dragged), true
}

// AssignOrder writes a dense order for the notes listed in ids: the first id
// gets the highest value. Notes outside ids are left untouched and updatedAt
// is never bumped.
func AssignOrder(notes []Note, ids []string) []Note {
	weight := make(map[string]float64, len(ids))
	for i, id := range ids {
		weight[id] = float64(len(ids) - 1 - i)
	}
	out := make([]Note, len(notes))
	for i, n := range notes {
		if w, ok := weight[n.ID]; ok {
			n.Order = w
		}
		out[i] = n
	}
	return out
}

// IDs returns the ids of notes in order.
func IDs(notes []Note) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}
