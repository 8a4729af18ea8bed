package core_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/blinknote/pkg/core"
)

func TestSort(t *testing.T) {
	notes := []core.Note{
		{ID: "old", UpdatedAt: 1},
		{ID: "new", UpdatedAt: 3},
		{ID: "pinned-old", UpdatedAt: 0, Pinned: true},
		{ID: "tie-b", UpdatedAt: 2, Order: 1},
		{ID: "tie-a", UpdatedAt: 2, Order: 1},
		{ID: "tie-high", UpdatedAt: 2, Order: 5},
	}
	core.Sort(notes)

	assert.Equal(t, []string{"pinned-old", "new", "tie-high", "tie-a", "tie-b", "old"}, core.IDs(notes))
}

func TestSortManual(t *testing.T) {
	notes := []core.Note{
		{ID: "a", Order: 1, UpdatedAt: 9},
		{ID: "b", Order: 3},
		{ID: "c", Order: 2, Pinned: true},
	}
	core.SortManual(notes)
	assert.Equal(t, []string{"c", "b", "a"}, core.IDs(notes))
}

func TestNextOrder(t *testing.T) {
	assert.Equal(t, 1.0, core.NextOrder(nil))
	assert.Equal(t, 8.0, core.NextOrder([]core.Note{{Order: 3}, {Order: 7}, {Order: -1}}))
}

func TestMoveBefore(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	tests := []struct {
		name    string
		dragged string
		marker  string
		want    []string
		ok      bool
	}{
		{"Forward", "a", "c", []string{"b", "a", "c", "d"}, true},
		{"Backward", "d", "b", []string{"a", "d", "b", "c"}, true},
		{"To End", "b", "", []string{"a", "c", "d", "b"}, true},
		{"Unknown Marker Means End", "a", "zz", []string{"b", "c", "d", "a"}, true},
		{"Onto Itself", "c", "c", []string{"a", "b", "d", "c"}, true},
		{"Unknown Dragged", "zz", "a", ids, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := core.MoveBefore(ids, tt.dragged, tt.marker)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids, "input is not modified")
}

func TestMoveOnto(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	got, ok := core.MoveOnto(ids, "a", "c")
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c", "a", "d"}, got)

	got, ok = core.MoveOnto(ids, "d", "a")
	assert.True(t, ok)
	assert.Equal(t, []string{"d", "a", "b", "c"}, got)

	_, ok = core.MoveOnto(ids, "a", "a")
	assert.False(t, ok)
	_, ok = core.MoveOnto(ids, "a", "zz")
	assert.False(t, ok)
}

func TestAssignOrder(t *testing.T) {
	notes := []core.Note{
		{ID: "a", Order: 100, UpdatedAt: 5},
		{ID: "b", Order: 200, UpdatedAt: 6},
		{ID: "hidden", Order: 300, UpdatedAt: 7},
	}
	out := core.AssignOrder(notes, []string{"b", "a"})

	assert.Equal(t, 0.0, out[0].Order)
	assert.Equal(t, 1.0, out[1].Order)
	assert.Equal(t, 300.0, out[2].Order, "notes outside the list keep their order")
	for i := range out {
		assert.Equal(t, notes[i].UpdatedAt, out[i].UpdatedAt)
	}
	assert.Equal(t, 100.0, notes[0].Order, "input is not modified")

	core.SortManual(out)
	assert.Equal(t, []string{"hidden", "b", "a"}, core.IDs(out))
}

// Pinning a note always moves it ahead of every unpinned note.
func TestPinPromotes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("a pinned note sorts before all unpinned notes", prop.ForAll(
		func(updates []int64, pick int) bool {
			if len(updates) == 0 {
				return true
			}
			notes := make([]core.Note, len(updates))
			for i, u := range updates {
				notes[i] = core.Note{ID: string(rune('a' + i%26)) + string(rune('0'+i/26)), UpdatedAt: u}
			}
			target := pick % len(notes)
			notes[target].Pinned = true
			id := notes[target].ID

			core.Sort(notes)
			return notes[0].ID == id
		},
		gen.SliceOfN(20, gen.Int64Range(0, 1_000_000)),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
