package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blinknote/pkg/core"
)

func day(s string) int64 {
	t, err := time.Parse(core.DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour).UnixMilli()
}

func queryFixture() []core.Note {
	return []core.Note{
		{ID: "a", Title: "Groceries", Content: "Buy MILK", Type: core.TypeText, CreatedAt: day("2024-03-01")},
		{ID: "b", Title: "Link", Content: "https://github.com/golang/go", Type: core.TypeLink, CreatedAt: day("2024-03-01"), SourceURL: "https://github.com/golang/go/"},
		{ID: "c", Title: "Cat", Content: "https://en.wikipedia.org/cat.png", Type: core.TypeImage, CreatedAt: day("2024-03-02"), SourceURL: "https://en.wikipedia.org/wiki/Cat"},
		{ID: "d", Title: "Call", Content: "dentist", Type: core.TypeText, CreatedAt: day("2024-03-02"), Reminder: ptr(day("2024-03-05"))},
	}
}

func TestSearch(t *testing.T) {
	notes := queryFixture()
	assert.Equal(t, []string{"a"}, core.IDs(core.Search(notes, "milk")))
	assert.Equal(t, []string{"c"}, core.IDs(core.Search(notes, " cat ")))
	assert.Empty(t, core.Search(notes, "  "))
}

func TestDayQueries(t *testing.T) {
	notes := queryFixture()

	assert.Equal(t, "2024-03-05", core.Day(notes[3]), "reminder wins over creation")
	assert.Equal(t, []string{"a", "b"}, core.IDs(core.OnDate(notes, "2024-03-01")))
	assert.Equal(t, []string{"d"}, core.IDs(core.OnDate(notes, "2024-03-05")))
	assert.Len(t, core.OnDate(notes, ""), 4)

	assert.Equal(t, map[string]int{
		"2024-03-01": 2,
		"2024-03-02": 1,
		"2024-03-05": 1,
	}, core.CountByDay(notes))
}

func TestOfType(t *testing.T) {
	notes := queryFixture()
	assert.Equal(t, []string{"a", "d"}, core.IDs(core.OfType(notes, core.TypeText)))
	assert.Len(t, core.OfType(notes, "all"), 4)
	assert.Len(t, core.OfType(notes, ""), 4)
}

func TestFromSource(t *testing.T) {
	notes := queryFixture()

	got, err := core.FromSource(notes, "github.com/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, core.IDs(got))

	got, err = core.FromSource(notes, "*.wikipedia.org/wiki/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, core.IDs(got))

	got, err = core.FromSource(notes, "**")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, core.IDs(got), "notes without a source never match")

	_, err = core.FromSource(notes, "[unclosed")
	assert.Error(t, err)
}
