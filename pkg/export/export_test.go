package export_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blinknote/pkg/adapters/memory"
	"github.com/aretw0/blinknote/pkg/core"
	"github.com/aretw0/blinknote/pkg/export"
)

var created = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC).UnixMilli()

func TestMarkdown(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		n := core.Note{ID: "a", Type: core.TypeText, Content: "buy milk", CreatedAt: created}
		want := "# BlinkNote\n\n- Type: text\n- Created: 2025-03-14 09:26\n\nbuy milk"
		assert.Equal(t, want, string(export.Markdown(n)))
	})

	t.Run("Image Embeds", func(t *testing.T) {
		n := core.Note{ID: "b", Type: core.TypeImage, Content: "https://x.test/cat.png", CreatedAt: created}
		assert.Contains(t, string(export.Markdown(n)), "![image](https://x.test/cat.png)")
	})
}

func TestHTML(t *testing.T) {
	n := core.Note{ID: "a", Type: core.TypeText, Content: "**bold**", CreatedAt: created}
	out, err := export.HTML(n)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>BlinkNote</h1>")
	assert.Contains(t, string(out), "<strong>bold</strong>")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]export.Format{"md": export.FormatMarkdown, ".JSON": export.FormatJSON, "markdown": export.FormatMarkdown, "html": export.FormatHTML} {
		got, err := export.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := export.ParseFormat("pdf")
	assert.Error(t, err)
}

func TestCollection_ImportsBack(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(created)
	svc := core.NewService(core.NewStore(memory.New(), ""), core.WithClock(func() time.Time { return now }))

	_, _, err := svc.Append(ctx, core.Draft{Content: "first"})
	require.NoError(t, err)
	_, notes, err := svc.Append(ctx, core.Draft{Content: "https://go.dev"})
	require.NoError(t, err)

	doc, err := export.Collection(notes, now)
	require.NoError(t, err)

	var parsed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.JSONEq(t, `"2025-03-14T09:26:53Z"`, string(parsed["exportedAt"]))

	other := core.NewService(core.NewStore(memory.New(), ""))
	imported, err := other.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, notes, imported)
}
