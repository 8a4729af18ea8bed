package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blinknote/pkg/adapters/memory"
	"github.com/aretw0/blinknote/pkg/core"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Key Uses Default", func(t *testing.T) {
		s := core.NewStore(memory.New(), "")
		assert.Equal(t, core.DefaultKey, s.Key())
	})

	t.Run("Missing Key Reads As Empty", func(t *testing.T) {
		raws, err := core.NewStore(memory.New(), "").Read(ctx)
		require.NoError(t, err)
		assert.Empty(t, raws)
	})

	t.Run("Write Then Read Round Trip", func(t *testing.T) {
		s := core.NewStore(memory.New(), "k")
		notes := []core.Note{
			core.Normalize(core.RawNote{ID: "a", Content: "one"}, epoch),
			core.Normalize(core.RawNote{ID: "b", Content: "https://go.dev", Reminder: ptr(int64(5))}, epoch),
		}
		digest, err := s.Write(ctx, notes)
		require.NoError(t, err)
		assert.NotEmpty(t, digest)

		raws, err := s.Read(ctx)
		require.NoError(t, err)
		require.Len(t, raws, 2)
		for i, raw := range raws {
			assert.Equal(t, notes[i], core.Normalize(raw, epoch.Add(1e9)))
		}
	})

	t.Run("Corrupt Payload Reads As Empty", func(t *testing.T) {
		backend := memory.New()
		for _, payload := range []string{`{"not":"an array"}`, `garbage`, `"string"`} {
			require.NoError(t, backend.Set(ctx, "k", []byte(payload)))
			raws, err := core.NewStore(backend, "k").Read(ctx)
			assert.ErrorIs(t, err, core.ErrCorruptState, payload)
			assert.Empty(t, raws)
		}
	})

	t.Run("Non Object Elements Are Skipped", func(t *testing.T) {
		backend := memory.New()
		require.NoError(t, backend.Set(ctx, "k", []byte(`[1, "x", {"id":"a"}, null]`)))
		raws, err := core.NewStore(backend, "k").Read(ctx)
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Equal(t, "a", raws[0].ID)
	})

	t.Run("Drifted Records Are Kept", func(t *testing.T) {
		backend := memory.New()
		payload := `[{"id":"old","content":"legacy","createdAt":"1700000000000"},{"id":5},{"id":"p","pinned":"true"}]`
		require.NoError(t, backend.Set(ctx, "k", []byte(payload)))
		raws, err := core.NewStore(backend, "k").Read(ctx)
		require.NoError(t, err)
		require.Len(t, raws, 3)
		assert.Equal(t, ptr(int64(1700000000000)), raws[0].CreatedAt)
		assert.Equal(t, "5", raws[1].ID)
		assert.Equal(t, ptr(true), raws[2].Pinned)
	})

	t.Run("Backend Failure Is A Write Failure", func(t *testing.T) {
		backend := memory.New()
		backend.FailWrites(errors.New("quota exceeded"))
		_, err := core.NewStore(backend, "k").Write(ctx, nil)
		assert.ErrorIs(t, err, core.ErrWriteFailure)
	})
}

func TestEncodeCollection(t *testing.T) {
	data, err := core.EncodeCollection(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.True(t, core.IsArrayPayload(data))
	assert.False(t, core.IsArrayPayload([]byte("null")))
	assert.False(t, core.IsArrayPayload([]byte(`{"notes":[]}`)))
	assert.Equal(t, core.DigestOf(data), core.DigestOf([]byte("[]")))
}
