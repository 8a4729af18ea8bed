package shared_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blinknote/pkg/adapters/shared"
	"github.com/aretw0/blinknote/pkg/core"
)

func newStore(t *testing.T, dir string) *shared.Store {
	t.Helper()
	s, err := shared.New(shared.Config{Dir: dir, Debounce: 10 * time.Millisecond})
	require.NoError(t, err)
	return s
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newStore(t, dir)

	value, err := s.Get(ctx, "items")
	require.NoError(t, err)
	assert.Nil(t, value, "a missing key reads as nil")

	require.NoError(t, s.Set(ctx, "items", []byte(`[{"id":"a"}]`)))
	value, err = s.Get(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(value))

	_, err = os.Stat(filepath.Join(dir, "items.json"))
	assert.NoError(t, err)

	state := s.State().(shared.StoreState)
	assert.Equal(t, 1, state.Writes)
	assert.Equal(t, "shared", s.ComponentType())
}

func TestStore_RejectsKeysOutsideDir(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	dir := filepath.Join(base, "shared")
	s := newStore(t, dir)

	for _, key := range []string{"", "../escaped", "..", "nested/items", `nested\items`, "a\x00b"} {
		t.Run(key, func(t *testing.T) {
			assert.ErrorIs(t, s.Set(ctx, key, []byte("[]")), shared.ErrInvalidKey)
			_, err := s.Get(ctx, key)
			assert.ErrorIs(t, err, shared.ErrInvalidKey)
		})
	}

	_, err := os.Stat(filepath.Join(base, "escaped.json"))
	assert.ErrorIs(t, err, os.ErrNotExist, "nothing is written outside the directory")
	assert.Equal(t, 0, s.State().(shared.StoreState).Writes)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := shared.New(shared.Config{Dir: "  "})
	assert.Error(t, err)
}

func TestStore_CanceledContext(t *testing.T) {
	s := newStore(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Set(ctx, "items", []byte("[]")), context.Canceled)
	_, err := s.Get(ctx, "items")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Watch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// Two stores over one directory behave like two instances of the app.
func TestStore_WatchSeesOtherInstance(t *testing.T) {
	dir := t.TempDir()
	watcher := newStore(t, dir)
	writer := newStore(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := watcher.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Set(context.Background(), "items", []byte(`[1]`)))
	require.NoError(t, writer.Set(context.Background(), "items", []byte(`[2]`)))

	deadline := time.After(3 * time.Second)
	for last := ""; last != `[2]`; {
		select {
		case c := <-changes:
			assert.Equal(t, "items", c.Key)
			last = string(c.Value)
		case <-deadline:
			t.Fatal("latest value was never reported")
		}
	}

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	select {
	case c := <-changes:
		t.Errorf("unexpected change for %s", c.Key)
	case <-time.After(200 * time.Millisecond):
	}

	assert.Equal(t, 1, watcher.State().(shared.StoreState).Watchers)
	cancel()

	for range changes {
	}
	assert.Eventually(t, func() bool {
		return watcher.State().(shared.StoreState).Watchers == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStore_WatchFeedsSession(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	mine := core.NewService(core.NewStore(newStore(t, dir), ""))
	theirs := core.NewService(core.NewStore(newStore(t, dir), ""))

	s := core.NewSession(mine, nil)
	defer s.Close()
	require.NoError(t, s.Start(ctx))

	_, _, err := theirs.Append(ctx, core.Draft{Content: "hello from the other window"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		notes := s.Notes()
		return len(notes) == 1 && notes[0].Content == "hello from the other window"
	}, 3*time.Second, 20*time.Millisecond)

	_, err = s.Do(ctx, func(ctx context.Context, svc *core.Service) ([]core.Note, error) {
		_, notes, err := svc.Append(ctx, core.Draft{Content: "mine"})
		return notes, err
	})
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	state := s.State().(core.SessionState)
	assert.Equal(t, 1, state.Applied, "own write is not applied as an external change")
	assert.Len(t, s.Notes(), 2)
}

// Back-to-back writes from one instance, mixed with another instance's writes,
// leave the session holding exactly what the directory holds.
func TestStore_SessionFollowsConsecutiveWrites(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	mine := core.NewService(core.NewStore(newStore(t, dir), ""))
	theirs := core.NewService(core.NewStore(newStore(t, dir), ""))

	s := core.NewSession(mine, nil)
	defer s.Close()
	require.NoError(t, s.Start(ctx))

	appendMine := func(content string) core.Action {
		return func(ctx context.Context, svc *core.Service) ([]core.Note, error) {
			_, notes, err := svc.Append(ctx, core.Draft{Content: content})
			return notes, err
		}
	}

	for _, content := range []string{"one", "two", "three"} {
		_, err := s.Do(ctx, appendMine(content))
		require.NoError(t, err)
	}
	_, _, err := theirs.Append(ctx, core.Draft{Content: "theirs"})
	require.NoError(t, err)
	_, err = s.Do(ctx, appendMine("four"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.State().(core.SessionState).Pending == 0
	}, 3*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	stored, err := mine.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	assert.Equal(t, core.IDs(stored), core.IDs(s.Notes()), "session diverged from storage")
}
