package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jarredhawkins/linestruct/internal/config"
)

type batch struct {
	changed, removed []string
}

func collect(ch chan<- batch) ChangeHandler {
	return func(changed, removed []string) {
		ch <- batch{changed: changed, removed: removed}
	}
}

func waitBatch(t *testing.T, ch <-chan batch) batch {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return batch{}
	}
}

func TestDebouncerBatches(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.py")
	require.NoError(t, os.WriteFile(kept, []byte("x\n"), 0644))
	gone := filepath.Join(dir, "gone.py")

	d := NewDebouncer(20 * time.Millisecond)
	ch := make(chan batch, 4)

	d.Add(kept, fsnotify.Create)
	d.Flush(collect(ch))
	d.Add(kept, fsnotify.Write)
	d.Add(gone, fsnotify.Remove)
	d.Flush(collect(ch))

	b := waitBatch(t, ch)
	assert.Equal(t, []string{kept}, b.changed)
	assert.Equal(t, []string{gone}, b.removed)

	d.Stop()
	assert.Empty(t, ch, "only one batch expected")
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDebouncer(time.Hour)
	d.Add("/nowhere.py", fsnotify.Remove)
	d.Flush(func(changed, removed []string) {
		t.Error("callback must not run after Stop")
	})
	d.Stop()

	// Flushes after Stop are ignored
	d.Flush(func(changed, removed []string) {
		t.Error("callback must not run after Stop")
	})
}

func TestWatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	ch := make(chan batch, 8)
	w, err := New(root, collect(ch), Options{
		Filter:   config.DefaultConfig().Filter(),
		Debounce: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	// Excluded and non-matching files never reach the handler
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "x.py"), []byte("x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x\n"), 0644))

	mod := filepath.Join(root, "pkg", "mod.py")
	require.NoError(t, os.WriteFile(mod, []byte("def f():\n"), 0644))

	b := waitBatch(t, ch)
	assert.Equal(t, []string{mod}, b.changed)
	assert.Empty(t, b.removed)

	require.NoError(t, os.Remove(mod))
	b = waitBatch(t, ch)
	assert.Empty(t, b.changed)
	assert.Equal(t, []string{mod}, b.removed)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatcherNewDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	ch := make(chan batch, 8)
	w, err := New(root, collect(ch), Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	// Give the event loop a moment to add the directory watch
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "a.py")
	require.NoError(t, os.WriteFile(file, []byte("x\n"), 0644))

	b := waitBatch(t, ch)
	assert.Contains(t, b.changed, file)
}
