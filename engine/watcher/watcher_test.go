package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainReportsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\n"), 0o644))

	w, err := New(WithDebounce(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Watch(path))

	_, ok := w.Drain()
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("v 1 1 1\n"), 0o644))
	var got string
	require.Eventually(t, func() bool {
		p, ok := w.Drain()
		got = p
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	want, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, ok = w.Drain()
	assert.False(t, ok)
}

func TestIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := New(WithDebounce(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Watch(path))

	ww := w.(*watcher)
	ww.handle(fsnotify.Event{Name: filepath.Join(ww.dir, "other.obj"), Op: fsnotify.Write})
	_, ok := w.Drain()
	assert.False(t, ok)
}

func TestDebounceWaitsForQuiet(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(0, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	w, err := New(WithDebounce(time.Second), withClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Watch(path))

	ww := w.(*watcher)
	ww.handle(fsnotify.Event{Name: ww.target, Op: fsnotify.Write})
	advance(500 * time.Millisecond)
	_, ok := w.Drain()
	assert.False(t, ok)

	advance(600 * time.Millisecond)
	_, ok = w.Drain()
	assert.True(t, ok)
}

func TestWatchAfterClose(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(filepath.Join(t.TempDir(), "x.obj")), ErrClosed)
}
