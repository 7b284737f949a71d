// Package watcher reports changes to the model file on disk.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher: closed")

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu *sync.Mutex

	fs       *fsnotify.Watcher
	debounce time.Duration
	now      func() time.Time
	onError  func(error)

	dir     string
	target  string
	pending bool
	last    time.Time

	done   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

// Watcher watches one file. It watches the parent directory so that editors which save by replacing the file
// are still seen.
//
// Events are collected on a background goroutine. The render thread polls with Drain, which never blocks, so a
// reload always runs on the thread that owns the GPU.
type Watcher interface {
	// Watch switches to path, dropping any pending change of the previous file.
	//
	// Parameters:
	//   - path: the file to watch
	//
	// Returns:
	//   - error: ErrClosed, or an error adding the directory watch
	Watch(path string) error

	// Drain reports a change of the watched file that has been quiet for the debounce interval, then clears it.
	//
	// Returns:
	//   - string: the changed path
	//   - bool: whether a change was pending
	Drain() (string, bool)

	// Close stops watching.
	//
	// Returns:
	//   - error: an error from the underlying watcher
	Close() error
}

var _ Watcher = &watcher{}

// New starts a Watcher that watches nothing until Watch is called.
//
// Parameters:
//   - options: a variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the watcher
//   - error: an error creating the OS watch handle
func New(options ...WatcherBuilderOption) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		mu:       &sync.Mutex{},
		fs:       fsw,
		debounce: 200 * time.Millisecond,
		now:      time.Now,
		onError:  func(error) {},
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(e)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.onError(err)
		case <-w.done:
			return
		}
	}
}

func (w *watcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.target == "" || filepath.Clean(e.Name) != w.target {
		return
	}
	w.pending = true
	w.last = w.now()
}

func (w *watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if dir != w.dir {
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		if err := w.fs.Add(dir); err != nil {
			w.dir, w.target = "", ""
			return err
		}
		w.dir = dir
	}
	w.target = abs
	w.pending = false
	return nil
}

func (w *watcher) Drain() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || w.now().Sub(w.last) < w.debounce {
		return "", false
	}
	w.pending = false
	return w.target, true
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}
