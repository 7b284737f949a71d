package watcher

import "time"

// WatcherBuilderOption is a functional option applied to a watcher during construction via New.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets how long a file must stay unchanged before Drain reports it. Defaults to 200ms.
//
// Parameters:
//   - d: the quiet interval
//
// Returns:
//   - WatcherBuilderOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		w.debounce = d
	}
}

// WithErrorHandler sets the callback for errors reported by the OS watcher. It runs on the watch goroutine.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - WatcherBuilderOption: a function that applies the handler option to a watcher
func WithErrorHandler(fn func(error)) WatcherBuilderOption {
	return func(w *watcher) {
		w.onError = fn
	}
}

// withClock replaces the time source, for tests.
func withClock(now func() time.Time) WatcherBuilderOption {
	return func(w *watcher) {
		w.now = now
	}
}
