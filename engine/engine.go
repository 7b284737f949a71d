// Package engine runs the viewer's frame loop on the window's thread.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-view/engine/logging"
	"github.com/Carmen-Shannon/oxy-view/engine/profiler"
	"github.com/Carmen-Shannon/oxy-view/engine/viewer"
	"github.com/Carmen-Shannon/oxy-view/engine/window"
)

// ErrMissingComponent is returned by Run when the engine was built without a window or a viewer.
var ErrMissingComponent = errors.New("engine: window and viewer are required")

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	window window.Window
	viewer viewer.Viewer

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameCallback    func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	lastFrame time.Time
	fatal     error
	quitOnce  sync.Once
}

// Engine couples a window to a viewer.
//
// Everything runs on the window's message loop: each iteration updates the viewer, renders one frame and, when
// enabled, ticks the profiler. Scene mutation and GPU submission therefore never run concurrently.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Viewer returns the viewer being driven.
	//
	// Returns:
	//   - viewer.Viewer: the viewer
	Viewer() viewer.Viewer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers a function called after every rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run sizes the viewer to the window and runs the message loop until the window closes.
	//
	// Returns:
	//   - error: the first fatal error, such as an incomplete framebuffer on resize
	Run() error

	// Quit closes the window. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewer() viewer.Viewer {
	return e.viewer
}

func (e *engine) Run() error {
	if e.window == nil || e.viewer == nil {
		return ErrMissingComponent
	}
	if err := e.viewer.Resize(e.window.Width(), e.window.Height()); err != nil {
		return err
	}

	e.window.SetResizeCallback(func(width, height int) {
		if err := e.viewer.Resize(width, height); err != nil {
			e.fail(err)
		}
	})
	e.window.SetUpdateCallback(e.frame)

	e.lastFrame = time.Now()
	e.window.ProcessMessages()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fatal
}

// frame runs one iteration of the loop.
func (e *engine) frame() {
	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now

	e.viewer.Update()
	if err := e.viewer.Render(); err != nil {
		e.fail(err)
		return
	}

	if e.frameCallback != nil {
		e.frameCallback(dt)
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// fail records the first fatal error and stops the loop.
func (e *engine) fail(err error) {
	e.mu.Lock()
	if e.fatal == nil {
		e.fatal = err
		logging.Error("fatal", "err", err)
	}
	e.mu.Unlock()
	e.Quit()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
