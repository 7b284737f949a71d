package engine

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-view/engine/renderer/target"
	"github.com/Carmen-Shannon/oxy-view/engine/viewer"
	"github.com/Carmen-Shannon/oxy-view/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	window.Window

	width, height int
	iterations    int
	resizeTo      [2]int

	onUpdate func()
	onResize func(int, int)
	closed   bool
}

func (w *fakeWindow) Width() int                          { return w.width }
func (w *fakeWindow) Height() int                         { return w.height }
func (w *fakeWindow) SetUpdateCallback(cb func())         { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(int, int)) { w.onResize = cb }
func (w *fakeWindow) RequestClose()                       { w.closed = true }

func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.iterations && !w.closed; i++ {
		if i == 1 && w.resizeTo != [2]int{} {
			w.onResize(w.resizeTo[0], w.resizeTo[1])
			if w.closed {
				return
			}
		}
		w.onUpdate()
	}
}

type fakeViewer struct {
	viewer.Viewer

	sizes     [][2]int
	updates   int
	renders   int
	resizeErr error
	renderErr error
}

func (v *fakeViewer) Resize(w, h int) error {
	v.sizes = append(v.sizes, [2]int{w, h})
	if len(v.sizes) > 1 {
		return v.resizeErr
	}
	return nil
}

func (v *fakeViewer) Update() { v.updates++ }

func (v *fakeViewer) Render() error {
	v.renders++
	return v.renderErr
}

func TestRunDrivesViewer(t *testing.T) {
	w := &fakeWindow{width: 800, height: 600, iterations: 5, resizeTo: [2]int{1024, 768}}
	v := &fakeViewer{}
	frames := 0
	e := NewEngine(WithWindow(w), WithViewer(v))
	e.SetFrameCallback(func(float32) { frames++ })

	require.NoError(t, e.Run())
	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, v.sizes)
	assert.Equal(t, 5, v.updates)
	assert.Equal(t, 5, v.renders)
	assert.Equal(t, 5, frames)
}

func TestResizeFailureIsFatal(t *testing.T) {
	fbErr := &target.FramebufferError{Framebuffer: "gbuffer", Status: target.StatusIncompleteAttachment}
	w := &fakeWindow{width: 800, height: 600, iterations: 5, resizeTo: [2]int{10, 10}}
	v := &fakeViewer{resizeErr: fbErr}
	e := NewEngine(WithWindow(w), WithViewer(v))

	err := e.Run()
	var got *target.FramebufferError
	require.ErrorAs(t, err, &got)
	assert.ErrorIs(t, err, target.ErrIncompleteAttachment)
	assert.True(t, w.closed)
	assert.Equal(t, 1, v.renders)
}

func TestRenderFailureStopsLoop(t *testing.T) {
	boom := errors.New("device lost")
	w := &fakeWindow{width: 800, height: 600, iterations: 5}
	v := &fakeViewer{renderErr: boom}
	e := NewEngine(WithWindow(w), WithViewer(v))

	assert.ErrorIs(t, e.Run(), boom)
	assert.Equal(t, 1, v.renders)
}

func TestRunRequiresComponents(t *testing.T) {
	assert.ErrorIs(t, NewEngine().Run(), ErrMissingComponent)
}
