package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLifecycle(t *testing.T) {
	m := NewManager()

	m.HandleKey(common.KeyO, true)
	assert.False(t, m.KeyPressed(common.KeyO), "events are not visible before Update")

	m.Update()
	assert.True(t, m.KeyTriggered(common.KeyO))
	assert.True(t, m.KeyPressed(common.KeyO))

	m.Update()
	assert.False(t, m.KeyTriggered(common.KeyO))
	assert.True(t, m.KeyPressed(common.KeyO))

	m.HandleKey(common.KeyO, false)
	m.Update()
	assert.False(t, m.KeyPressed(common.KeyO))

	m.Update()
	assert.False(t, m.KeyPressed(common.KeyO))
}

func TestButtonState(t *testing.T) {
	m := NewManager()
	m.HandleButton(common.MouseButtonRight, true)
	m.Update()
	assert.True(t, m.ButtonPressed(common.MouseButtonRight))
	assert.False(t, m.ButtonPressed(common.MouseButtonLeft))
}

func TestMouseDelta(t *testing.T) {
	m := NewManager()
	m.HandleCursor(100, 100)
	m.Update()
	dx, dy := m.MouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	m.HandleCursor(110, 95)
	m.Update()
	dx, dy = m.MouseDelta()
	assert.Equal(t, float32(10), dx)
	assert.Equal(t, float32(-5), dy)

	m.Update()
	dx, dy = m.MouseDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestScrollBecomesPinch(t *testing.T) {
	m := NewManager()
	m.Update()
	_, ok := m.Pinch()
	assert.False(t, ok)

	m.HandleScroll(0, 1)
	m.Update()
	p, ok := m.Pinch()
	require.True(t, ok)
	assert.InDelta(t, 1.1, p.ScaleFactor, 1e-6)
}

func TestPanIsPerFrame(t *testing.T) {
	m := NewManager()
	m.HandlePan(2, 3)
	m.HandlePan(1, 1)
	m.Update()
	p, ok := m.Pan()
	require.True(t, ok)
	assert.Equal(t, PanGesture{DeltaX: 3, DeltaY: 4}, p)

	m.Update()
	_, ok = m.Pan()
	assert.False(t, ok)
}

func TestTouchTracking(t *testing.T) {
	m := NewManager()
	m.HandleTouch(7, 10, 10, TouchPressed)
	m.Update()
	require.Equal(t, 1, m.TouchCount())
	assert.Equal(t, TouchPressed, m.Touch(0).State)

	m.HandleTouch(7, 15, 12, TouchMoved)
	m.Update()
	tp := m.Touch(0)
	assert.Equal(t, TouchMoved, tp.State)
	assert.Equal(t, float32(10), tp.LastX)
	assert.Equal(t, float32(15), tp.X)

	m.HandleTouch(7, 15, 12, TouchReleased)
	m.Update()
	assert.Equal(t, 1, m.TouchCount())
	m.Update()
	assert.Equal(t, 0, m.TouchCount())
}
