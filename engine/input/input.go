// Package input collects raw window events between frames and exposes them as per-frame state:
// key and button states, mouse delta, pinch/pan gestures and touch points.
package input

import "sync"

// KeyState is the per-frame state of a key or mouse button.
type KeyState int

const (
	// StateInvalid means the key is not held.
	StateInvalid KeyState = iota
	// StateTriggered means the key went down since the previous frame.
	StateTriggered
	// StatePressed means the key has been held for more than one frame.
	StatePressed
	// StateReleased means the key went up since the previous frame.
	StateReleased
)

// TouchState is the phase of a touch point.
type TouchState int

const (
	TouchPressed TouchState = iota
	TouchMoved
	TouchStationary
	TouchReleased
)

// PinchGesture reports the scale and rotation change of a two-finger pinch over one frame.
type PinchGesture struct {
	ScaleFactor       float32
	RotationAngle     float32
	LastRotationAngle float32
}

// PanGesture reports the translation delta of a pan over one frame.
type PanGesture struct {
	DeltaX, DeltaY float32
}

// TouchPoint is a single tracked touch.
type TouchPoint struct {
	ID           int
	X, Y         float32
	LastX, LastY float32
	State        TouchState
}

// Manager is the input service read once per frame by the viewer.
// Window callbacks feed it through the Handle* methods; Update promotes the buffered events into frame state.
type Manager interface {
	// KeyPressed reports whether key is held this frame (triggered or pressed).
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true while the key is down
	KeyPressed(key int) bool

	// KeyTriggered reports whether key went down since the previous frame.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true only on the first frame the key is down
	KeyTriggered(key int) bool

	// ButtonPressed reports whether a mouse button is held this frame.
	//
	// Parameters:
	//   - button: a common.MouseButton* code
	//
	// Returns:
	//   - bool: true while the button is down
	ButtonPressed(button int) bool

	// MouseDelta returns the cursor movement since the previous frame in pixels.
	//
	// Returns:
	//   - dx, dy: cursor delta
	MouseDelta() (dx, dy float32)

	// Pinch returns the pinch gesture of this frame, if any.
	//
	// Returns:
	//   - PinchGesture: scale and rotation change
	//   - bool: false when no pinch happened this frame
	Pinch() (PinchGesture, bool)

	// Pan returns the pan gesture of this frame, if any.
	//
	// Returns:
	//   - PanGesture: translation delta
	//   - bool: false when no pan happened this frame
	Pan() (PanGesture, bool)

	// TouchCount returns the number of active touch points.
	//
	// Returns:
	//   - int: active touch count
	TouchCount() int

	// Touch returns the touch point at index i.
	//
	// Parameters:
	//   - i: index in [0, TouchCount())
	//
	// Returns:
	//   - TouchPoint: the touch point
	Touch(i int) TouchPoint

	// HandleKey records a key transition.
	HandleKey(key int, down bool)

	// HandleButton records a mouse button transition.
	HandleButton(button int, down bool)

	// HandleCursor records the absolute cursor position.
	HandleCursor(x, y float64)

	// HandleScroll records a scroll wheel step. The wheel is reported as a pinch scale.
	HandleScroll(dx, dy float64)

	// HandlePan records a pan delta.
	HandlePan(dx, dy float32)

	// HandleTouch records a touch point update.
	HandleTouch(id int, x, y float32, state TouchState)

	// Update promotes the events buffered since the previous call into the state returned by the query methods.
	// Call once at the start of every frame.
	Update()
}

type manager struct {
	mu *sync.Mutex

	keys    map[int]KeyState
	buttons map[int]KeyState

	pendingKeys    map[int]bool
	pendingButtons map[int]bool

	cursorX, cursorY float64
	lastX, lastY     float64
	cursorSeen       bool
	deltaX, deltaY   float32

	pendingScale float32
	pendingPan   PanGesture
	hasPan       bool

	pinch    PinchGesture
	hasPinch bool
	pan      PanGesture
	panThis  bool

	touches        []TouchPoint
	pendingTouches map[int]TouchPoint
}

var _ Manager = &manager{}

// NewManager creates an empty input manager.
//
// Returns:
//   - Manager: the manager
func NewManager() Manager {
	return &manager{
		mu:             &sync.Mutex{},
		keys:           make(map[int]KeyState),
		buttons:        make(map[int]KeyState),
		pendingKeys:    make(map[int]bool),
		pendingButtons: make(map[int]bool),
		pendingScale:   1,
		pendingTouches: make(map[int]TouchPoint),
	}
}

func (m *manager) KeyPressed(key int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.keys[key]
	return s == StateTriggered || s == StatePressed
}

func (m *manager) KeyTriggered(key int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key] == StateTriggered
}

func (m *manager) ButtonPressed(button int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.buttons[button]
	return s == StateTriggered || s == StatePressed
}

func (m *manager) MouseDelta() (float32, float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deltaX, m.deltaY
}

func (m *manager) Pinch() (PinchGesture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pinch, m.hasPinch
}

func (m *manager) Pan() (PanGesture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pan, m.panThis
}

func (m *manager) TouchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.touches)
}

func (m *manager) Touch(i int) TouchPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touches[i]
}

func (m *manager) HandleKey(key int, down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingKeys[key] = down
}

func (m *manager) HandleButton(button int, down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingButtons[button] = down
}

func (m *manager) HandleCursor(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cursorSeen {
		m.lastX, m.lastY = x, y
		m.cursorSeen = true
	}
	m.cursorX, m.cursorY = x, y
}

func (m *manager) HandleScroll(_, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingScale *= 1 + float32(dy)*0.1
}

func (m *manager) HandlePan(dx, dy float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingPan.DeltaX += dx
	m.pendingPan.DeltaY += dy
	m.hasPan = true
}

func (m *manager) HandleTouch(id int, x, y float32, state TouchState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tp, ok := m.pendingTouches[id]
	if !ok {
		tp = TouchPoint{ID: id, X: x, Y: y}
	}
	tp.LastX, tp.LastY = tp.X, tp.Y
	tp.X, tp.Y = x, y
	tp.State = state
	m.pendingTouches[id] = tp
}

func (m *manager) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	advance(m.keys, m.pendingKeys)
	advance(m.buttons, m.pendingButtons)
	clear(m.pendingKeys)
	clear(m.pendingButtons)

	m.deltaX = float32(m.cursorX - m.lastX)
	m.deltaY = float32(m.cursorY - m.lastY)
	m.lastX, m.lastY = m.cursorX, m.cursorY

	m.hasPinch = m.pendingScale != 1
	m.pinch = PinchGesture{ScaleFactor: m.pendingScale}
	m.pendingScale = 1

	m.pan, m.panThis = m.pendingPan, m.hasPan
	m.pendingPan, m.hasPan = PanGesture{}, false

	m.touches = m.touches[:0]
	for id, tp := range m.pendingTouches {
		m.touches = append(m.touches, tp)
		if tp.State == TouchReleased {
			delete(m.pendingTouches, id)
			continue
		}
		tp.LastX, tp.LastY = tp.X, tp.Y
		tp.State = TouchStationary
		m.pendingTouches[id] = tp
	}
}

// advance moves every tracked key one frame forward and applies the buffered transitions.
func advance(states map[int]KeyState, pending map[int]bool) {
	for k, s := range states {
		switch s {
		case StateTriggered:
			states[k] = StatePressed
		case StateReleased:
			delete(states, k)
		}
	}
	for k, down := range pending {
		s := states[k]
		switch {
		case down && s != StatePressed && s != StateTriggered:
			states[k] = StateTriggered
		case !down && (s == StatePressed || s == StateTriggered):
			states[k] = StateReleased
		}
	}
}
