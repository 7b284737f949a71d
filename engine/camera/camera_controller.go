package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/input"
)

// Controller mutates a Camera from per-frame input.
type Controller interface {
	// Update applies this frame's input to cam. Call after cam.BeginFrame.
	//
	// Parameters:
	//   - cam: the camera to drive
	//   - in: the input state for this frame
	Update(cam Camera, in input.Manager)

	// TranslateSpeed returns the translation step per frame in world units.
	//
	// Returns:
	//   - float32: translation speed
	TranslateSpeed() float32

	// SlowSpeed returns the translation step used while a control key is held.
	//
	// Returns:
	//   - float32: slow translation speed
	SlowSpeed() float32

	// RotateSpeed returns the look rotation in degrees per pixel of mouse movement.
	//
	// Returns:
	//   - float32: rotation speed
	RotateSpeed() float32
}

// flyController is a free-fly camera: hold the look button, move the mouse to look around,
// and use WASD to move along the view plane and Q/E to move along the camera's up axis.
type flyController struct {
	mu *sync.Mutex

	translateSpeed float32
	slowSpeed      float32
	rotateSpeed    float32
	lookButton     int
}

var _ Controller = &flyController{}

// NewFlyController creates a fly camera controller with translate speed 3, slow speed 1,
// rotate speed 0.5 degrees per pixel, and the right mouse button as the look button.
//
// Parameters:
//   - options: variadic list of ControllerOption functions
//
// Returns:
//   - Controller: the configured controller
func NewFlyController(options ...ControllerOption) Controller {
	fc := &flyController{
		mu:             &sync.Mutex{},
		translateSpeed: 3,
		slowSpeed:      1,
		rotateSpeed:    0.5,
		lookButton:     common.MouseButtonRight,
	}
	for _, opt := range options {
		opt(fc)
	}
	return fc
}

func (fc *flyController) TranslateSpeed() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.translateSpeed
}

func (fc *flyController) SlowSpeed() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.slowSpeed
}

func (fc *flyController) RotateSpeed() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.rotateSpeed
}

func (fc *flyController) Update(cam Camera, in input.Manager) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if !in.ButtonPressed(fc.lookButton) {
		return
	}

	speed := fc.translateSpeed
	if in.KeyPressed(common.KeyLeftControl) || in.KeyPressed(common.KeyRightControl) {
		speed = fc.slowSpeed
	}

	dx, dy := in.MouseDelta()
	cam.Rotate(-fc.rotateSpeed*dx, LocalUp)
	cam.Rotate(-fc.rotateSpeed*dy, cam.Right())

	var move common.Vec3
	if in.KeyPressed(common.KeyW) {
		move = move.Add(cam.Forward())
	}
	if in.KeyPressed(common.KeyS) {
		move = move.Sub(cam.Forward())
	}
	if in.KeyPressed(common.KeyA) {
		move = move.Sub(cam.Right())
	}
	if in.KeyPressed(common.KeyD) {
		move = move.Add(cam.Right())
	}
	if in.KeyPressed(common.KeyE) {
		move = move.Sub(cam.Up())
	}
	if in.KeyPressed(common.KeyQ) {
		move = move.Add(cam.Up())
	}
	cam.Translate(move.Scale(speed))
}
