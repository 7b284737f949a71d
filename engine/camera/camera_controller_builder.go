package camera

// ControllerOption is a functional option for configuring a fly Controller.
type ControllerOption func(*flyController)

// WithTranslateSpeed sets the per-frame translation step.
//
// Parameters:
//   - speed: world units per frame
//
// Returns:
//   - ControllerOption: functional option to set the translate speed
func WithTranslateSpeed(speed float32) ControllerOption {
	return func(fc *flyController) {
		fc.translateSpeed = speed
	}
}

// WithSlowSpeed sets the translation step used while control is held.
//
// Parameters:
//   - speed: world units per frame
//
// Returns:
//   - ControllerOption: functional option to set the slow speed
func WithSlowSpeed(speed float32) ControllerOption {
	return func(fc *flyController) {
		fc.slowSpeed = speed
	}
}

// WithRotateSpeed sets the look rotation in degrees per pixel.
//
// Parameters:
//   - speed: degrees per pixel of mouse movement
//
// Returns:
//   - ControllerOption: functional option to set the rotate speed
func WithRotateSpeed(speed float32) ControllerOption {
	return func(fc *flyController) {
		fc.rotateSpeed = speed
	}
}

// WithLookButton sets the mouse button that must be held for the controller to act.
//
// Parameters:
//   - button: a common.MouseButton* code
//
// Returns:
//   - ControllerOption: functional option to set the look button
func WithLookButton(button int) ControllerOption {
	return func(fc *flyController) {
		fc.lookButton = button
	}
}
