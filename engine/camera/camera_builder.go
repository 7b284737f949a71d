package camera

import "github.com/Carmen-Shannon/oxy-view/common"

type CameraBuilderOption func(*cameraImpl)

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithViewport sets the initial viewport size, which also sets the aspect ratio.
//
// Parameters:
//   - width, height: viewport size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width <= 0 || height <= 0 {
			return
		}
		c.width, c.height = width, height
		c.aspect = float32(width) / float32(height)
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithPosition sets the initial camera position.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.current.translation = common.Vec3{x, y, z}
	}
}

// WithController attaches a Controller that drives the camera from input each frame.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: a function that sets the controller
func WithController(ctrl Controller) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
