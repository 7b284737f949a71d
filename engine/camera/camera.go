package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-view/common"
)

// LocalUp is the world up axis used for yaw rotation of the fly camera.
var LocalUp = common.AxisY

// pose is the rigid part of the camera: where it is and where it faces.
type pose struct {
	translation common.Vec3
	rotation    common.Quat
}

// viewMatrix returns the world-to-view matrix for the pose.
func (p pose) viewMatrix() common.Mat4 {
	return p.rotation.Conjugate().Mat4().
		Mul(common.Translation4(-p.translation[0], -p.translation[1], -p.translation[2]))
}

type cameraImpl struct {
	mu *sync.Mutex

	current  pose
	previous pose
	started  bool

	fov    float32
	aspect float32
	near   float32
	far    float32

	width  int
	height int

	projectionMatrix common.Mat4

	controller Controller
}

// Camera holds the current and previous-frame camera transform plus the perspective projection.
// The previous transform is the current transform as it was when BeginFrame last ran, which is what the
// velocity channel and motion blur reproject against.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Viewport returns the viewport size last set with SetViewport.
	//
	// Returns:
	//   - width, height: viewport size in pixels
	Viewport() (width, height int)

	// SetViewport records the viewport size and updates the aspect ratio and projection.
	// Sizes <= 0 are ignored.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	SetViewport(width, height int)

	// Position returns the current world-space camera position.
	//
	// Returns:
	//   - common.Vec3: camera position
	Position() common.Vec3

	// SetPosition moves the camera to an absolute position.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetPosition(x, y, z float32)

	// Rotation returns the current camera orientation.
	//
	// Returns:
	//   - common.Quat: camera orientation
	Rotation() common.Quat

	// Translate moves the camera by d in world space.
	//
	// Parameters:
	//   - d: world-space offset
	Translate(d common.Vec3)

	// Rotate turns the camera by angleDeg degrees about a world-space axis.
	//
	// Parameters:
	//   - angleDeg: rotation angle in degrees
	//   - axis: rotation axis
	Rotate(angleDeg float32, axis common.Vec3)

	// Forward returns the direction the camera faces.
	Forward() common.Vec3

	// Right returns the camera's right vector.
	Right() common.Vec3

	// Up returns the camera's up vector.
	Up() common.Vec3

	// ViewMatrix returns the current world-to-view matrix.
	//
	// Returns:
	//   - common.Mat4: the view matrix
	ViewMatrix() common.Mat4

	// PreviousViewMatrix returns the world-to-view matrix captured by the last BeginFrame.
	//
	// Returns:
	//   - common.Mat4: the previous frame's view matrix
	PreviousViewMatrix() common.Mat4

	// ProjectionMatrix returns the current perspective projection.
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// BeginFrame copies the current transform into the previous-frame slot.
	// Must run once per frame, before input mutates the camera.
	BeginFrame()

	// Uniform builds the shared per-frame uniform payload from the current and previous transforms.
	//
	// Parameters:
	//   - ambient: ambient light color (rgba)
	//
	// Returns:
	//   - GPUGlobalUniform: the uniform block contents
	Uniform(ambient [4]float32) GPUGlobalUniform

	// Controller returns the attached Controller, or nil.
	//
	// Returns:
	//   - Controller: the attached controller or nil
	Controller() Controller
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at the origin facing -Z with a 45 degree field of view, near 0.1 and far 1000.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:      &sync.Mutex{},
		current: pose{rotation: common.IdentityQuat()},
		fov:     common.Radians(45),
		aspect:  1,
		near:    0.1,
		far:     1000,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.near <= 0 || c.far <= c.near {
		panic("camera: near must be > 0 and far must be > near")
	}
	c.previous = c.current
	c.updateProjection()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Viewport() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.aspect = float32(width) / float32(height)
	c.updateProjection()
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.translation
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.translation = common.Vec3{x, y, z}
}

func (c *cameraImpl) Rotation() common.Quat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.rotation
}

func (c *cameraImpl) Translate(d common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.translation = c.current.translation.Add(d)
}

func (c *cameraImpl) Rotate(angleDeg float32, axis common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.rotation = common.QuatFromAxisAngle(angleDeg, axis).Mul(c.current.rotation).Normalized()
}

func (c *cameraImpl) Forward() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.rotation.Rotate(common.Vec3{0, 0, -1})
}

func (c *cameraImpl) Right() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.rotation.Rotate(common.AxisX)
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.rotation.Rotate(common.AxisY)
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.viewMatrix()
}

func (c *cameraImpl) PreviousViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previous.viewMatrix()
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) BeginFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.previous = c.current
	c.started = true
}

func (c *cameraImpl) Uniform(ambient [4]float32) GPUGlobalUniform {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.previous
	if !c.started {
		prev = c.current
	}

	view := c.current.viewMatrix()
	prevView := prev.viewMatrix()
	viewProj := c.projectionMatrix.Mul(view)
	prevViewProj := c.projectionMatrix.Mul(prevView)

	return GPUGlobalUniform{
		View:                  view,
		Projection:            c.projectionMatrix,
		ViewProjection:        viewProj,
		InvView:               view.Inverted(),
		InvProjection:         c.projectionMatrix.Inverted(),
		InvViewProjection:     viewProj.Inverted(),
		PrevView:              prevView,
		PrevViewProjection:    prevViewProj,
		PrevInvView:           prevView.Inverted(),
		PrevInvViewProjection: prevViewProj.Inverted(),
		Ambient:               ambient,
		Far:                   c.far,
		Near:                  c.near,
		DepthDiff:             c.far - c.near,
		Width:                 float32(c.width),
		Height:                float32(c.height),
	}
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

// updateProjection recalculates the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
}
