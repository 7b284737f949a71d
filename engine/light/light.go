// Package light manages point lights rendered as additive light volumes.
package light

import (
	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/google/uuid"
)

// DefaultRadius is the attenuation radius of a light created without one.
const DefaultRadius float32 = 10

// pointLight is the implementation of the PointLight interface.
type pointLight struct {
	id       uuid.UUID
	position common.Vec3
	previous common.Vec3
	radius   float32
	color    [3]float32
	started  bool
}

// PointLight is a light that emits in all directions from a position, attenuating to zero at its radius.
//
// The radius also scales the light-volume mesh, so the volume covers exactly the pixels the light can reach.
type PointLight interface {
	// ID returns the unique identifier of the light.
	//
	// Returns:
	//   - uuid.UUID: the identifier
	ID() uuid.UUID

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - common.Vec3: position as (x, y, z)
	Position() common.Vec3

	// PreviousPosition returns the position captured by the last BeginFrame.
	//
	// Returns:
	//   - common.Vec3: position as (x, y, z)
	PreviousPosition() common.Vec3

	// Radius returns the attenuation radius.
	//
	// Returns:
	//   - float32: the radius
	Radius() float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRadius sets the attenuation radius. Non-positive values are ignored.
	//
	// Parameters:
	//   - radius: the radius
	SetRadius(radius float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// BeginFrame captures the current position as the previous one.
	BeginFrame()
}

var _ PointLight = &pointLight{}

// NewPointLight creates a white PointLight at the origin with DefaultRadius and any provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - PointLight: a new PointLight instance
func NewPointLight(opts ...LightBuilderOption) PointLight {
	l := &pointLight{
		id:     uuid.New(),
		radius: DefaultRadius,
		color:  [3]float32{1, 1, 1},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *pointLight) ID() uuid.UUID {
	return l.id
}

func (l *pointLight) Position() common.Vec3 {
	return l.position
}

func (l *pointLight) PreviousPosition() common.Vec3 {
	if !l.started {
		return l.position
	}
	return l.previous
}

func (l *pointLight) Radius() float32 {
	return l.radius
}

func (l *pointLight) Color() [3]float32 {
	return l.color
}

func (l *pointLight) SetPosition(x, y, z float32) {
	l.position = common.Vec3{x, y, z}
}

func (l *pointLight) SetRadius(radius float32) {
	if radius > 0 {
		l.radius = radius
	}
}

func (l *pointLight) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *pointLight) BeginFrame() {
	l.previous = l.position
	l.started = true
}

// gpu builds the upload record of the light for the given view matrix.
func (l *pointLight) gpu(view common.Mat4) GPUPointLight {
	model := common.Translation4(l.position[0], l.position[1], l.position[2]).
		Mul(common.Scale4(l.radius, l.radius, l.radius))
	vp := view.MulPoint(l.position)
	return GPUPointLight{
		Model:        model,
		ViewPosition: [3]float32(vp),
		Radius:       l.radius,
		Color:        l.color,
	}
}
