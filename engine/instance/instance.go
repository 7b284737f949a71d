// Package instance manages groups of drawables that share a mesh and differ by transform and material.
package instance

import (
	"github.com/Carmen-Shannon/oxy-view/common"
	"github.com/Carmen-Shannon/oxy-view/engine/transform"
	"github.com/google/uuid"
)

// Material is the Blinn-Phong surface description of an instance.
type Material struct {
	Diffuse  [3]float32
	Specular [3]float32
	Exponent float32
}

// DefaultMaterial is white and fully diffuse.
func DefaultMaterial() Material {
	return Material{
		Diffuse:  [3]float32{1, 1, 1},
		Specular: [3]float32{0, 0, 0},
		Exponent: 1,
	}
}

// Instance is one placement of a group's mesh. It holds the current transform and the model matrix captured at
// the start of the frame, which the G-buffer pass needs for per-pixel velocity.
type Instance struct {
	id uuid.UUID

	// Transform is the current placement. Mutate it freely between frames.
	Transform transform.Transform

	// Material is uploaded with the instance every frame.
	Material Material

	previous common.Mat4
	started  bool
}

func newInstance() *Instance {
	return &Instance{
		id:        uuid.New(),
		Transform: transform.New(),
		Material:  DefaultMaterial(),
	}
}

// ID returns the unique identifier of the instance.
func (i *Instance) ID() uuid.UUID { return i.id }

// CurrentMatrix returns the current model matrix.
func (i *Instance) CurrentMatrix() common.Mat4 { return i.Transform.Matrix() }

// PreviousMatrix returns the model matrix captured by the last BeginFrame. Before the first BeginFrame it equals
// the current matrix.
func (i *Instance) PreviousMatrix() common.Mat4 {
	if !i.started {
		return i.Transform.Matrix()
	}
	return i.previous
}

// BeginFrame captures the current model matrix as the previous one.
func (i *Instance) BeginFrame() {
	i.previous = i.Transform.Matrix()
	i.started = true
}

// gpu builds the upload record of the instance for the given view matrices.
func (i *Instance) gpu(view, prevView common.Mat4) GPUInstance {
	model := i.CurrentMatrix()
	prevModel := i.PreviousMatrix()
	m := i.Material
	return GPUInstance{
		Model:         model,
		PrevModel:     prevModel,
		ModelView:     view.Mul(model),
		PrevModelView: prevView.Mul(prevModel),
		Diffuse:       [4]float32{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], 1},
		Specular:      [4]float32{m.Specular[0], m.Specular[1], m.Specular[2], m.Exponent},
	}
}
