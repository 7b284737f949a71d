// Package transform holds the translation/rotation/scale state shared by instances, lights and the
// decorative gesture transform, and composes it into model matrices.
package transform

import "github.com/Carmen-Shannon/oxy-view/common"

// Transform is a translation, rotation and scale that composes to T * R * S.
// The zero value is not usable; start from New.
type Transform struct {
	translation common.Vec3
	scale       common.Vec3
	rotation    common.Quat
}

// New returns the identity transform.
func New() Transform {
	return Transform{
		scale:    common.Vec3{1, 1, 1},
		rotation: common.IdentityQuat(),
	}
}

// Translation returns the current translation.
func (t *Transform) Translation() common.Vec3 { return t.translation }

// Scale returns the current per-axis scale.
func (t *Transform) Scale() common.Vec3 { return t.scale }

// Rotation returns the current rotation.
func (t *Transform) Rotation() common.Quat { return t.rotation }

// SetTranslation replaces the translation.
func (t *Transform) SetTranslation(x, y, z float32) {
	t.translation = common.Vec3{x, y, z}
}

// Translate adds d to the translation.
func (t *Transform) Translate(d common.Vec3) {
	t.translation = t.translation.Add(d)
}

// SetScale replaces the scale with a uniform factor.
func (t *Transform) SetScale(s float32) {
	t.scale = common.Vec3{s, s, s}
}

// ScaleBy multiplies the scale uniformly by s.
func (t *Transform) ScaleBy(s float32) {
	t.scale = t.scale.Scale(s)
}

// SetRotation replaces the rotation.
func (t *Transform) SetRotation(q common.Quat) {
	t.rotation = q.Normalized()
}

// Rotate applies a rotation of angleDeg degrees about axis on top of the current rotation.
func (t *Transform) Rotate(angleDeg float32, axis common.Vec3) {
	t.rotation = common.QuatFromAxisAngle(angleDeg, axis).Mul(t.rotation).Normalized()
}

// Matrix composes the transform into a column-major model matrix.
func (t *Transform) Matrix() common.Mat4 {
	return common.Translation4(t.translation[0], t.translation[1], t.translation[2]).
		Mul(t.rotation.Mat4()).
		Mul(common.Scale4(t.scale[0], t.scale[1], t.scale[2]))
}
