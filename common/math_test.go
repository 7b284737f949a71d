package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func assertMat4InDelta(t *testing.T, want, got Mat4) {
	t.Helper()
	for i := range want {
		assert.InDeltaf(t, want[i], got[i], tolerance, "element %d", i)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := Translation4(1, 2, 3).Mul(Scale4(2, 2, 2))
	assertMat4InDelta(t, m, Identity4().Mul(m))
	assertMat4InDelta(t, m, m.Mul(Identity4()))
}

func TestMat4MulOrder(t *testing.T) {
	// translate after scale: the point is scaled first, then moved.
	m := Translation4(10, 0, 0).Mul(Scale4(2, 2, 2))
	p := m.MulPoint(Vec3{1, 1, 1})
	assert.InDelta(t, 12, p[0], tolerance)
	assert.InDelta(t, 2, p[1], tolerance)
	assert.InDelta(t, 2, p[2], tolerance)
}

func TestMat4Inverted(t *testing.T) {
	m := Translation4(3, -4, 5).Mul(QuatFromAxisAngle(30, AxisY).Mat4()).Mul(Scale4(2, 3, 4))
	assertMat4InDelta(t, Identity4(), m.Mul(m.Inverted()))
}

func TestMat4InvertedSingular(t *testing.T) {
	var zero Mat4
	assert.Equal(t, Identity4(), zero.Inverted())
}

func TestPerspectiveDepthRange(t *testing.T) {
	var p Mat4
	Perspective(p[:], Radians(45), 4.0/3.0, 0.1, 1000)

	near := p.MulVec4([4]float32{0, 0, -0.1, 1})
	far := p.MulVec4([4]float32{0, 0, -1000, 1})
	assert.InDelta(t, 0, near[2]/near[3], tolerance)
	assert.InDelta(t, 1, far[2]/far[3], 1e-3)
}

func TestMat4Marshal(t *testing.T) {
	buf := make([]byte, Mat4Size)
	Translation4(1, 2, 3).Marshal(buf)
	// column 3, row 0 holds x translation at element 12.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[12*4:12*4+4])
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(90, AxisY)
	v := q.Rotate(Vec3{1, 0, 0})
	assert.InDelta(t, 0, v[0], tolerance)
	assert.InDelta(t, 0, v[1], tolerance)
	assert.InDelta(t, -1, v[2], tolerance)

	m := q.Mat4().MulPoint(Vec3{1, 0, 0})
	assert.InDelta(t, v[0], m[0], tolerance)
	assert.InDelta(t, v[2], m[2], tolerance)
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(30, AxisZ)
	b := QuatFromAxisAngle(60, AxisZ)
	v := a.Mul(b).Rotate(AxisX)
	assert.InDelta(t, 0, v[0], tolerance)
	assert.InDelta(t, 1, v[1], tolerance)
}

func TestQuatConjugateUndoes(t *testing.T) {
	q := QuatFromAxisAngle(47, Vec3{1, 2, 3})
	v := Vec3{4, 5, 6}
	r := q.Conjugate().Rotate(q.Rotate(v))
	for i := range v {
		assert.InDelta(t, v[i], r[i], 1e-4)
	}
}

func TestQuatFromZeroAxis(t *testing.T) {
	assert.Equal(t, IdentityQuat(), QuatFromAxisAngle(90, Vec3{}))
}

func TestVec3(t *testing.T) {
	assert.Equal(t, AxisZ, AxisX.Cross(AxisY))
	assert.InDelta(t, 5, Vec3{3, 4, 0}.Length(), tolerance)
	assert.InDelta(t, 1, Vec3{3, 4, 12}.Normalized().Length(), tolerance)
	assert.Equal(t, Vec3{}, Vec3{}.Normalized())
}

func TestRadians(t *testing.T) {
	assert.InDelta(t, math32.Pi, Radians(180), tolerance)
}
