package common

import "github.com/chewxy/math32"

// Quat is a rotation quaternion. The zero value is not a valid rotation; use IdentityQuat.
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat returns the quaternion representing no rotation.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a rotation of angleDeg degrees about axis.
// The axis does not need to be normalized.
//
// Parameters:
//   - angleDeg: rotation angle in degrees
//   - axis: rotation axis
//
// Returns:
//   - Quat: the unit quaternion for the rotation, or the identity when axis is zero
func QuatFromAxisAngle(angleDeg float32, axis Vec3) Quat {
	n := axis.Normalized()
	if n.Length() == 0 {
		return IdentityQuat()
	}
	half := Radians(angleDeg) / 2
	s := math32.Sin(half)
	return Quat{X: n[0] * s, Y: n[1] * s, Z: n[2] * s, W: math32.Cos(half)}
}

// Mul returns q * o, the rotation o followed by q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y + q.Y*o.W + q.Z*o.X - q.X*o.Z,
		Z: q.W*o.Z + q.Z*o.W + q.X*o.Y - q.Y*o.X,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Normalized returns q scaled to unit length.
func (q Quat) Normalized() Quat {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Rotate returns v rotated by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Mat4 returns the rotation matrix for q.
func (q Quat) Mat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	m := Identity4()
	m[0] = 1 - 2*(y*y+z*z)
	m[1] = 2 * (x*y + z*w)
	m[2] = 2 * (x*z - y*w)

	m[4] = 2 * (x*y - z*w)
	m[5] = 1 - 2*(x*x+z*z)
	m[6] = 2 * (y*z + x*w)

	m[8] = 2 * (x*z + y*w)
	m[9] = 2 * (y*z - x*w)
	m[10] = 1 - 2*(x*x+y*y)
	return m
}
