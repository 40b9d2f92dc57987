// Package vmath holds the few vector helpers the simulation needs on top of
// mgl64: zero-safe normalization, magnitude clamping and yaw rotations.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	Zero = mgl64.Vec3{}
	One  = mgl64.Vec3{1, 1, 1}
	Up   = mgl64.Vec3{0, 1, 0}
)

// Uniform returns a vector with all components set to s.
func Uniform(s float64) mgl64.Vec3 {
	return mgl64.Vec3{s, s, s}
}

// Normalize returns v scaled to unit length, or the zero vector if v has no
// length. mgl64's Normalize divides by zero.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return v.Mul(1 / l)
}

// ClampMag limits the length of v to max, preserving direction.
func ClampMag(v mgl64.Vec3, max float64) mgl64.Vec3 {
	lsq := v.LenSqr()
	if lsq <= max*max || lsq == 0 {
		return v
	}
	return v.Mul(max / math.Sqrt(lsq))
}

// DistSq returns the squared distance between a and b.
func DistSq(a, b mgl64.Vec3) float64 {
	return a.Sub(b).LenSqr()
}

// MaxComponent returns the largest of v's components.
func MaxComponent(v mgl64.Vec3) float64 {
	return math.Max(v[0], math.Max(v[1], v[2]))
}

// AxisAngle builds a rotation of angle radians around axis. A zero axis gives
// the identity.
func AxisAngle(axis mgl64.Vec3, angle float64) mgl64.Quat {
	n := Normalize(axis)
	if n == Zero {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, n)
}

// Yaw builds a rotation of deg degrees around world up.
func Yaw(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), Up)
}

// Integrate advances orientation q by angular velocity w (rad/s) over dt seconds.
func Integrate(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	angle := w.Len() * dt
	if angle == 0 {
		return q
	}
	return AxisAngle(w, angle).Mul(q).Normalize()
}
