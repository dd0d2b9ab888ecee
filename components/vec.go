package components

import "math"

// Vec3 is a 3D float32 vector. All simulation math runs in float32; the
// float64 round-trips through the math package are confined to the few
// functions that need them.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// LenSq returns the squared length (avoid sqrt in hot paths).
func (v Vec3) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len returns the length.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.LenSq())))
}

// Normalized returns the unit vector in v's direction, or the zero vector
// when v is too short to normalize safely.
func (v Vec3) Normalized() Vec3 {
	lenSq := v.LenSq()
	if lenSq < 1e-12 {
		return Vec3{}
	}
	inv := 1 / float32(math.Sqrt(float64(lenSq)))
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// IsZero reports whether all three axes are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Up is the world up axis (Y positive toward the surface).
var Up = Vec3{0, 1, 0}
