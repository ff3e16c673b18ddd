package math

// Vec4 is a 4-component vector, used for homogeneous coordinates and RGBA texels.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 builds a Vec4 from a Vec3 and a w component.
func V4(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Add returns v + other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

// Sub returns v - other.
func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{v.X - other.X, v.Y - other.Y, v.Z - other.Z, v.W - other.W}
}

// Scale returns v * scalar.
func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Lerp linearly interpolates towards other.
func (v Vec4) Lerp(other Vec4, t float64) Vec4 {
	return Vec4{
		Mix(v.X, other.X, t),
		Mix(v.Y, other.Y, t),
		Mix(v.Z, other.Z, t),
		Mix(v.W, other.W, t),
	}
}

// PerspectiveDivide returns xyz / w, or xyz unchanged when w is 0.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.XYZ()
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}
