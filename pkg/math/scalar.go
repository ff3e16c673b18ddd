package math

import "math"

// Clamp restricts x to [lo, hi]. NaN maps to lo.
func Clamp(x, lo, hi float64) float64 {
	if !(x > lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Saturate clamps x to [0, 1].
func Saturate(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Mix linearly interpolates between a and b.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SmoothStep is the GLSL smoothstep.
func SmoothStep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Step returns 0 when x < edge, 1 otherwise.
func Step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// Remap maps x from [lo, hi] to [newLo, newHi] without clamping.
// A degenerate source range collapses to newLo.
func Remap(x, lo, hi, newLo, newHi float64) float64 {
	d := hi - lo
	if math.Abs(d) < 1e-9 {
		return newLo
	}
	return newLo + (x-lo)*(newHi-newLo)/d
}

// Fract returns x - floor(x).
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Mod returns the GLSL mod, x - y*floor(x/y), which is always of y's sign.
func Mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

// SafeSqrt returns sqrt(max(x, 0)).
func SafeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(x, 0))
}

// ClampCos clamps a cosine to [-1, 1].
func ClampCos(x float64) float64 {
	return Clamp(x, -1, 1)
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
