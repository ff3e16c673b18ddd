package noise

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

func mod289(x float64) float64 {
	return x - gomath.Floor(x/289)*289
}

func permute(x float64) float64 {
	return mod289((x*34 + 1) * x)
}

func taylorInvSqrt(r float64) float64 {
	return 1.79284291400159 - 0.85373472095314*r
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// gradient4 derives a pseudo-random 4-D gradient from a permutation hash.
func gradient4(h float64) [4]float64 {
	gx := h / 7
	gy := gomath.Floor(gx) / 7
	gz := gomath.Floor(gy) / 6
	gx = math.Fract(gx) - 0.5
	gy = math.Fract(gy) - 0.5
	gz = math.Fract(gz) - 0.5
	gw := 0.75 - gomath.Abs(gx) - gomath.Abs(gy) - gomath.Abs(gz)
	if gw <= 0 {
		gx -= math.Step(0, gx) - 0.5
		gy -= math.Step(0, gy) - 0.5
	}
	norm := taylorInvSqrt(gx*gx + gy*gy + gz*gz + gw*gw)
	return [4]float64{gx * norm, gy * norm, gz * norm, gw * norm}
}

// Perlin4D is classic gradient noise, periodic with period rep on each axis.
// The result lies roughly in [-1, 1].
func Perlin4D(p, rep math.Vec4) float64 {
	pos := [4]float64{p.X, p.Y, p.Z, p.W}
	period := [4]float64{rep.X, rep.Y, rep.Z, rep.W}

	var i0, i1, f0 [4]float64
	for k := 0; k < 4; k++ {
		fl := gomath.Floor(pos[k])
		i0[k] = math.Mod(fl, period[k])
		i1[k] = math.Mod(i0[k]+1, period[k])
		f0[k] = pos[k] - fl
	}

	// Corner c has bit k set when it uses i1 on axis k.
	var n [16]float64
	for c := 0; c < 16; c++ {
		var idx, off [4]float64
		for k := 0; k < 4; k++ {
			if c&(1<<k) != 0 {
				idx[k], off[k] = i1[k], f0[k]-1
			} else {
				idx[k], off[k] = i0[k], f0[k]
			}
		}
		h := permute(permute(permute(permute(idx[0])+idx[1])+idx[2]) + idx[3])
		g := gradient4(h)
		n[c] = g[0]*off[0] + g[1]*off[1] + g[2]*off[2] + g[3]*off[3]
	}

	// Collapse axes w, z, y, x in turn.
	size := 16
	for k := 3; k >= 0; k-- {
		t := fade(f0[k])
		half := size / 2
		for c := 0; c < half; c++ {
			n[c] = math.Mix(n[c], n[c+half], t)
		}
		size = half
	}
	return 2.2 * n[0]
}

// PerlinFBM sums octaves of tileable gradient noise over the unit cube,
// starting at frequency and doubling each octave. The result is in [0,1].
func PerlinFBM(p math.Vec3, frequency float64, octaves int) float64 {
	var sum, weightSum float64
	weight := 0.5
	for oct := 0; oct < octaves; oct++ {
		q := math.Vec4{X: p.X * frequency, Y: p.Y * frequency, Z: p.Z * frequency}
		rep := math.Vec4{X: frequency, Y: frequency, Z: frequency, W: frequency}
		sum += Perlin4D(q, rep) * weight
		weightSum += weight
		weight *= weight
		frequency *= 2
	}
	if weightSum == 0 {
		return 0.5
	}
	return math.Saturate(sum/weightSum*0.5 + 0.5)
}
