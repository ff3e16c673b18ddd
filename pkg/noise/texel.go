package noise

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// worleyOctaves returns 1 - Worley at cellCount·2^i for i in [0, n).
func worleyOctaves(coord math.Vec3, cellCount float64, n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 - Worley(coord, cellCount*float64(int(1)<<i))
	}
	return w
}

// WorleyTexel is the stackable Worley FBM texel used for cloud erosion:
// RGB hold three FBMs of increasing frequency, A is 1.
func WorleyTexel(coord math.Vec3) math.Vec4 {
	w := worleyOctaves(coord, 2, 4)
	return math.Vec4{
		X: w[0]*0.625 + w[1]*0.25 + w[2]*0.125,
		Y: w[1]*0.625 + w[2]*0.25 + w[3]*0.125,
		Z: w[2]*0.75 + w[3]*0.25,
		W: 1,
	}
}

// PerlinWorleyTexel is the base cloud shape texel: R is gradient noise
// dilated by low-frequency Worley FBM, GBA are higher-frequency Worley FBMs.
func PerlinWorleyTexel(coord math.Vec3) math.Vec4 {
	perlin := PerlinFBM(coord, 8, 3)
	w := worleyOctaves(coord, 4, 5)
	worleyFBM := w[0]*0.625 + w[1]*0.25 + w[2]*0.125
	return math.Vec4{
		X: math.Remap(perlin, 0, 1, worleyFBM, 1),
		Y: w[1]*0.625 + w[2]*0.25 + w[3]*0.125,
		Z: w[2]*0.625 + w[3]*0.25 + w[4]*0.125,
		W: w[3]*0.75 + w[4]*0.25,
	}
}

// CurlTexel returns the curl of a tileable gradient-noise potential at uv.
// RG is the unit curl direction remapped to [0,1], B its magnitude squashed to [0,1).
func CurlTexel(uv math.Vec2, period float64) math.Vec4 {
	const eps = 1e-3
	potential := func(x, y float64) float64 {
		q := math.Vec4{X: x * period, Y: y * period}
		return Perlin4D(q, math.Vec4{X: period, Y: period, Z: period, W: period})
	}
	dx := (potential(uv.X+eps, uv.Y) - potential(uv.X-eps, uv.Y)) / (2 * eps)
	dy := (potential(uv.X, uv.Y+eps) - potential(uv.X, uv.Y-eps)) / (2 * eps)
	curl := math.Vec2{X: dy, Y: -dx}
	mag := curl.Length()
	dir := curl.Normalize()
	return math.Vec4{
		X: dir.X*0.5 + 0.5,
		Y: dir.Y*0.5 + 0.5,
		Z: mag / (1 + mag),
		W: 1,
	}
}

// WeatherParams shapes the weather map.
type WeatherParams struct {
	Amplitude float64
	Frequency float64
	// Scale times Frequency, rounded, is the number of noise cells across the map.
	Scale   float64
	Octaves int
}

// DefaultWeatherParams returns the stock weather settings.
func DefaultWeatherParams() WeatherParams {
	return WeatherParams{Amplitude: 0.5, Frequency: 0.8, Scale: 10, Octaves: 4}
}

// period returns the tiling period of the base octave.
func (w WeatherParams) period() float64 {
	return gomath.Max(1, gomath.Round(w.Scale*w.Frequency))
}

func (w WeatherParams) fbm(uv math.Vec2, layer float64) float64 {
	period := w.period()
	amplitude := w.Amplitude
	var sum float64
	for oct := 0; oct < w.Octaves; oct++ {
		q := math.Vec4{X: uv.X * period, Y: uv.Y * period, W: layer}
		sum += amplitude * Perlin4D(q, math.Vec4{X: period, Y: period, Z: period, W: 289})
		amplitude *= 0.5
		period *= 2
	}
	return math.Saturate(0.5 + sum)
}

// Texel returns the weather texel at uv: R coverage, G cloud type, B wetness.
func (w WeatherParams) Texel(uv math.Vec2) math.Vec4 {
	return math.Vec4{
		X: w.fbm(uv, 0),
		Y: w.fbm(uv, 17),
		Z: w.fbm(uv, 43),
		W: 1,
	}
}
