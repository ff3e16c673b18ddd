// Package noise implements the tileable procedural noise used to bake cloud
// textures: value noise, Worley cells, 4-D gradient noise and their FBM stacks.
package noise

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// Hash maps an integer lattice index to [0,1).
func Hash(n int) float64 {
	return math.Fract(gomath.Sin(float64(n)+1.951) * 43758.5453123)
}

// ValueNoise is smoothly interpolated lattice noise in [0,1].
func ValueNoise(x math.Vec3) float64 {
	px, py, pz := gomath.Floor(x.X), gomath.Floor(x.Y), gomath.Floor(x.Z)
	fx, fy, fz := x.X-px, x.Y-py, x.Z-pz
	fx = fx * fx * (3 - 2*fx)
	fy = fy * fy * (3 - 2*fy)
	fz = fz * fz * (3 - 2*fz)

	n := int(px + py*57 + 113*pz)
	return math.Mix(
		math.Mix(
			math.Mix(Hash(n), Hash(n+1), fx),
			math.Mix(Hash(n+57), Hash(n+58), fx),
			fy),
		math.Mix(
			math.Mix(Hash(n+113), Hash(n+114), fx),
			math.Mix(Hash(n+170), Hash(n+171), fx),
			fy),
		fz)
}

// featurePoint returns the jitter of the feature point in lattice cell c.
func featurePoint(c math.Vec3) math.Vec3 {
	return math.Vec3{
		X: ValueNoise(c),
		Y: ValueNoise(c.Add(math.Vec3{X: 31})),
		Z: ValueNoise(c.Add(math.Vec3{X: 71})),
	}
}

// Worley returns the squared distance, clamped to [0,1], from p to the nearest
// feature point of a grid with cellCount cells per unit. It tiles over [0,1)³.
func Worley(p math.Vec3, cellCount float64) float64 {
	pCell := p.Scale(cellCount)
	base := math.Vec3{X: gomath.Floor(pCell.X), Y: gomath.Floor(pCell.Y), Z: gomath.Floor(pCell.Z)}
	d := 1e10
	for xo := -1.0; xo <= 1; xo++ {
		for yo := -1.0; yo <= 1; yo++ {
			for zo := -1.0; zo <= 1; zo++ {
				cell := base.Add(math.Vec3{X: xo, Y: yo, Z: zo})
				wrapped := math.Vec3{
					X: math.Mod(cell.X, cellCount),
					Y: math.Mod(cell.Y, cellCount),
					Z: math.Mod(cell.Z, cellCount),
				}
				tp := pCell.Sub(cell).Sub(featurePoint(wrapped))
				d = gomath.Min(d, tp.Dot(tp))
			}
		}
	}
	return math.Saturate(d)
}
