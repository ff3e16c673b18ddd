package clouds

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
)

const (
	maxFog          = 0.965
	alphaThreshold  = 0.2
	bloomScale      = 1.3
	bloomAlphaLimit = 0.1
)

var glareColor = math.Vec3{X: 1, Y: 0.4, Z: 0.2}

// Bounds is the marched segment of a camera ray through the cloud layer.
type Bounds struct {
	Start math.Vec3
	End   math.Vec3
	// Fog is the point the horizon fog is measured to.
	Fog math.Vec3
}

// MarchBounds clips r (scene km) against the cloud shells. It returns false
// when the ray never enters the layer.
func (m *Model) MarchBounds(r atmosphere.Ray) (Bounds, bool) {
	h := r.Origin.Sub(m.center).Length()
	ground := atmosphere.RaySphereIntersectNearest(r, m.center, m.bottomRadius)

	switch {
	case h < m.innerRadius:
		inner, _, n := atmosphere.RaySphereIntersect(r, m.center, m.innerRadius, ground, true)
		if n == 0 {
			return Bounds{}, false
		}
		outer, _, n := atmosphere.RaySphereIntersect(r, m.center, m.outerRadius, ground, true)
		if n == 0 {
			return Bounds{}, false
		}
		return Bounds{Start: inner.Point, End: outer.Point, Fog: inner.Point}, true

	case h < m.outerRadius:
		b := Bounds{Start: r.Origin, Fog: r.Origin}
		outer := atmosphere.RaySphereIntersectNearest(r, m.center, m.outerRadius)
		b.End = outer.Point
		if inner := atmosphere.RaySphereIntersectNearest(r, m.center, m.innerRadius); inner.Valid && (!outer.Valid || inner.T < outer.T) {
			b.End = inner.Point
			b.Fog = inner.Point
		}
		return b, outer.Valid

	default:
		near, far, n := atmosphere.RaySphereIntersect(r, m.center, m.outerRadius, atmosphere.Intersection{}, false)
		if n == 0 {
			return Bounds{}, false
		}
		b := Bounds{Start: near.Point, End: near.Point, Fog: near.Point}
		if n == 2 {
			b.End = far.Point
		}
		if inner := atmosphere.RaySphereIntersectNearest(r, m.center, m.innerRadius); inner.Valid {
			b.End = inner.Point
		}
		return b, true
	}
}

func threshold(v, t float64) float64 {
	if v > t {
		return v
	}
	return 0
}

var noCloud = math.Vec4{X: -1, Y: -1, Z: -1, W: -1}

// ApplyClouds composites the clouds seen through pixel (fragX, fragY) of a
// target of targetSize pixels over bg. colour carries the cloud alpha in W,
// emission the sun bloom layer and distance.X the camera distance to the
// first cloud sample, or -1 when there is none.
func (m *Model) ApplyClouds(fragX, fragY int, targetSize math.Vec2, bg math.Vec4, sunDir math.Vec3) (colour, emission, distance math.Vec4) {
	cam := m.scattering.Atmosphere().Camera()
	pix := math.Vec2{X: float64(fragX) + 0.5, Y: float64(fragY) + 0.5}.Mul(cam.Viewport.Div(targetSize))
	r := atmosphere.Ray{Origin: cam.Position, Direction: cam.ScreenToDirection(pix)}
	sunColor := m.scattering.SunColor(sunDir)

	bounds, ok := m.MarchBounds(r)
	if !ok {
		return math.V4(bg.XYZ(), 0), bg, noCloud
	}
	fogAmount := m.ComputeFogAmount(bounds.Fog, cam.Position, m.params.FogFactor)
	if fogAmount > maxFog {
		return math.V4(bg.XYZ(), 0), bg, noCloud
	}

	march := m.RaymarchToCloud(bounds.Start, bounds.End, bg.XYZ(), fragX, fragY, sunColor, sunDir)
	v := march.Color
	cloudAlpha := threshold(v.W, alphaThreshold)

	rgb := v.XYZ().Scale(1.8).Sub(math.Splat3(0.1 * v.W))
	rgb = rgb.Lerp(bg.XYZ().Scale(v.W), math.Saturate(fogAmount))
	sun := math.Saturate(sunDir.Dot(bounds.End.Sub(bounds.Start).Normalize()))
	rgb = rgb.Add(glareColor.Scale(0.8 * gomath.Pow(sun, 256) * v.W))
	colour = math.V4(bg.XYZ().Scale(1-v.W).Add(rgb), cloudAlpha)

	bloom := sunColor.Scale(bloomScale)
	if cloudAlpha > bloomAlphaLimit {
		bloomFog := m.ComputeFogAmount(bounds.Start, cam.Position, m.params.FogFactor*0.5)
		cloud := bloom.Scale(math.Saturate(bloomFog))
		bloom = bloom.Scale(1 - cloudAlpha).Add(cloud)
	}
	emission = math.V4(bloom, 1)

	distance = noCloud
	if march.Entered {
		distance = math.Vec4{X: cam.Position.Distance(march.CloudPos)}
	}
	return colour, emission, distance
}
