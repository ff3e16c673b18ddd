package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// SunDirection converts an azimuth (rotation around +Y, degrees, 0 = +Z) and
// an elevation above the horizon (degrees) to a unit vector pointing at the sun.
func SunDirection(azimuth, elevation float64) math.Vec3 {
	az := math.ToRadians(azimuth)
	el := math.ToRadians(elevation)
	return math.Vec3{
		X: gomath.Cos(el) * gomath.Sin(az),
		Y: gomath.Sin(el),
		Z: gomath.Cos(el) * gomath.Cos(az),
	}
}

// SunDirectionFromOrientation derives the sun direction from a directional
// light whose local -Z axis is its travel direction.
func SunDirectionFromOrientation(orientation math.Quat) math.Vec3 {
	forward := orientation.Normalize().Rotate(math.Vec3{Z: -1})
	return forward.Neg().Normalize()
}

// SunVisibility fades the sun disk across the geometric horizon seen from
// worldPos. It is 0 once the sun is a full angular radius below the horizon.
func (p *Parameters) SunVisibility(worldPos, sunDir math.Vec3) float64 {
	h := gomath.Max(worldPos.Length(), p.BottomRadius)
	up := worldPos.Normalize()
	// Cosine of the horizon's zenith angle, 0 on the ground and negative above it.
	horizonCos := -math.SafeSqrt(1 - (p.BottomRadius*p.BottomRadius)/(h*h))
	sinRadius := gomath.Sin(p.SunAngularRadius)
	return math.SmoothStep(-sinRadius, sinRadius, sunDir.Dot(up)-horizonCos)
}

// SunRadiance is the sun illuminance reaching scene position cameraPos (km,
// sea level at y = 0) after atmospheric transmittance, zero when the sun has
// set.
func (m *Model) SunRadiance(cameraPos, sunDir math.Vec3) math.Vec3 {
	worldPos := cameraPos.Add(math.Vec3{Y: m.params.BottomRadius})
	visibility := m.params.SunVisibility(worldPos, sunDir)
	if visibility <= 0 {
		return math.Vec3{}
	}
	h := worldPos.Length()
	up := worldPos.Scale(1 / h)
	transmittance := m.TransmittanceToSun(h, sunDir.Dot(up))
	return m.params.SunLuminance().Mul(transmittance).Scale(visibility)
}
