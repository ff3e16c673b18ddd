package scattering

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
)

const (
	bloomStrength = 0.02
	bloomSigma    = 2.0
)

// sunDiskProfile is the relative disk radiance at angle from the sun centre.
func sunDiskProfile(angle, radius float64, bloom bool) float64 {
	x := angle / radius
	disk := 1 - math.SmoothStep(0.9, 1, x)
	if !bloom {
		return disk
	}
	gauss := gomath.Exp(-x * x / (2 * bloomSigma * bloomSigma))
	inverse := 1 / (1 + x*x)
	halo := math.Mix(gauss, inverse, math.SmoothStep(1, 4, x)) * bloomStrength
	return disk + (1-disk)*halo
}

// GetSunLuminance is the radiance of the sun disk seen from worldPos
// (planet-centred) along dir, attenuated by the atmosphere. It is zero when
// the planet blocks the view.
func (m *Model) GetSunLuminance(worldPos, dir, sunDir math.Vec3) math.Vec3 {
	params := m.atmo.Params()
	h := gomath.Max(worldPos.Length(), params.BottomRadius+atmosphere.PlanetRadiusOffset)
	up := worldPos.Normalize()
	origin := up.Scale(h)
	if atmosphere.RaySphereIntersectNearest(atmosphere.Ray{Origin: origin, Direction: dir}, math.Vec3{}, params.BottomRadius).Valid {
		return math.Vec3{}
	}

	angle := gomath.Acos(math.ClampCos(dir.Dot(sunDir)))
	profile := sunDiskProfile(angle, params.SunAngularRadius, m.settings.BloomSunDisk)
	if profile <= 0 {
		return math.Vec3{}
	}
	// Disk radiance integrates to the sun illuminance over its solid angle.
	solidAngle := 2 * gomath.Pi * (1 - gomath.Cos(params.SunAngularRadius))
	transmittance := m.atmo.TransmittanceToSun(h, sunDir.Dot(up))
	return params.SunLuminance().Mul(transmittance).Scale(profile / solidAngle)
}

// SunColor is the sun illuminance reaching the camera, used to light clouds.
func (m *Model) SunColor(sunDir math.Vec3) math.Vec3 {
	return m.atmo.SunRadiance(m.atmo.Camera().Position, sunDir)
}
