package atmosphere

import "github.com/Faultbox/skyscatter/pkg/math"

// MediumSampleRGB holds per-species and combined optical coefficients at a point.
type MediumSampleRGB struct {
	Scattering math.Vec3
	Absorption math.Vec3
	Extinction math.Vec3

	ScatteringMie math.Vec3
	AbsorptionMie math.Vec3
	ExtinctionMie math.Vec3

	ScatteringRay math.Vec3
	AbsorptionRay math.Vec3
	ExtinctionRay math.Vec3

	ScatteringOzo math.Vec3
	AbsorptionOzo math.Vec3
	ExtinctionOzo math.Vec3

	Albedo math.Vec3
}

const albedoExtinctionFloor = 0.001

// SampleMediumRGB samples the medium at a planet-centred position.
func (p *Parameters) SampleMediumRGB(worldPos math.Vec3) MediumSampleRGB {
	h := worldPos.Length() - p.BottomRadius

	densityMie := p.MieDensity.Layers[1].Density(h)
	densityRay := p.RayleighDensity.Layers[1].Density(h)
	densityOzo := p.AbsorptionDensity.Density(h)

	var s MediumSampleRGB
	s.ScatteringMie = p.MieScattering.Scale(densityMie)
	s.AbsorptionMie = p.MieAbsorption.Scale(densityMie)
	s.ExtinctionMie = p.MieExtinction.Scale(densityMie)

	s.ScatteringRay = p.RayleighScattering.Scale(densityRay)
	s.ExtinctionRay = s.ScatteringRay

	s.AbsorptionOzo = p.AbsorptionExtinction.Scale(densityOzo)
	s.ExtinctionOzo = s.AbsorptionOzo

	s.Scattering = s.ScatteringMie.Add(s.ScatteringRay).Add(s.ScatteringOzo)
	s.Absorption = s.AbsorptionMie.Add(s.AbsorptionRay).Add(s.AbsorptionOzo)
	s.Extinction = s.ExtinctionMie.Add(s.ExtinctionRay).Add(s.ExtinctionOzo)
	s.Albedo = s.Scattering.Div(s.Extinction.Max(math.Splat3(albedoExtinctionFloor)))
	return s
}
