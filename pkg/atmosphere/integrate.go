package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// segmentIntegral returns ∫₀^dt s·e^{-σt} dt = (s - s·e^{-σΔt})/σ per channel,
// falling back to s·dt where σ vanishes.
func segmentIntegral(s, extinction math.Vec3, dt float64) math.Vec3 {
	f := func(s, sigma float64) float64 {
		if sigma < 1e-9 {
			return s * dt
		}
		return s * -gomath.Expm1(-sigma*dt) / sigma
	}
	return math.Vec3{
		X: f(s.X, extinction.X),
		Y: f(s.Y, extinction.Y),
		Z: f(s.Z, extinction.Z),
	}
}

// rayLength returns the marched distance and the ground hit, or false when
// the ray misses both the planet and the atmosphere.
func (m *Model) rayLength(pixPos math.Vec2, r Ray, depthBufferValue, tMaxMax float64) (float64, Intersection, bool) {
	var center math.Vec3
	tBottom := RaySphereIntersectNearest(r, center, m.params.BottomRadius)
	tTop := RaySphereIntersectNearest(r, center, m.params.TopRadius)
	// A ray leaving the surface touches the ground only at its own origin.
	if tBottom.Valid && tBottom.T < 1e-6 && r.Direction.Dot(r.Origin) >= 0 {
		tBottom = Intersection{}
	}

	var tMax float64
	switch {
	case !tBottom.Valid && !tTop.Valid:
		return 0, tBottom, false
	case !tBottom.Valid:
		tMax = tTop.T
	case !tTop.Valid:
		tMax = tBottom.T
	default:
		tMax = gomath.Min(tTop.T, tBottom.T)
	}

	if m.camera != nil && depthBufferValue >= 0 && depthBufferValue < 1 {
		scenePos := m.camera.WorldPos(depthBufferValue, pixPos)
		sceneOrigin := r.Origin.Sub(math.Vec3{Y: m.params.BottomRadius})
		if tDepth := scenePos.Distance(sceneOrigin); tDepth < tMax {
			tMax = tDepth
		}
	}
	return gomath.Min(tMax, tMaxMax), tBottom, true
}

// TransmittanceToSun looks up the transmittance LUT. Without a bound LUT it is zero.
func (m *Model) TransmittanceToSun(viewHeight, sunZenithCos float64) math.Vec3 {
	if m.transmittance == nil {
		return math.Vec3{}
	}
	return m.transmittance.Sample(m.params.TransmittanceParamsToUV(viewHeight, sunZenithCos)).XYZ()
}

// MultiScattering looks up the multi-scattering LUT. Without a bound LUT it is zero.
func (m *Model) MultiScattering(viewHeight, sunZenithCos float64) math.Vec3 {
	if m.multiScatter == nil {
		return math.Vec3{}
	}
	res, _ := m.multiScatter.Size()
	return m.multiScatter.Sample(m.params.MultiScatteringParamsToUV(viewHeight, sunZenithCos, float64(res))).XYZ()
}

// IntegrateScatteredLuminance ray-marches r (planet-centred) through the
// atmosphere. sampleCountIni is used when the variable sample count is off.
// depthBufferValue in [0,1) clips the ray against the bound camera's scene
// depth; pass -1 to ignore it. tMaxMax caps the marched distance.
func (m *Model) IntegrateScatteredLuminance(pixPos math.Vec2, r Ray, sunDir math.Vec3, sampleCountIni, depthBufferValue, tMaxMax float64) SingleScatteringResult {
	var result SingleScatteringResult
	tMax, tBottom, ok := m.rayLength(pixPos, r, depthBufferValue, tMaxMax)
	if !ok || tMax <= 0 {
		return result
	}

	sampleCount := gomath.Max(sampleCountIni, 1)
	floorCount := sampleCount
	tMaxFloor := tMax
	if m.settings.VariableSampleCount {
		sampleCount = math.Mix(m.params.RayMarchMinSPP, m.params.RayMarchMaxSPP, math.Saturate(tMax*0.01))
		floorCount = gomath.Max(gomath.Floor(sampleCount), 1)
		tMaxFloor = tMax * floorCount / sampleCount
	}

	cosTheta := sunDir.Dot(r.Direction)
	miePhase := HenyeyGreensteinPhase(m.params.MiePhaseFunctionG, cosTheta)
	rayPhase := RayleighPhase(cosTheta)

	globalL := m.params.SunLuminance()
	if m.settings.IlluminanceIsOne {
		globalL = math.Splat3(1)
	}

	var L math.Vec3
	throughput := math.Splat3(1)
	var t float64
	for s := 0.0; s < sampleCount; s++ {
		var dt float64
		t, dt = m.step(s, sampleCount, floorCount, tMax, tMaxFloor, t)
		p := r.Step(t)

		medium := m.params.SampleMediumRGB(p)
		sampleOpticalDepth := medium.Extinction.Scale(dt)
		sampleTransmittance := sampleOpticalDepth.Neg().Exp()
		result.OpticalDepth = result.OpticalDepth.Add(sampleOpticalDepth)

		pHeight := p.Length()
		up := p.Scale(1 / pHeight)
		sunZenithCos := sunDir.Dot(up)
		transmittanceToSun := m.TransmittanceToSun(pHeight, sunZenithCos)
		phaseTimesScattering := m.phase(&medium, miePhase, rayPhase)

		earthShadow := 1.0
		if RaySphereIntersectNearest(Ray{Origin: p, Direction: sunDir}, up.Scale(PlanetRadiusOffset), m.params.BottomRadius).Valid {
			earthShadow = 0
		}
		if m.settings.Shadows {
			earthShadow *= m.shadows.Visibility(p)
		}

		var multiScattered math.Vec3
		if m.settings.MultiScatApprox {
			multiScattered = m.MultiScattering(pHeight, sunZenithCos)
		}

		S := globalL.Mul(transmittanceToSun.Mul(phaseTimesScattering).Scale(earthShadow).
			Add(multiScattered.Mul(medium.Scattering)))

		result.MultiScatAs1 = result.MultiScatAs1.Add(m.multiScatAccum(throughput, medium.Scattering, medium.Extinction, dt))

		step0 := transmittanceToSun.Mul(medium.Scattering).Scale(earthShadow * UniformPhase)
		result.NewMultiScatStep0Out = result.NewMultiScatStep0Out.Add(throughput.Mul(segmentIntegral(step0, medium.Extinction, dt)))
		step1 := medium.Scattering.Mul(multiScattered).Scale(UniformPhase)
		result.NewMultiScatStep1Out = result.NewMultiScatStep1Out.Add(throughput.Mul(segmentIntegral(step1, medium.Extinction, dt)))

		L = L.Add(throughput.Mul(segmentIntegral(S, medium.Extinction, dt)))
		throughput = throughput.Mul(sampleTransmittance)
	}

	if m.settings.UseGround && tBottom.Valid && tBottom.T > 0 && tMax == tBottom.T {
		p := r.Step(tMax)
		pHeight := p.Length()
		up := p.Scale(1 / pHeight)
		sunZenithCos := sunDir.Dot(up)
		transmittanceToSun := m.TransmittanceToSun(pHeight, sunZenithCos)
		NdotL := math.Saturate(up.Dot(sunDir))
		L = L.Add(globalL.Mul(transmittanceToSun).Mul(throughput).Mul(m.params.GroundAlbedo).Scale(NdotL / gomath.Pi))
	}

	result.Luminance = L
	result.Transmittance = throughput
	return result
}

// MoveToTopAtmosphere advances a ray that starts above the atmosphere to just
// inside its top boundary. It returns false when the atmosphere is missed.
func (m *Model) MoveToTopAtmosphere(r Ray) (Ray, bool) {
	viewHeight := r.Origin.Length()
	if viewHeight <= m.params.TopRadius {
		return r, true
	}
	top := RaySphereIntersectNearest(r, math.Vec3{}, m.params.TopRadius)
	if !top.Valid {
		return r, false
	}
	up := top.Point.Normalize()
	return Ray{Origin: top.Point.Sub(up.Scale(PlanetRadiusOffset)), Direction: r.Direction}, true
}
