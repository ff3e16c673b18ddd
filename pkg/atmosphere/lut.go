package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// FromUnitToSubUVs maps u in [0,1] onto texel centres of a res-wide texture,
// so 0 and 1 land on the first and last texel centres.
func FromUnitToSubUVs(u, res float64) float64 {
	return 0.5/res + u*(res-1)/res
}

// FromSubUVsToUnit is the inverse of FromUnitToSubUVs.
func FromSubUVsToUnit(u, res float64) float64 {
	return (u - 0.5/res) * res / (res - 1)
}

// TransmittanceParamsToUV maps (viewHeight, viewZenithCos) to transmittance LUT coordinates.
func (p *Parameters) TransmittanceParamsToUV(viewHeight, viewZenithCos float64) math.Vec2 {
	bottom2 := p.BottomRadius * p.BottomRadius
	H := math.SafeSqrt(p.TopRadius*p.TopRadius - bottom2)
	rho := math.SafeSqrt(viewHeight*viewHeight - bottom2)

	discriminant := viewHeight*viewHeight*(viewZenithCos*viewZenithCos-1) + p.TopRadius*p.TopRadius
	d := gomath.Max(0, -viewHeight*viewZenithCos+math.SafeSqrt(discriminant))

	dMin := p.TopRadius - viewHeight
	dMax := rho + H
	xMu := (d - dMin) / (dMax - dMin)
	xR := rho / H
	return math.Vec2{X: xMu, Y: xR}
}

// UVToTransmittanceParams is the inverse of TransmittanceParamsToUV.
func (p *Parameters) UVToTransmittanceParams(uv math.Vec2) (viewHeight, viewZenithCos float64) {
	bottom2 := p.BottomRadius * p.BottomRadius
	H := math.SafeSqrt(p.TopRadius*p.TopRadius - bottom2)
	rho := H * uv.Y
	viewHeight = gomath.Sqrt(rho*rho + bottom2)

	dMin := p.TopRadius - viewHeight
	dMax := rho + H
	d := dMin + uv.X*(dMax-dMin)
	if d == 0 {
		return viewHeight, 1
	}
	viewZenithCos = math.ClampCos((H*H - rho*rho - d*d) / (2 * viewHeight * d))
	return viewHeight, viewZenithCos
}

// horizonAngles returns beta, the angle between the zenith-opposite and the
// horizon tangent, and the zenith angle of the horizon, for a viewer at viewHeight.
func (p *Parameters) horizonAngles(viewHeight float64) (beta, zenithHorizonAngle float64) {
	vHorizon := math.SafeSqrt(viewHeight*viewHeight - p.BottomRadius*p.BottomRadius)
	cosBeta := math.ClampCos(vHorizon / viewHeight)
	beta = gomath.Acos(cosBeta)
	return beta, gomath.Pi - beta
}

// SkyViewParamsToUV maps view and light angles to sky-view LUT coordinates for a
// LUT of the given size. The V axis splits at the horizon.
func (p *Parameters) SkyViewParamsToUV(intersectGround bool, viewZenithCos, lightViewCos, viewHeight float64, size math.Vec2) math.Vec2 {
	beta, zenithHorizonAngle := p.horizonAngles(viewHeight)
	viewZenithAngle := gomath.Acos(math.ClampCos(viewZenithCos))

	var v float64
	if !intersectGround {
		coord := viewZenithAngle / zenithHorizonAngle
		coord = 1 - coord
		coord = math.SafeSqrt(coord)
		coord = 1 - coord
		v = coord * 0.5
	} else {
		coord := (viewZenithAngle - zenithHorizonAngle) / beta
		coord = math.SafeSqrt(coord)
		v = coord*0.5 + 0.5
	}

	u := math.SafeSqrt(-math.ClampCos(lightViewCos)*0.5 + 0.5)
	return math.Vec2{
		X: FromUnitToSubUVs(u, size.X),
		Y: FromUnitToSubUVs(v, size.Y),
	}
}

// UVToSkyViewParams is the inverse of SkyViewParamsToUV.
func (p *Parameters) UVToSkyViewParams(uv math.Vec2, viewHeight float64, size math.Vec2) (viewZenithCos, lightViewCos float64) {
	uv = math.Vec2{X: FromSubUVsToUnit(uv.X, size.X), Y: FromSubUVsToUnit(uv.Y, size.Y)}
	beta, zenithHorizonAngle := p.horizonAngles(viewHeight)

	if uv.Y < 0.5 {
		coord := 1 - 2*uv.Y
		coord = 1 - coord*coord
		viewZenithCos = gomath.Cos(zenithHorizonAngle * coord)
	} else {
		coord := uv.Y*2 - 1
		coord *= coord
		viewZenithCos = gomath.Cos(zenithHorizonAngle + beta*coord)
	}

	coord := uv.X * uv.X
	lightViewCos = -(coord*2 - 1)
	return viewZenithCos, lightViewCos
}

// SkyViewIntersectsGround reports whether a view with the given zenith cosine
// from viewHeight falls below the horizon.
func (p *Parameters) SkyViewIntersectsGround(viewZenithCos, viewHeight float64) bool {
	_, zenithHorizonAngle := p.horizonAngles(viewHeight)
	return gomath.Acos(math.ClampCos(viewZenithCos)) > zenithHorizonAngle
}

// MultiScatteringParamsToUV maps (viewHeight, sunZenithCos) to coordinates in
// a square multi-scattering LUT of side res.
func (p *Parameters) MultiScatteringParamsToUV(viewHeight, sunZenithCos, res float64) math.Vec2 {
	u := math.Saturate(sunZenithCos*0.5 + 0.5)
	v := math.Saturate((viewHeight - p.BottomRadius) / (p.TopRadius - p.BottomRadius))
	return math.Vec2{X: FromUnitToSubUVs(u, res), Y: FromUnitToSubUVs(v, res)}
}
