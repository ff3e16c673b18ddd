package bake

import (
	"context"
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

const (
	transmittanceSamples = 40
	multiScatterSamples  = 20
	skyViewSamples       = 30

	// farDistance caps LUT rays; it only needs to exceed any atmosphere chord.
	farDistance = 9000000.0

	// multiScatterWorkgroup lanes each integrate one direction of an
	// 8x8 grid over the sphere.
	multiScatterWorkgroup = 64
	multiScatterSqrt      = 8
)

// texelUV returns the centre of texel (x, y) in a w x h texture.
func texelUV(x, y, w, h int) math.Vec2 {
	return math.Vec2{X: (float64(x) + 0.5) / float64(w), Y: (float64(y) + 0.5) / float64(h)}
}

// dispatch2D runs fn over every texel, one pool task per row.
func dispatch2D(ctx context.Context, d *Dispatcher, w, h int, fn func(x, y int)) error {
	return d.Rows(ctx, h, func(y int) {
		for x := 0; x < w; x++ {
			fn(x, y)
		}
	})
}

// TransmittanceModel builds the integrator configuration of the
// transmittance bake: fixed sample count, no LUTs.
func TransmittanceModel(params atmosphere.Parameters) (*atmosphere.Model, error) {
	return atmosphere.NewModel(params, atmosphere.Settings{})
}

// TransmittanceTexel integrates the transmittance to the top of the
// atmosphere for the height and zenith cosine encoded by uv.
func TransmittanceTexel(m *atmosphere.Model, uv math.Vec2) math.Vec4 {
	viewHeight, viewZenithCos := m.Params().UVToTransmittanceParams(uv)
	r := atmosphere.Ray{
		Origin:    math.Vec3{Y: viewHeight},
		Direction: math.Vec3{X: math.SafeSqrt(1 - viewZenithCos*viewZenithCos), Y: viewZenithCos},
	}
	ss := m.IntegrateScatteredLuminance(math.Vec2{}, r, r.Direction, transmittanceSamples, -1, farDistance)
	return math.V4(ss.OpticalDepth.Neg().Exp(), 1)
}

// BakeTransmittance fills a width x height transmittance LUT.
func BakeTransmittance(ctx context.Context, d *Dispatcher, params atmosphere.Parameters, width, height int) (*texture.Texture2D, error) {
	m, err := TransmittanceModel(params)
	if err != nil {
		return nil, err
	}
	lut := texture.NewTexture2D(width, height, texture.Clamp)
	err = dispatch2D(ctx, d, width, height, func(x, y int) {
		lut.Set(x, y, TransmittanceTexel(m, texelUV(x, y, width, height)))
	})
	if err != nil {
		return nil, err
	}
	return lut, nil
}

// MultiScatterModel builds the integrator configuration of the
// multi-scattering bake: unit illuminance and ground bounce, reading the
// transmittance LUT. powerSerie pairs plain MultiScatAs1 accumulation with
// an explicit four-term series; otherwise the closed form 1/(1-r) is used.
func MultiScatterModel(params atmosphere.Parameters, transmittance atmosphere.Sampler2D, powerSerie bool) (*atmosphere.Model, error) {
	return atmosphere.NewModel(params, atmosphere.Settings{
		IlluminanceIsOne:    true,
		UseGround:           true,
		MultiScatPowerSerie: powerSerie,
	}, atmosphere.WithTransmittance(transmittance))
}

// multiScatterCell returns the view position and sun direction texel (x, y)
// of a res x res multi-scattering LUT stands for.
func multiScatterCell(p *atmosphere.Parameters, x, y, res int) (origin, sunDir math.Vec3) {
	uv := texelUV(x, y, res, res)
	u := math.Saturate(atmosphere.FromSubUVsToUnit(uv.X, float64(res)))
	v := math.Saturate(atmosphere.FromSubUVsToUnit(uv.Y, float64(res)))

	sunZenithCos := u*2 - 1
	sunDir = math.Vec3{X: math.SafeSqrt(1 - sunZenithCos*sunZenithCos), Y: sunZenithCos}
	viewHeight := gomath.Max(p.BottomRadius+v*(p.TopRadius-p.BottomRadius), p.BottomRadius+atmosphere.PlanetRadiusOffset)
	return math.Vec3{Y: viewHeight}, sunDir
}

// multiScatterDirection returns the direction integrated by a workgroup lane.
func multiScatterDirection(lane int) math.Vec3 {
	i := 0.5 + float64(lane/multiScatterSqrt)
	j := 0.5 + float64(lane%multiScatterSqrt)
	theta := 2 * gomath.Pi * i / multiScatterSqrt
	phi := gomath.Acos(1 - 2*j/multiScatterSqrt)
	sinPhi := gomath.Sin(phi)
	return math.Vec3{X: gomath.Cos(theta) * sinPhi, Y: gomath.Cos(phi), Z: gomath.Sin(theta) * sinPhi}
}

// multiScatterLane integrates one lane's direction, weighted by its share
// of the sphere's solid angle.
func multiScatterLane(m *atmosphere.Model, origin, sunDir math.Vec3, lane int) (luminance, multiScatAs1 math.Vec3) {
	r := atmosphere.Ray{Origin: origin, Direction: multiScatterDirection(lane)}
	ss := m.IntegrateScatteredLuminance(math.Vec2{}, r, sunDir, multiScatterSamples, -1, farDistance)
	const weight = 4 * gomath.Pi / multiScatterWorkgroup
	return ss.Luminance.Scale(weight), ss.MultiScatAs1.Scale(weight)
}

// combineMultiScatter turns the sphere integrals into the stored texel by
// summing every scattering order.
func combineMultiScatter(m *atmosphere.Model, luminance, multiScatAs1 math.Vec3) math.Vec4 {
	inScattered := luminance.Scale(atmosphere.UniformPhase)
	r := multiScatAs1.Scale(atmosphere.UniformPhase)

	var orders math.Vec3
	if m.Settings().MultiScatPowerSerie {
		r2 := r.Mul(r)
		orders = math.Splat3(1).Add(r).Add(r2).Add(r2.Mul(r))
	} else {
		orders = math.Splat3(1).Div(math.Splat3(1).Sub(r))
	}
	return math.V4(inScattered.Mul(orders).Scale(m.Params().MultipleScatteringFactor), 1)
}

// MultiScatterTexel computes texel (x, y) sequentially. It is the reference
// for the workgroup reduction BakeMultiScatter performs.
func MultiScatterTexel(m *atmosphere.Model, x, y, res int) math.Vec4 {
	origin, sunDir := multiScatterCell(m.Params(), x, y, res)
	var luminance, multiScatAs1 math.Vec3
	for lane := 0; lane < multiScatterWorkgroup; lane++ {
		l, as1 := multiScatterLane(m, origin, sunDir, lane)
		luminance = luminance.Add(l)
		multiScatAs1 = multiScatAs1.Add(as1)
	}
	return combineMultiScatter(m, luminance, multiScatAs1)
}

// multiScatterWorkgroupTexel computes texel (x, y) on 64 lanes that reduce
// their results through shared arrays, halving the active lanes between
// barriers.
func multiScatterWorkgroupTexel(m *atmosphere.Model, x, y, res int) math.Vec4 {
	origin, sunDir := multiScatterCell(m.Params(), x, y, res)
	var shared struct {
		luminance    [multiScatterWorkgroup]math.Vec3
		multiScatAs1 [multiScatterWorkgroup]math.Vec3
	}
	RunWorkgroup(multiScatterWorkgroup, func(lane int, barrier *Barrier) {
		shared.luminance[lane], shared.multiScatAs1[lane] = multiScatterLane(m, origin, sunDir, lane)
		barrier.Wait()
		for active := multiScatterWorkgroup / 2; active > 0; active /= 2 {
			if lane < active {
				shared.luminance[lane] = shared.luminance[lane].Add(shared.luminance[lane+active])
				shared.multiScatAs1[lane] = shared.multiScatAs1[lane].Add(shared.multiScatAs1[lane+active])
			}
			barrier.Wait()
		}
	})
	return combineMultiScatter(m, shared.luminance[0], shared.multiScatAs1[0])
}

// BakeMultiScatter fills a res x res multi-scattering LUT. Each texel is one
// pool task running a 64-lane workgroup.
func BakeMultiScatter(ctx context.Context, d *Dispatcher, params atmosphere.Parameters, transmittance atmosphere.Sampler2D, res int, powerSerie bool) (*texture.Texture2D, error) {
	if transmittance == nil {
		return nil, missing("transmittance")
	}
	m, err := MultiScatterModel(params, transmittance, powerSerie)
	if err != nil {
		return nil, err
	}
	lut := texture.NewTexture2D(res, res, texture.Clamp)
	err = d.Rows(ctx, res*res, func(i int) {
		x, y := i%res, i/res
		lut.Set(x, y, multiScatterWorkgroupTexel(m, x, y, res))
	})
	if err != nil {
		return nil, err
	}
	return lut, nil
}

// SkyViewModel builds the integrator configuration of the sky-view and
// aerial-perspective bakes.
func SkyViewModel(params atmosphere.Parameters, transmittance, multiScatter atmosphere.Sampler2D, cam *atmosphere.CameraData) (*atmosphere.Model, error) {
	options := []atmosphere.Option{
		atmosphere.WithTransmittance(transmittance),
		atmosphere.WithMultiScattering(multiScatter),
	}
	if cam != nil {
		options = append(options, atmosphere.WithCamera(cam))
	}
	return atmosphere.NewModel(params, atmosphere.Settings{
		VariableSampleCount: true,
		MieRayPhase:         true,
		MultiScatApprox:     true,
	}, options...)
}

// SkyViewTexel integrates the sky seen from cameraPos (planet-centred) in
// the direction texel uv of a size-texel LUT encodes. Directions are built
// in a local frame whose up is +Y with the sun in the XY plane.
func SkyViewTexel(m *atmosphere.Model, cameraPos, sunDir math.Vec3, uv, size math.Vec2) math.Vec4 {
	viewHeight := cameraPos.Length()
	viewZenithCos, lightViewCos := m.Params().UVToSkyViewParams(uv, viewHeight, size)

	up := cameraPos.Scale(1 / viewHeight)
	sunZenithCos := math.ClampCos(up.Dot(sunDir))
	localSun := math.Vec3{X: math.SafeSqrt(1 - sunZenithCos*sunZenithCos), Y: sunZenithCos}

	viewZenithSin := math.SafeSqrt(1 - viewZenithCos*viewZenithCos)
	dir := math.Vec3{
		X: viewZenithSin * lightViewCos,
		Y: viewZenithCos,
		Z: viewZenithSin * math.SafeSqrt(1-lightViewCos*lightViewCos),
	}

	r, ok := m.MoveToTopAtmosphere(atmosphere.Ray{Origin: math.Vec3{Y: viewHeight}, Direction: dir})
	if !ok {
		return math.Vec4{W: 1}
	}
	ss := m.IntegrateScatteredLuminance(math.Vec2{}, r, localSun, skyViewSamples, -1, farDistance)
	return math.V4(ss.Luminance, 1)
}

// BakeSkyView fills the sky-view LUT for the camera position cameraPos in km
// above sea level.
func BakeSkyView(ctx context.Context, d *Dispatcher, m *atmosphere.Model, cameraPos, sunDir math.Vec3, width, height int) (*texture.Texture2D, error) {
	worldPos := cameraPos.Add(math.Vec3{Y: m.Params().BottomRadius})
	size := math.Vec2{X: float64(width), Y: float64(height)}
	lut := texture.NewTexture2D(width, height, texture.Clamp)
	err := dispatch2D(ctx, d, width, height, func(x, y int) {
		lut.Set(x, y, SkyViewTexel(m, worldPos, sunDir, texelUV(x, y, width, height), size))
	})
	if err != nil {
		return nil, err
	}
	return lut, nil
}
