// Package scattering resolves per-pixel sky and aerial-perspective light from
// an atmosphere model and its baked LUTs.
package scattering

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
)

const (
	// AerialPerspectiveSlices is the depth of the aerial-perspective volume.
	AerialPerspectiveSlices = 32
	// AerialPerspectiveKmPerSlice is the distance covered by one volume slice.
	AerialPerspectiveKmPerSlice = 4.0

	defaultSampleCount = 30
)

// AerialPerspectiveDepthToSlice converts a distance in km to a fractional slice.
func AerialPerspectiveDepthToSlice(depth float64) float64 {
	return depth / AerialPerspectiveKmPerSlice
}

// AerialPerspectiveSliceToDepth converts a fractional slice to a distance in km.
func AerialPerspectiveSliceToDepth(slice float64) float64 {
	return slice * AerialPerspectiveKmPerSlice
}

// Sampler3D is a filtered volume lookup.
type Sampler3D interface {
	Sample(uvw math.Vec3) math.Vec4
	Size() (width, height, depth int)
}

// Settings select the pixel resolve paths.
type Settings struct {
	// ColorTransmittance keeps per-channel transmittance instead of its mean.
	ColorTransmittance bool
	// FastSky reads background pixels from the sky-view LUT.
	FastSky bool
	// FastAerialPerspective reads geometry pixels from the aerial-perspective volume.
	FastAerialPerspective bool
	RenderSunDisk         bool
	BloomSunDisk          bool
	// SampleCount is the march sample count when the atmosphere uses a fixed count.
	SampleCount float64
}

type resolveFunc func(px *pixel) (transmittance, luminance math.Vec3)

// Model resolves pixels against one atmosphere.
type Model struct {
	atmo     *atmosphere.Model
	settings Settings

	skyView           atmosphere.Sampler2D
	aerialPerspective Sampler3D

	resolveSky      resolveFunc
	resolveGeometry resolveFunc
}

// Option configures a Model.
type Option func(*Model)

// WithSkyView binds the sky-view LUT used by the fast sky path.
func WithSkyView(lut atmosphere.Sampler2D) Option {
	return func(m *Model) { m.skyView = lut }
}

// WithAerialPerspective binds the aerial-perspective volume.
func WithAerialPerspective(volume Sampler3D) Option {
	return func(m *Model) { m.aerialPerspective = volume }
}

// NewModel checks that every enabled fast path has its texture and that the
// atmosphere carries a camera.
func NewModel(atmo *atmosphere.Model, settings Settings, options ...Option) (*Model, error) {
	if atmo == nil {
		return nil, errors.New("scattering requires an atmosphere model")
	}
	if atmo.Camera() == nil {
		return nil, errors.New("scattering requires an atmosphere model with a camera")
	}
	if settings.SampleCount <= 0 {
		settings.SampleCount = defaultSampleCount
	}
	m := &Model{atmo: atmo, settings: settings}
	for _, option := range options {
		option(m)
	}

	m.resolveSky = m.integrate
	if settings.FastSky {
		if m.skyView == nil {
			return nil, errors.New("fast sky requires a sky-view LUT")
		}
		m.resolveSky = m.lookupSkyView
	}
	m.resolveGeometry = m.integrate
	if settings.FastAerialPerspective {
		if m.aerialPerspective == nil {
			return nil, errors.New("fast aerial perspective requires an aerial-perspective volume")
		}
		if _, _, d := m.aerialPerspective.Size(); d < 1 {
			return nil, errors.New("aerial-perspective volume has no slices")
		}
		m.resolveGeometry = m.lookupAerialPerspective
	}
	return m, nil
}

// Atmosphere returns the underlying atmosphere model.
func (m *Model) Atmosphere() *atmosphere.Model {
	return m.atmo
}

// Settings returns the resolve settings.
func (m *Model) Settings() Settings {
	return m.settings
}

// pixel is one resolve request in planet-centred coordinates.
type pixel struct {
	uv       math.Vec2
	pix      math.Vec2
	depth    float64
	worldPos math.Vec3
	height   float64
	dir      math.Vec3
	sunDir   math.Vec3
}

// GetPixelTransLum returns the transmittance and luminance for the fragment at
// fragPos on a target of fragSize pixels. fragDepth is the scene depth buffer
// value in [0,1); -1 or 1 mark background.
func (m *Model) GetPixelTransLum(fragPos, fragSize math.Vec2, fragDepth float64, sunDir math.Vec3) (transmittance, luminance math.Vec4) {
	cam := m.atmo.Camera()
	params := m.atmo.Params()
	px := &pixel{
		uv:     fragPos.Div(fragSize),
		pix:    fragPos.Mul(cam.Viewport.Div(fragSize)),
		depth:  fragDepth,
		sunDir: sunDir,
	}
	px.worldPos = cam.PlanetPosition(params.BottomRadius)
	px.height = px.worldPos.Length()
	px.dir = cam.ScreenToDirection(px.pix)

	var T, L math.Vec3
	if isBackground(fragDepth) {
		T, L = m.resolveSky(px)
	} else {
		T, L = m.resolveGeometry(px)
	}

	if !m.settings.ColorTransmittance {
		T = math.Splat3(T.Mean())
	}
	return math.V4(T, T.Mean()), math.V4(L, 1)
}

func isBackground(depth float64) bool {
	return depth < 0 || depth >= 1
}

// integrate is the full ray-marched path.
func (m *Model) integrate(px *pixel) (math.Vec3, math.Vec3) {
	background := isBackground(px.depth)
	r, ok := m.atmo.MoveToTopAtmosphere(atmosphere.Ray{Origin: px.worldPos, Direction: px.dir})
	if !ok {
		var L math.Vec3
		if background && m.settings.RenderSunDisk {
			L = m.GetSunLuminance(px.worldPos, px.dir, px.sunDir)
		}
		return math.Splat3(1), L
	}

	depth := px.depth
	if background {
		depth = -1
	}
	ss := m.atmo.IntegrateScatteredLuminance(px.pix, r, px.sunDir, m.settings.SampleCount, depth, gomath.Inf(1))
	L := ss.Luminance
	if background && m.settings.RenderSunDisk {
		L = L.Add(m.GetSunLuminance(px.worldPos, px.dir, px.sunDir))
	}
	return ss.Transmittance, L
}

// lookupSkyView reads the background from the sky-view LUT. The LUT is baked
// from inside the atmosphere, so cameras above it fall back to integration.
func (m *Model) lookupSkyView(px *pixel) (math.Vec3, math.Vec3) {
	params := m.atmo.Params()
	if px.height >= params.TopRadius {
		return m.integrate(px)
	}
	L := m.SampleSkyView(px.worldPos, px.dir, px.sunDir)

	var T math.Vec3
	up := px.worldPos.Scale(1 / px.height)
	viewZenithCos := px.dir.Dot(up)
	if !params.SkyViewIntersectsGround(viewZenithCos, px.height) {
		T = m.atmo.TransmittanceToSun(px.height, viewZenithCos)
	}
	if m.settings.RenderSunDisk {
		L = L.Add(m.GetSunLuminance(px.worldPos, px.dir, px.sunDir))
	}
	return T, L
}

// SampleSkyView returns the sky-view LUT luminance for a view from worldPos
// (planet-centred) along dir.
func (m *Model) SampleSkyView(worldPos, dir, sunDir math.Vec3) math.Vec3 {
	params := m.atmo.Params()
	h := worldPos.Length()
	up := worldPos.Scale(1 / h)
	viewZenithCos := dir.Dot(up)

	side := up.Cross(dir).Normalize()
	forward := side.Cross(up).Normalize()
	lightOnPlane := math.Vec2{X: sunDir.Dot(forward), Y: sunDir.Dot(side)}.Normalize()
	lightViewCos := lightOnPlane.X

	w, hgt := m.skyView.Size()
	intersectGround := params.SkyViewIntersectsGround(viewZenithCos, h)
	uv := params.SkyViewParamsToUV(intersectGround, viewZenithCos, lightViewCos, h, math.Vec2{X: float64(w), Y: float64(hgt)})
	return m.skyView.Sample(uv).XYZ()
}

// lookupAerialPerspective reads geometry pixels from the froxel volume.
func (m *Model) lookupAerialPerspective(px *pixel) (math.Vec3, math.Vec3) {
	if px.height >= m.atmo.Params().TopRadius {
		return m.integrate(px)
	}
	cam := m.atmo.Camera()
	scenePos := cam.WorldPos(px.depth, px.pix)
	ap := m.SampleAerialPerspective(px.uv, scenePos.Distance(cam.Position))
	return math.Splat3(1 - ap.W), ap.XYZ()
}

// SampleAerialPerspective returns (luminance, 1 - transmittance) at screen uv
// for a surface tDepth km away.
func (m *Model) SampleAerialPerspective(uv math.Vec2, tDepth float64) math.Vec4 {
	_, _, depth := m.aerialPerspective.Size()
	slice := AerialPerspectiveDepthToSlice(tDepth)
	weight := 1.0
	if slice < 0.5 {
		// Fade in over the first half slice, which the volume does not cover.
		weight = math.Saturate(slice * 2)
		slice = 0.5
	}
	w := gomath.Sqrt(slice / float64(depth))
	return m.aerialPerspective.Sample(math.Vec3{X: uv.X, Y: uv.Y, Z: w}).Scale(weight)
}
