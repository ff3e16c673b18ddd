// Package clouds raymarches a volumetric cloud layer between two shells
// around the planet and composites it over the sky.
package clouds

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/scattering"
)

// LodSampler3D is a mip-mapped volume lookup.
type LodSampler3D interface {
	SampleLod(uvw math.Vec3, lod float64) math.Vec4
}

// Model holds the cloud layer and its noise textures. Positions are scene
// kilometres with sea level at y = 0.
type Model struct {
	params     Params
	scattering *scattering.Model

	perlinWorley LodSampler3D
	worley       LodSampler3D
	weather      atmosphere.Sampler2D
	curl         atmosphere.Sampler2D

	bottomRadius float64
	innerRadius  float64
	outerRadius  float64
	delta        float64
	center       math.Vec3
}

// Option configures a Model.
type Option func(*Model)

// WithCurl binds the 2-D curl noise that advects the erosion lookup.
func WithCurl(curl atmosphere.Sampler2D) Option {
	return func(m *Model) { m.curl = curl }
}

// NewModel binds the cloud layer to a scattering model, whose atmosphere
// supplies the planet radius and camera.
func NewModel(sc *scattering.Model, params Params, perlinWorley, worley LodSampler3D, weather atmosphere.Sampler2D, options ...Option) (*Model, error) {
	if sc == nil {
		return nil, errors.New("clouds require a scattering model")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if perlinWorley == nil || worley == nil || weather == nil {
		return nil, errors.New("clouds require perlin-worley, worley and weather textures")
	}
	bottom := sc.Atmosphere().Params().BottomRadius
	m := &Model{
		params:       params,
		scattering:   sc,
		perlinWorley: perlinWorley,
		worley:       worley,
		weather:      weather,
		bottomRadius: bottom,
		innerRadius:  bottom + params.InnerRadius,
		outerRadius:  bottom + params.OuterRadius,
		delta:        params.OuterRadius - params.InnerRadius,
		center:       math.Vec3{Y: -bottom},
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// Params returns the cloud parameters.
func (m *Model) Params() Params {
	return m.params
}

func (m *Model) uvProjection(p math.Vec3) math.Vec2 {
	return p.XZ().Scale(1 / m.innerRadius).AddScalar(0.5)
}

// HeightFraction is 0 on the inner shell and 1 on the outer shell.
func (m *Model) HeightFraction(p math.Vec3) float64 {
	return (p.Sub(m.center).Length() - m.innerRadius) / m.delta
}

var (
	stratusGradient       = [4]float64{0, 0.1, 0.2, 0.3}
	stratocumulusGradient = [4]float64{0.02, 0.2, 0.48, 0.625}
	cumulusGradient       = [4]float64{0, 0.1625, 0.88, 0.98}
)

// DensityForCloud is the vertical profile for cloudType in [0,1], blending
// stratus (0), stratocumulus (0.5) and cumulus (1).
func DensityForCloud(heightFraction, cloudType float64) float64 {
	stratus := 1 - math.Saturate(cloudType*2)
	stratocumulus := 1 - gomath.Abs(cloudType-0.5)*2
	cumulus := math.Saturate(cloudType-0.5) * 2

	var g [4]float64
	for i := range g {
		g[i] = stratus*stratusGradient[i] + stratocumulus*stratocumulusGradient[i] + cumulus*cumulusGradient[i]
	}
	return math.SmoothStep(g[0], g[1], heightFraction) - math.SmoothStep(g[2], g[3], heightFraction)
}

// SkewSamplePointWithWind moves p downwind by the elapsed time and shears it
// with height.
func (m *Model) SkewSamplePointWithWind(p math.Vec3, heightFraction float64) math.Vec3 {
	wind := m.params.WindDirection
	return p.Add(wind.Scale(heightFraction * m.params.TopOffset)).
		Add(wind.Scale(m.params.Time * m.params.Speed))
}

// SampleLowFrequency returns the coverage-shaped base cloud at p.
func (m *Model) SampleLowFrequency(p math.Vec3, heightFraction, lod float64) float64 {
	uv := m.uvProjection(p)
	movingUV := m.uvProjection(m.SkewSamplePointWithWind(p, heightFraction))

	noise := m.perlinWorley.SampleLod(math.Vec3{X: uv.X * m.params.Crispiness, Y: uv.Y * m.params.Crispiness, Z: heightFraction}, lod)
	lowFreqFBM := noise.Y*0.625 + noise.Z*0.25 + noise.W*0.125
	baseCloud := math.Remap(noise.X, -(1 - lowFreqFBM), 1, 0, 1)

	weather := m.weather.Sample(movingUV)
	profile := DensityForCloud(heightFraction, math.Saturate(weather.Y))
	baseCloud *= profile / gomath.Max(heightFraction, 1e-3)

	coverage := weather.X * m.params.Coverage
	return math.Remap(baseCloud, coverage, 1, 0, 1) * coverage
}

// ErodeWithHighFrequency carves the base cloud edges with curl-advected
// Worley detail.
func (m *Model) ErodeWithHighFrequency(baseCloud float64, p math.Vec3, heightFraction, lod float64) float64 {
	movingUV := m.uvProjection(m.SkewSamplePointWithWind(p, heightFraction))
	coord := math.Vec3{X: movingUV.X * m.params.Crispiness, Y: movingUV.Y * m.params.Crispiness, Z: heightFraction}.
		Scale(m.params.Curliness)
	if m.curl != nil {
		c := m.curl.Sample(movingUV)
		amount := m.params.CurlStrength * (1 - heightFraction)
		coord.X += (c.X*2 - 1) * amount
		coord.Y += (c.Y*2 - 1) * amount
	}

	erode := m.worley.SampleLod(coord, lod)
	highFreqFBM := erode.X*0.625 + erode.Y*0.25 + erode.Z*0.125
	modifier := math.Mix(highFreqFBM, 1-highFreqFBM, math.Saturate(heightFraction*10))

	baseCloud -= modifier * (1 - baseCloud)
	return math.Remap(baseCloud*2, modifier*0.2, 1, 0, 1)
}

// SampleCloudDensity returns the cloud density in [0,1] at p. The expensive
// path adds high-frequency erosion.
func (m *Model) SampleCloudDensity(p math.Vec3, expensive bool, lod float64) float64 {
	heightFraction := m.HeightFraction(p)
	if heightFraction < 0 || heightFraction > 1 {
		return 0
	}
	density := m.SampleLowFrequency(p, heightFraction, lod)
	if expensive {
		density = m.ErodeWithHighFrequency(density, p, heightFraction, lod)
	}
	return math.Saturate(density)
}
