package atmosphere

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// PlanetRadiusOffset lifts points off the planet surface to avoid self-intersection.
const PlanetRadiusOffset = 0.01

// sampleSegmentT places each sample within its segment.
const sampleSegmentT = 0.3

// Settings are the feature switches of the integrator. They are resolved into
// concrete strategies once in NewModel.
type Settings struct {
	// VariableSampleCount picks the sample count from the ray length and
	// distributes steps quadratically.
	VariableSampleCount bool
	// MieRayPhase uses separate Rayleigh and Mie phases instead of a uniform phase.
	MieRayPhase bool
	// IlluminanceIsOne ignores sun illuminance, as required when baking.
	IlluminanceIsOne bool
	// UseGround adds the Lambertian ground bounce when the ray hits the planet.
	UseGround bool
	// MultiScatApprox adds the multi-scattering LUT contribution.
	MultiScatApprox bool
	// MultiScatPowerSerie accumulates MultiScatAs1 as plain power-series terms
	// rather than with the analytic segment integral.
	MultiScatPowerSerie bool
	// Shadows multiplies sun light by a host shadow sampler.
	Shadows bool
}

// SingleScatteringResult accumulates the integrator output along one ray.
type SingleScatteringResult struct {
	Luminance            math.Vec3
	OpticalDepth         math.Vec3
	Transmittance        math.Vec3
	MultiScatAs1         math.Vec3
	NewMultiScatStep0Out math.Vec3
	NewMultiScatStep1Out math.Vec3
}

type stepFunc func(s, sampleCount, floorCount, tMax, tMaxFloor, t float64) (newT, dt float64)

type phaseFunc func(medium *MediumSampleRGB, miePhase, rayPhase float64) math.Vec3

type multiScatAccumFunc func(throughput, scattering, extinction math.Vec3, dt float64) math.Vec3

// Model integrates atmospheric scattering for one set of parameters.
type Model struct {
	params   Parameters
	settings Settings

	camera        *CameraData
	transmittance Sampler2D
	multiScatter  Sampler2D
	shadows       ShadowSampler

	step           stepFunc
	phase          phaseFunc
	multiScatAccum multiScatAccumFunc
}

// Option configures a Model.
type Option func(*Model)

// WithCamera binds the camera used for depth-buffer reconstruction.
func WithCamera(c *CameraData) Option {
	return func(m *Model) { m.camera = c }
}

// WithTransmittance binds the transmittance LUT.
func WithTransmittance(lut Sampler2D) Option {
	return func(m *Model) { m.transmittance = lut }
}

// WithMultiScattering binds the multi-scattering LUT.
func WithMultiScattering(lut Sampler2D) Option {
	return func(m *Model) { m.multiScatter = lut }
}

// WithShadows binds the shadow sampler used when Settings.Shadows is set.
func WithShadows(s ShadowSampler) Option {
	return func(m *Model) { m.shadows = s }
}

// NewModel validates its inputs and resolves the settings into strategies.
func NewModel(params Parameters, settings Settings, options ...Option) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	m := &Model{params: params, settings: settings}
	for _, option := range options {
		option(m)
	}

	if settings.MultiScatApprox && m.multiScatter == nil {
		return nil, errors.New("multi-scattering approximation requires a multi-scattering LUT")
	}
	if settings.Shadows && m.shadows == nil {
		return nil, errors.New("shadowed integration requires a shadow sampler")
	}
	if m.multiScatter != nil {
		if w, h := m.multiScatter.Size(); w < 2 || h < 2 {
			return nil, fmt.Errorf("multi-scattering LUT %dx%d is too small", w, h)
		}
	}

	if settings.VariableSampleCount {
		m.step = variableStep
	} else {
		m.step = fixedStep
	}
	if settings.MieRayPhase {
		m.phase = mieRayPhase
	} else {
		m.phase = uniformPhase
	}
	if settings.MultiScatPowerSerie {
		m.multiScatAccum = powerSerieAccum
	} else {
		m.multiScatAccum = analyticAccum
	}
	return m, nil
}

// Params returns the model's parameters.
func (m *Model) Params() *Parameters {
	return &m.params
}

// Settings returns the model's settings.
func (m *Model) Settings() Settings {
	return m.settings
}

// Camera returns the bound camera, or nil.
func (m *Model) Camera() *CameraData {
	return m.camera
}

func variableStep(s, _, floorCount, tMax, tMaxFloor, _ float64) (float64, float64) {
	t0 := s / floorCount
	t1 := (s + 1) / floorCount
	t0 *= t0
	t1 *= t1
	t0 = tMaxFloor * t0
	if t1 > 1 {
		t1 = tMax
	} else {
		t1 = tMaxFloor * t1
	}
	return t0 + (t1-t0)*sampleSegmentT, t1 - t0
}

func fixedStep(s, sampleCount, _, tMax, _, t float64) (float64, float64) {
	newT := tMax * (s + sampleSegmentT) / sampleCount
	return newT, newT - t
}

func mieRayPhase(medium *MediumSampleRGB, miePhase, rayPhase float64) math.Vec3 {
	return medium.ScatteringMie.Scale(miePhase).Add(medium.ScatteringRay.Scale(rayPhase))
}

func uniformPhase(medium *MediumSampleRGB, _, _ float64) math.Vec3 {
	return medium.Scattering.Scale(UniformPhase)
}

func powerSerieAccum(throughput, scattering, _ math.Vec3, dt float64) math.Vec3 {
	return throughput.Mul(scattering).Scale(dt)
}

func analyticAccum(throughput, scattering, extinction math.Vec3, dt float64) math.Vec3 {
	return throughput.Mul(segmentIntegral(scattering, extinction, dt))
}
