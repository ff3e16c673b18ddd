// Package atmosphere implements a spherical-shell participating medium:
// ray–sphere geometry, medium sampling, LUT parameterizations and the
// single/multiple scattering integrator. Distances are in kilometres and
// coefficients in inverse kilometres. Positions are planet-centred with +Y up.
package atmosphere

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// ErrInvalidParameters is wrapped by every Parameters.Validate failure.
var ErrInvalidParameters = errors.New("invalid atmosphere parameters")

// DensityLayer is one piece of a density profile:
// density(h) = ExpTerm*exp(ExpScale*h) + LinearTerm*h + ConstantTerm, clamped to [0,1].
type DensityLayer struct {
	Width        float64
	ExpTerm      float64
	ExpScale     float64
	LinearTerm   float64
	ConstantTerm float64
}

// Density evaluates the layer at altitude h.
func (l DensityLayer) Density(h float64) float64 {
	return math.Saturate(l.ExpTerm*gomath.Exp(l.ExpScale*h) + l.LinearTerm*h + l.ConstantTerm)
}

// DensityProfile is a two-layer profile. Layer 0 covers [0, Layers[0].Width),
// layer 1 covers everything above.
type DensityProfile struct {
	Layers [2]DensityLayer
}

// Density evaluates the profile at altitude h.
func (p DensityProfile) Density(h float64) float64 {
	if h < p.Layers[0].Width {
		return p.Layers[0].Density(h)
	}
	return p.Layers[1].Density(h)
}

// Parameters describes the planet and its atmosphere.
type Parameters struct {
	SolarIrradiance     math.Vec3
	SunAngularRadius    float64 // radians
	SunIlluminance      math.Vec3
	SunIlluminanceScale float64

	BottomRadius float64
	TopRadius    float64

	RayleighDensity    DensityProfile
	RayleighScattering math.Vec3

	MieDensity        DensityProfile
	MieScattering     math.Vec3
	MieExtinction     math.Vec3
	MieAbsorption     math.Vec3
	MiePhaseFunctionG float64

	AbsorptionDensity    DensityProfile
	AbsorptionExtinction math.Vec3

	GroundAlbedo math.Vec3
	// MuSMin is the cosine of the maximum sun zenith angle baked into LUTs.
	MuSMin float64

	MultipleScatteringFactor float64
	RayMarchMinSPP           float64
	RayMarchMaxSPP           float64
}

// DefaultParameters returns an Earth-like atmosphere.
func DefaultParameters() Parameters {
	const (
		rayleighScaleHeight = 8.0
		mieScaleHeight      = 1.2
	)
	mieScattering := math.Vec3{X: 0.003996, Y: 0.003996, Z: 0.003996}
	mieExtinction := math.Vec3{X: 0.004440, Y: 0.004440, Z: 0.004440}

	return Parameters{
		SolarIrradiance:     math.Vec3{X: 1, Y: 1, Z: 1},
		SunAngularRadius:    0.004675,
		SunIlluminance:      math.Vec3{X: 1, Y: 1, Z: 1},
		SunIlluminanceScale: 1,

		BottomRadius: 6360,
		TopRadius:    6460,

		RayleighDensity: DensityProfile{Layers: [2]DensityLayer{
			{},
			{ExpTerm: 1, ExpScale: -1 / rayleighScaleHeight},
		}},
		RayleighScattering: math.Vec3{X: 0.005802, Y: 0.013558, Z: 0.033100},

		MieDensity: DensityProfile{Layers: [2]DensityLayer{
			{},
			{ExpTerm: 1, ExpScale: -1 / mieScaleHeight},
		}},
		MieScattering:     mieScattering,
		MieExtinction:     mieExtinction,
		MieAbsorption:     mieExtinction.Sub(mieScattering).Max(math.Vec3{}),
		MiePhaseFunctionG: 0.8,

		AbsorptionDensity: DensityProfile{Layers: [2]DensityLayer{
			{Width: 25, LinearTerm: 1.0 / 15.0, ConstantTerm: -2.0 / 3.0},
			{LinearTerm: -1.0 / 15.0, ConstantTerm: 8.0 / 3.0},
		}},
		AbsorptionExtinction: math.Vec3{X: 0.000650, Y: 0.001881, Z: 0.000085},

		GroundAlbedo: math.Vec3{X: 0.3, Y: 0.3, Z: 0.3},
		MuSMin:       gomath.Cos(math.ToRadians(120)),

		MultipleScatteringFactor: 1,
		RayMarchMinSPP:           4,
		RayMarchMaxSPP:           14,
	}
}

// Validate reports the first inconsistency found.
func (p Parameters) Validate() error {
	switch {
	case p.BottomRadius <= 0:
		return fmt.Errorf("%w: bottom radius %v must be positive", ErrInvalidParameters, p.BottomRadius)
	case p.TopRadius <= p.BottomRadius:
		return fmt.Errorf("%w: top radius %v must exceed bottom radius %v", ErrInvalidParameters, p.TopRadius, p.BottomRadius)
	case p.RayMarchMinSPP < 1:
		return fmt.Errorf("%w: min SPP %v must be at least 1", ErrInvalidParameters, p.RayMarchMinSPP)
	case p.RayMarchMaxSPP < p.RayMarchMinSPP:
		return fmt.Errorf("%w: max SPP %v below min SPP %v", ErrInvalidParameters, p.RayMarchMaxSPP, p.RayMarchMinSPP)
	case p.MiePhaseFunctionG <= -1 || p.MiePhaseFunctionG >= 1:
		return fmt.Errorf("%w: mie phase g %v outside (-1, 1)", ErrInvalidParameters, p.MiePhaseFunctionG)
	case p.SunAngularRadius <= 0 || p.SunAngularRadius >= gomath.Pi/2:
		return fmt.Errorf("%w: sun angular radius %v outside (0, pi/2)", ErrInvalidParameters, p.SunAngularRadius)
	case p.MultipleScatteringFactor < 0:
		return fmt.Errorf("%w: multiple scattering factor %v is negative", ErrInvalidParameters, p.MultipleScatteringFactor)
	}
	return nil
}

// SunLuminance is the sun's illuminance including the artist scale.
func (p Parameters) SunLuminance() math.Vec3 {
	return p.SunIlluminance.Scale(p.SunIlluminanceScale)
}
