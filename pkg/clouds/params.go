package clouds

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid cloud parameters")

// Params shape the cloud layer. Distances are km, coefficients km⁻¹.
type Params struct {
	WindDirection math.Vec3
	// Speed is the wind speed in km per time unit.
	Speed      float64
	Coverage   float64
	Crispiness float64
	Curliness  float64
	// CurlStrength scales the curl-noise advection of the erosion lookup.
	CurlStrength float64
	Density      float64
	Absorption   float64
	// InnerRadius and OuterRadius are the shell altitudes above the ground.
	InnerRadius  float64
	OuterRadius  float64
	ColorTop     math.Vec3
	ColorBottom  math.Vec3
	EnablePowder bool
	// TopOffset shears cloud tops downwind.
	TopOffset       float64
	SilverIntensity float64
	SilverSpread    float64
	FogFactor       float64
	Time            float64
}

// DefaultParams returns a broken cumulus layer between 1.5 and 5 km.
func DefaultParams() Params {
	return Params{
		WindDirection:   math.Vec3{X: 0.5, Z: 0.1},
		Speed:           0.45,
		Coverage:        0.45,
		Crispiness:      40,
		Curliness:       0.1,
		CurlStrength:    0.2,
		Density:         20,
		Absorption:      3.5,
		InnerRadius:     1.5,
		OuterRadius:     5,
		ColorTop:        math.Vec3{X: 169, Y: 149, Z: 149}.Scale(1.5 / 255),
		ColorBottom:     math.Vec3{X: 65, Y: 70, Z: 80}.Scale(1.5 / 255),
		EnablePowder:    true,
		TopOffset:       0.75,
		SilverIntensity: 0.2,
		SilverSpread:    0.1,
		FogFactor:       0.2,
	}
}

// Validate reports the first parameter that would break the raymarch.
func (p Params) Validate() error {
	switch {
	case p.InnerRadius < 0:
		return fmt.Errorf("%w: inner radius %v is negative", ErrInvalidParams, p.InnerRadius)
	case p.OuterRadius <= p.InnerRadius:
		return fmt.Errorf("%w: outer radius %v must exceed inner radius %v", ErrInvalidParams, p.OuterRadius, p.InnerRadius)
	case p.Coverage < 0 || p.Coverage > 1:
		return fmt.Errorf("%w: coverage %v outside [0,1]", ErrInvalidParams, p.Coverage)
	case p.Density < 0:
		return fmt.Errorf("%w: density %v is negative", ErrInvalidParams, p.Density)
	case p.Absorption < 0:
		return fmt.Errorf("%w: absorption %v is negative", ErrInvalidParams, p.Absorption)
	case p.Crispiness <= 0:
		return fmt.Errorf("%w: crispiness %v must be positive", ErrInvalidParams, p.Crispiness)
	case p.SilverSpread < 0 || p.SilverSpread > 1:
		return fmt.Errorf("%w: silver spread %v outside [0,1]", ErrInvalidParams, p.SilverSpread)
	case p.FogFactor < 0:
		return fmt.Errorf("%w: fog factor %v is negative", ErrInvalidParams, p.FogFactor)
	}
	return nil
}
