package atmosphere

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/math"
)

func TestSunDirection(t *testing.T) {
	if got := SunDirection(0, 90); got.Distance(math.Vec3{Y: 1}) > 1e-12 {
		t.Errorf("SunDirection(0, 90) = %v, want +Y", got)
	}
	if got := SunDirection(90, 0); got.Distance(math.Vec3{X: 1}) > 1e-12 {
		t.Errorf("SunDirection(90, 0) = %v, want +X", got)
	}
}

func TestSunDirectionFromOrientation(t *testing.T) {
	// A light pitched straight down travels along -Y, so the sun is at +Y.
	q := math.QuatFromAxisAngle(math.Vec3{X: 1}, -gomath.Pi/2)
	if got := SunDirectionFromOrientation(q); got.Distance(math.Vec3{Y: 1}) > 1e-12 {
		t.Errorf("SunDirectionFromOrientation() = %v, want +Y", got)
	}
}

func TestSunRadiance(t *testing.T) {
	p := DefaultParameters()
	lut := bakeTransmittance(t, p, 32, 16)
	m, err := NewModel(p, Settings{}, WithTransmittance(lut))
	if err != nil {
		t.Fatal(err)
	}
	ground := math.Vec3{}

	overhead := m.SunRadiance(ground, math.Vec3{Y: 1})
	if overhead.X < 0.9 {
		t.Errorf("overhead sun radiance = %v, want close to illuminance", overhead)
	}

	below := -gomath.Sin(p.SunAngularRadius) - 1e-3
	sunDir := math.Vec3{X: math.SafeSqrt(1 - below*below), Y: below}
	if got := m.SunRadiance(ground, sunDir); !got.IsZero() {
		t.Errorf("sun below horizon radiance = %v, want 0", got)
	}

	low := m.SunRadiance(ground, SunDirection(0, 5))
	if low.Z >= overhead.Z || low.Z >= low.X {
		t.Errorf("low sun radiance = %v, want dimmer and redder than %v", low, overhead)
	}
}

func TestSunVisibilityFromAltitude(t *testing.T) {
	p := DefaultParameters()
	// From 100 km up the horizon dips about 10 degrees.
	pos := math.Vec3{Y: p.BottomRadius + 100}
	if v := p.SunVisibility(pos, SunDirection(0, -5)); v != 1 {
		t.Errorf("visibility of a sun 5 degrees below level from altitude = %v, want 1", v)
	}
	if v := p.SunVisibility(pos, SunDirection(0, -20)); v != 0 {
		t.Errorf("visibility below the dipped horizon = %v, want 0", v)
	}
}
