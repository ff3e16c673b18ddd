package atmosphere

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/math"
)

func TestDensityProfileClamp(t *testing.T) {
	p := DefaultParameters()
	tests := []struct {
		h    float64
		want float64
	}{
		{0, 0},
		{10, 0},
		{25, 1},
		{40, 0},
		{100, 0},
	}
	for _, tt := range tests {
		if got := p.AbsorptionDensity.Density(tt.h); gomath.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ozone density(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
	// 17.5 km is halfway up the lower ozone layer.
	if got := p.AbsorptionDensity.Density(17.5); gomath.Abs(got-0.5) > 1e-9 {
		t.Errorf("ozone density(17.5) = %v, want 0.5", got)
	}
}

func TestSampleMediumRGBAtGround(t *testing.T) {
	p := DefaultParameters()
	s := p.SampleMediumRGB(math.Vec3{Y: p.BottomRadius})

	if s.ScatteringRay != p.RayleighScattering {
		t.Errorf("Rayleigh scattering = %v, want %v", s.ScatteringRay, p.RayleighScattering)
	}
	if s.ExtinctionMie != p.MieExtinction {
		t.Errorf("Mie extinction = %v, want %v", s.ExtinctionMie, p.MieExtinction)
	}
	if !s.AbsorptionOzo.IsZero() {
		t.Errorf("ozone absorption at ground = %v, want 0", s.AbsorptionOzo)
	}
	wantExt := p.RayleighScattering.Add(p.MieExtinction)
	if s.Extinction.Sub(wantExt).Length() > 1e-12 {
		t.Errorf("extinction = %v, want %v", s.Extinction, wantExt)
	}
	if s.Albedo.X <= 0 || s.Albedo.X > 1 {
		t.Errorf("albedo = %v, want in (0, 1]", s.Albedo)
	}
}

func TestSampleMediumRGBDecaysWithAltitude(t *testing.T) {
	p := DefaultParameters()
	low := p.SampleMediumRGB(math.Vec3{Y: p.BottomRadius + 1})
	high := p.SampleMediumRGB(math.Vec3{Y: p.BottomRadius + 9})
	ratio := high.ScatteringRay.X / low.ScatteringRay.X
	if gomath.Abs(ratio-gomath.Exp(-1)) > 1e-9 {
		t.Errorf("Rayleigh ratio over one scale height = %v, want 1/e", ratio)
	}
}

func TestSampleMediumRGBEmptySpace(t *testing.T) {
	p := Parameters{BottomRadius: 1, TopRadius: 2}
	s := p.SampleMediumRGB(math.Vec3{Y: 1.5})
	for _, c := range []float64{s.Albedo.X, s.Albedo.Y, s.Albedo.Z} {
		if gomath.IsNaN(c) || gomath.IsInf(c, 0) {
			t.Fatalf("albedo with zero extinction = %v, want finite", s.Albedo)
		}
	}
}
