package clouds

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/scattering"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

type constVolume math.Vec4

func (c constVolume) SampleLod(math.Vec3, float64) math.Vec4 { return math.Vec4(c) }

type const2D math.Vec4

func (c const2D) Sample(math.Vec2) math.Vec4 { return math.Vec4(c) }
func (c const2D) Size() (int, int)           { return 1, 1 }

var viewport = math.Vec2{X: 16, Y: 8}

func newScattering(t *testing.T) *scattering.Model {
	t.Helper()
	cam, err := atmosphere.NewCameraData(
		math.Vec3{Y: 0.5}, math.Vec3{Y: 10.5}, math.Vec3{Z: 1},
		math.ToRadians(60), viewport, 0.1, 1e6)
	if err != nil {
		t.Fatalf("NewCameraData() error = %v", err)
	}
	lut := texture.NewTexture2D(2, 2, texture.Clamp)
	for i := range lut.Texels {
		lut.Texels[i] = math.Vec4{X: 0.8, Y: 0.8, Z: 0.8, W: 1}
	}
	atmo, err := atmosphere.NewModel(atmosphere.DefaultParameters(), atmosphere.Settings{},
		atmosphere.WithCamera(cam), atmosphere.WithTransmittance(lut))
	if err != nil {
		t.Fatalf("atmosphere.NewModel() error = %v", err)
	}
	sc, err := scattering.NewModel(atmo, scattering.Settings{})
	if err != nil {
		t.Fatalf("scattering.NewModel() error = %v", err)
	}
	return sc
}

// dense returns a model whose noise saturates the cumulus layer.
func dense(t *testing.T, p Params) *Model {
	t.Helper()
	m, err := NewModel(newScattering(t), p,
		constVolume{X: 1, Y: 1, Z: 1, W: 1},
		constVolume{},
		const2D{X: 1, Y: 1, W: 1})
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func altitude(h float64) math.Vec3 {
	return math.Vec3{Y: h}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Params)
	}{
		{"outer below inner", func(p *Params) { p.OuterRadius = p.InnerRadius }},
		{"coverage above one", func(p *Params) { p.Coverage = 1.5 }},
		{"negative density", func(p *Params) { p.Density = -1 }},
		{"zero crispiness", func(p *Params) { p.Crispiness = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.edit(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() error = %v, want ErrInvalidParams", err)
			}
		})
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams().Validate() error = %v", err)
	}
}

func TestHeightFraction(t *testing.T) {
	m := dense(t, DefaultParams())
	if got := m.HeightFraction(altitude(1.5)); gomath.Abs(got) > 1e-9 {
		t.Errorf("HeightFraction(inner) = %v, want 0", got)
	}
	if got := m.HeightFraction(altitude(5)); gomath.Abs(got-1) > 1e-9 {
		t.Errorf("HeightFraction(outer) = %v, want 1", got)
	}
}

func TestDensityForCloud(t *testing.T) {
	tests := []struct {
		name      string
		height    float64
		cloudType float64
		want      float64
	}{
		{"cumulus core", 0.5, 1, 1},
		{"cumulus base", 0, 1, 0},
		{"stratus above its top", 0.5, 0, 0},
		{"stratus core", 0.15, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DensityForCloud(tt.height, tt.cloudType); gomath.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DensityForCloud(%v, %v) = %v, want %v", tt.height, tt.cloudType, got, tt.want)
			}
		})
	}
}

func TestSampleCloudDensityClamped(t *testing.T) {
	values := []float64{-3, 0, 0.25, 0.5, 1, 7}
	for _, a := range values {
		for _, b := range values {
			m, err := NewModel(newScattering(t), DefaultParams(),
				constVolume{X: a, Y: b, Z: a, W: b},
				constVolume{X: b, Y: a, Z: b},
				const2D{X: a, Y: b, Z: a})
			if err != nil {
				t.Fatal(err)
			}
			for _, h := range []float64{1.5, 1.6, 2, 3, 4.9} {
				for _, expensive := range []bool{false, true} {
					d := m.SampleCloudDensity(altitude(h), expensive, 0)
					if d < 0 || d > 1 || gomath.IsNaN(d) {
						t.Fatalf("SampleCloudDensity(h=%v, noise %v/%v) = %v, want [0,1]", h, a, b, d)
					}
				}
			}
		}
	}
}

func TestZeroCoverageHasNoClouds(t *testing.T) {
	p := DefaultParams()
	p.Coverage = 0
	m := dense(t, p)
	for _, h := range []float64{1.5, 2, 3, 4, 5} {
		for _, expensive := range []bool{false, true} {
			if d := m.SampleCloudDensity(altitude(h), expensive, 0); d != 0 {
				t.Errorf("SampleCloudDensity(h=%v) = %v, want 0", h, d)
			}
		}
	}
	colour, _, distance := m.ApplyClouds(7, 3, viewport, math.Vec4{X: 0.2, Y: 0.3, Z: 0.5, W: 1}, math.Vec3{Y: 1})
	if colour.W != 0 || gomath.Abs(colour.Z-0.5) > 1e-12 {
		t.Errorf("ApplyClouds() colour = %v, want the background with zero alpha", colour)
	}
	if distance.X != -1 {
		t.Errorf("ApplyClouds() distance = %v, want -1", distance.X)
	}
}

func TestOutsideShellsIsEmpty(t *testing.T) {
	m := dense(t, DefaultParams())
	for _, h := range []float64{0, 1.4, 5.1, 20} {
		if d := m.SampleCloudDensity(altitude(h), true, 0); d != 0 {
			t.Errorf("SampleCloudDensity(h=%v) = %v, want 0", h, d)
		}
	}
}

func TestRaymarchToLight(t *testing.T) {
	m := dense(t, DefaultParams())
	if T := m.RaymarchToLight(altitude(3), 0.01, math.Vec3{Y: 1}); T <= 0 || T >= 1 {
		t.Errorf("RaymarchToLight() in cloud = %v, want in (0,1)", T)
	}
	if T := m.RaymarchToLight(altitude(0.5), 0.01, math.Vec3{Y: -1}); T != 1 {
		t.Errorf("RaymarchToLight() below the layer = %v, want 1", T)
	}
}

func TestMarchBounds(t *testing.T) {
	m := dense(t, DefaultParams())
	up := math.Vec3{Y: 1}
	tests := []struct {
		name       string
		r          atmosphere.Ray
		ok         bool
		start, end float64
	}{
		{"below looking up", atmosphere.Ray{Origin: altitude(0.5), Direction: up}, true, 1.5, 5},
		{"below looking down", atmosphere.Ray{Origin: altitude(0.5), Direction: up.Neg()}, false, 0, 0},
		{"inside looking up", atmosphere.Ray{Origin: altitude(3), Direction: up}, true, 3, 5},
		{"inside looking down", atmosphere.Ray{Origin: altitude(3), Direction: up.Neg()}, true, 3, 1.5},
		{"above looking down", atmosphere.Ray{Origin: altitude(8), Direction: up.Neg()}, true, 5, 1.5},
		{"above looking up", atmosphere.Ray{Origin: altitude(8), Direction: up}, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := m.MarchBounds(tt.r)
			if ok != tt.ok {
				t.Fatalf("MarchBounds() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if gomath.Abs(b.Start.Y-tt.start) > 1e-6 || gomath.Abs(b.End.Y-tt.end) > 1e-6 {
				t.Errorf("MarchBounds() = %v..%v, want altitudes %v..%v", b.Start.Y, b.End.Y, tt.start, tt.end)
			}
		})
	}
}

func TestComputeFogAmount(t *testing.T) {
	m := dense(t, DefaultParams())
	cam := altitude(0.5)
	if got := m.ComputeFogAmount(cam, cam, 0.2); got != 0 {
		t.Errorf("ComputeFogAmount() at camera = %v, want 0", got)
	}
	near := m.ComputeFogAmount(math.Vec3{Z: 10}, cam, 0.2)
	far := m.ComputeFogAmount(math.Vec3{Z: 200}, cam, 0.2)
	if !(near < far && far < 1) {
		t.Errorf("ComputeFogAmount() near %v far %v, want increasing below 1", near, far)
	}
}

func TestApplyCloudsOverhead(t *testing.T) {
	m := dense(t, DefaultParams())
	bg := math.Vec4{X: 0.2, Y: 0.3, Z: 0.5, W: 1}
	colour, emission, distance := m.ApplyClouds(7, 3, viewport, bg, math.Vec3{Y: 1})
	if colour.W < 0.5 {
		t.Errorf("cloud alpha = %v, want an opaque cloud", colour.W)
	}
	if distance.X < 0.99 || distance.X > 1.2 {
		t.Errorf("cloud distance = %v km, want about 1 km to the cloud base", distance.X)
	}
	if emission.W != 1 {
		t.Errorf("emission alpha = %v, want 1", emission.W)
	}
}
