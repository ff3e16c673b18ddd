package noise

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/math"
)

func TestHashRange(t *testing.T) {
	for n := -500; n < 500; n++ {
		if h := Hash(n); h < 0 || h >= 1 {
			t.Fatalf("Hash(%d) = %v, want [0,1)", n, h)
		}
	}
}

func TestValueNoiseMatchesHashOnLattice(t *testing.T) {
	p := math.Vec3{X: 3, Y: 2, Z: 1}
	want := Hash(3 + 2*57 + 113)
	if got := ValueNoise(p); gomath.Abs(got-want) > 1e-12 {
		t.Errorf("ValueNoise(%v) = %v, want %v", p, got, want)
	}
}

func TestWorleyTiles(t *testing.T) {
	tests := []struct {
		name  string
		p     math.Vec3
		cells float64
	}{
		{"low frequency", math.Vec3{X: 0.1, Y: 0.7, Z: 0.3}, 2},
		{"high frequency", math.Vec3{X: 0.93, Y: 0.05, Z: 0.5}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Worley(tt.p, tt.cells)
			for _, shift := range []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}} {
				b := Worley(tt.p.Add(shift), tt.cells)
				if gomath.Abs(a-b) > 1e-9 {
					t.Errorf("Worley(%v + %v) = %v, want %v", tt.p, shift, b, a)
				}
			}
			if a < 0 || a > 1 {
				t.Errorf("Worley(%v) = %v, want [0,1]", tt.p, a)
			}
		})
	}
}

func TestPerlinZeroOnLattice(t *testing.T) {
	p := math.Vec4{X: 2, Y: 5, Z: 1, W: 0}
	if got := Perlin4D(p, math.Vec4{X: 8, Y: 8, Z: 8, W: 8}); gomath.Abs(got) > 1e-12 {
		t.Errorf("Perlin4D(%v) = %v, want 0", p, got)
	}
}

func TestPerlinTiles(t *testing.T) {
	rep := math.Vec4{X: 4, Y: 4, Z: 4, W: 4}
	p := math.Vec4{X: 0.37, Y: 1.81, Z: 2.2, W: 0.5}
	a := Perlin4D(p, rep)
	b := Perlin4D(p.Add(math.Vec4{X: 4, Z: 8}), rep)
	if gomath.Abs(a-b) > 1e-9 {
		t.Errorf("Perlin4D shifted by period = %v, want %v", b, a)
	}
}

func TestPerlinFBMRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		f := float64(i) / 200
		p := math.Vec3{X: f, Y: math.Fract(f * 7.1), Z: math.Fract(f * 3.3)}
		if v := PerlinFBM(p, 8, 3); v < 0 || v > 1 {
			t.Fatalf("PerlinFBM(%v) = %v, want [0,1]", p, v)
		}
	}
}

func TestTexelsInUnitRange(t *testing.T) {
	in := func(v math.Vec4) bool {
		for _, c := range []float64{v.X, v.Y, v.Z, v.W} {
			if c < 0 || c > 1 || gomath.IsNaN(c) {
				return false
			}
		}
		return true
	}
	weather := DefaultWeatherParams()
	for i := 0; i < 16; i++ {
		f := (float64(i) + 0.5) / 16
		coord := math.Vec3{X: f, Y: 1 - f, Z: math.Fract(f * 5)}
		if v := WorleyTexel(coord); !in(v) {
			t.Errorf("WorleyTexel(%v) = %v, want [0,1]", coord, v)
		}
		if v := PerlinWorleyTexel(coord); !in(v) {
			t.Errorf("PerlinWorleyTexel(%v) = %v, want [0,1]", coord, v)
		}
		uv := math.Vec2{X: f, Y: math.Fract(f * 3)}
		if v := CurlTexel(uv, 4); !in(v) {
			t.Errorf("CurlTexel(%v) = %v, want [0,1]", uv, v)
		}
		if v := weather.Texel(uv); !in(v) {
			t.Errorf("Weather Texel(%v) = %v, want [0,1]", uv, v)
		}
	}
}

func TestPerlinWorleyDilatesPerlin(t *testing.T) {
	coord := math.Vec3{X: 0.2, Y: 0.4, Z: 0.6}
	w := 1 - Worley(coord, 4)
	if got := PerlinWorleyTexel(coord).X; got < w*0.625-1e-12 {
		t.Errorf("PerlinWorleyTexel().X = %v, want at least %v", got, w*0.625)
	}
}

func TestWeatherDeterministic(t *testing.T) {
	w := DefaultWeatherParams()
	uv := math.Vec2{X: 0.3, Y: 0.9}
	if a, b := w.Texel(uv), w.Texel(uv); a != b {
		t.Errorf("Texel not deterministic: %v vs %v", a, b)
	}
}
