package atmosphere

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/math"
)

func TestSubUVRoundTrip(t *testing.T) {
	for _, res := range []float64{8, 32, 256} {
		for u := 0.0; u <= 1.0; u += 0.125 {
			got := FromSubUVsToUnit(FromUnitToSubUVs(u, res), res)
			if gomath.Abs(got-u) > 1e-12 {
				t.Errorf("res %v: round trip of %v = %v", res, u, got)
			}
		}
		if got := FromUnitToSubUVs(0, res); gomath.Abs(got-0.5/res) > 1e-12 {
			t.Errorf("res %v: 0 maps to %v, want first texel centre", res, got)
		}
	}
}

func TestTransmittanceUVRoundTrip(t *testing.T) {
	p := DefaultParameters()
	const steps = 24
	for i := 0; i <= steps; i++ {
		// Stay a metre below the top, where every zenith cosine has d > 0.
		h := p.BottomRadius + (p.TopRadius-p.BottomRadius-0.001)*float64(i)/steps
		for j := 0; j <= steps; j++ {
			mu := -1 + 2*float64(j)/steps
			uv := p.TransmittanceParamsToUV(h, mu)
			gotH, gotMu := p.UVToTransmittanceParams(uv)
			if gomath.Abs(gotH-h) > 1e-4 || gomath.Abs(gotMu-mu) > 1e-4 {
				t.Errorf("(%v, %v) -> %v -> (%v, %v)", h, mu, uv, gotH, gotMu)
			}
		}
	}
}

func TestTransmittanceUVCorners(t *testing.T) {
	p := DefaultParameters()
	uv := p.TransmittanceParamsToUV(p.BottomRadius, 1)
	if gomath.Abs(uv.X) > 1e-9 || gomath.Abs(uv.Y) > 1e-9 {
		t.Errorf("ground zenith uv = %v, want (0, 0)", uv)
	}
	uv = p.TransmittanceParamsToUV(p.TopRadius, 0)
	if gomath.Abs(uv.Y-1) > 1e-9 {
		t.Errorf("top uv.y = %v, want 1", uv.Y)
	}
}

func TestSkyViewUVRoundTrip(t *testing.T) {
	p := DefaultParameters()
	size := math.Vec2{X: 192, Y: 108}
	const steps = 20
	for _, altitude := range []float64{0.01, 1, 10, 60} {
		h := p.BottomRadius + altitude
		for i := 0; i <= steps; i++ {
			vz := -1 + 2*float64(i)/steps
			for j := 0; j <= steps; j++ {
				lv := -1 + 2*float64(j)/steps
				ground := p.SkyViewIntersectsGround(vz, h)
				uv := p.SkyViewParamsToUV(ground, vz, lv, h, size)
				gotVz, gotLv := p.UVToSkyViewParams(uv, h, size)
				if gomath.Abs(gotVz-vz) > 1e-4 || gomath.Abs(gotLv-lv) > 1e-4 {
					t.Errorf("h=%v (%v, %v) -> %v -> (%v, %v)", h, vz, lv, uv, gotVz, gotLv)
				}
			}
		}
	}
}

func TestSkyViewHorizonSplit(t *testing.T) {
	p := DefaultParameters()
	size := math.Vec2{X: 64, Y: 64}
	h := p.BottomRadius + 1
	above := p.SkyViewParamsToUV(false, 0.5, 0, h, size)
	below := p.SkyViewParamsToUV(true, -0.5, 0, h, size)
	if above.Y >= 0.5 || below.Y <= 0.5 {
		t.Errorf("above.y = %v, below.y = %v; horizon should split at 0.5", above.Y, below.Y)
	}
}

func TestMultiScatteringUVAtGrid(t *testing.T) {
	p := DefaultParameters()
	const res = 32.0
	for i := 0; i < int(res); i += 7 {
		for j := 0; j < int(res); j += 5 {
			u := float64(i) / (res - 1)
			v := float64(j) / (res - 1)
			sunZenithCos := u*2 - 1
			h := p.BottomRadius + v*(p.TopRadius-p.BottomRadius)
			uv := p.MultiScatteringParamsToUV(h, sunZenithCos, res)
			want := math.Vec2{X: (float64(i) + 0.5) / res, Y: (float64(j) + 0.5) / res}
			if uv.Sub(want).Length() > 1e-9 {
				t.Errorf("grid (%d, %d) uv = %v, want %v", i, j, uv, want)
			}
		}
	}
}
