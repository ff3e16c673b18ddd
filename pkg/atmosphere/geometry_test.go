package atmosphere

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/math"
)

func TestRaySphereIntersectNearest(t *testing.T) {
	const R = 6360.0
	tests := []struct {
		name   string
		ray    Ray
		valid  bool
		wantT  float64
		center math.Vec3
	}{
		{
			name:  "outside looking in",
			ray:   Ray{Origin: math.Vec3{Y: 2 * R}, Direction: math.Vec3{Y: -1}},
			valid: true,
			wantT: R,
		},
		{
			name:  "outside looking away",
			ray:   Ray{Origin: math.Vec3{Y: 2 * R}, Direction: math.Vec3{Y: 1}},
			valid: false,
		},
		{
			name:  "inside returns exit",
			ray:   Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}},
			valid: true,
			wantT: R,
		},
		{
			name:  "passes beside",
			ray:   Ray{Origin: math.Vec3{X: 2 * R, Y: 2 * R}, Direction: math.Vec3{X: -1}},
			valid: false,
		},
		{
			name:   "offset centre",
			ray:    Ray{Origin: math.Vec3{}, Direction: math.Vec3{Z: 1}},
			center: math.Vec3{Z: 10},
			valid:  true,
			wantT:  10 + R,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RaySphereIntersectNearest(tt.ray, tt.center, R)
			if got.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tt.valid)
			}
			if !tt.valid {
				return
			}
			if gomath.Abs(got.T-tt.wantT) > 1e-6 {
				t.Errorf("T = %v, want %v", got.T, tt.wantT)
			}
			if got.Point.Distance(tt.ray.Step(got.T)) > 1e-9 {
				t.Errorf("Point = %v, want origin + T*dir", got.Point)
			}
		})
	}
}

func TestRaySphereIntersect(t *testing.T) {
	r := Ray{Origin: math.Vec3{Z: -10}, Direction: math.Vec3{Z: 1}}

	near, far, n := RaySphereIntersect(r, math.Vec3{}, 5, Intersection{}, false)
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	if gomath.Abs(near.T-5) > 1e-9 || gomath.Abs(far.T-15) > 1e-9 {
		t.Errorf("hits = (%v, %v), want (5, 15)", near.T, far.T)
	}

	ground := Intersection{Valid: true, T: 8}
	near, _, n = RaySphereIntersect(r, math.Vec3{}, 5, ground, true)
	if n != 1 || gomath.Abs(near.T-5) > 1e-9 {
		t.Errorf("clamped to ground: count = %d, near = %v, want 1 hit at 5", n, near.T)
	}

	inside := Ray{Origin: math.Vec3{}, Direction: math.Vec3{Z: 1}}
	near, far, n = RaySphereIntersect(inside, math.Vec3{}, 5, Intersection{}, false)
	if n != 1 || far.Valid || gomath.Abs(near.T-5) > 1e-9 {
		t.Errorf("inside: count = %d, near = %v, want single exit at 5", n, near.T)
	}

	if _, _, n = RaySphereIntersect(r, math.Vec3{X: 100}, 5, Intersection{}, false); n != 0 {
		t.Errorf("miss count = %d, want 0", n)
	}
}
