package atmosphere

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// Ray is an origin and a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// Step returns the point at distance t along the ray.
func (r Ray) Step(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Intersection is the result of a ray–sphere test. Point and T are
// meaningless when Valid is false.
type Intersection struct {
	Point math.Vec3
	Valid bool
	T     float64
}

func solveSphere(r Ray, center math.Vec3, radius float64) (t0, t1 float64, ok bool) {
	s0 := r.Origin.Sub(center)
	a := r.Direction.Dot(r.Direction)
	b := 2 * r.Direction.Dot(s0)
	c := s0.Dot(s0) - radius*radius
	delta := b*b - 4*a*c
	if delta < 0 || a == 0 {
		return 0, 0, false
	}
	sq := gomath.Sqrt(delta)
	return (-b - sq) / (2 * a), (-b + sq) / (2 * a), true
}

func hit(r Ray, t float64) Intersection {
	return Intersection{Point: r.Step(t), Valid: true, T: t}
}

// RaySphereIntersectNearest returns the smallest non-negative root.
func RaySphereIntersectNearest(r Ray, center math.Vec3, radius float64) Intersection {
	t0, t1, ok := solveSphere(r, center, radius)
	switch {
	case !ok:
		return Intersection{}
	case t0 >= 0:
		return hit(r, t0)
	case t1 >= 0:
		return hit(r, t1)
	}
	return Intersection{}
}

// RaySphereIntersect returns the valid hits of r against the sphere, nearest
// first, and how many there are. When clampToGround is set and ground is a
// valid hit, roots farther than the ground are discarded.
func RaySphereIntersect(r Ray, center math.Vec3, radius float64, ground Intersection, clampToGround bool) (near, far Intersection, count int) {
	t0, t1, ok := solveSphere(r, center, radius)
	if !ok {
		return Intersection{}, Intersection{}, 0
	}

	var hits [2]Intersection
	for _, t := range [2]float64{t0, t1} {
		if t < 0 {
			continue
		}
		if clampToGround && ground.Valid && t > ground.T {
			continue
		}
		hits[count] = hit(r, t)
		count++
	}
	return hits[0], hits[1], count
}
