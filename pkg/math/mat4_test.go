package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I = %v, want %v", result, m)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
	if d := m.TransformDirection(Vec3{1, 2, 3}); d != (Vec3{1, 2, 3}) {
		t.Errorf("TransformDirection should ignore translation, got %v", d)
	}
}

func TestInverse(t *testing.T) {
	view := LookAt(Vec3{3, 4, 5}, Vec3{0, 0, 0}, Vec3{0, 1, 0})
	proj := Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000)
	vp := proj.Mul(view)

	inv, ok := vp.Inverse()
	if !ok {
		t.Fatal("view-projection should be invertible")
	}
	id := vp.Mul(inv)
	want := Identity()
	for i := range id {
		if abs(id[i]-want[i]) > 1e-9 {
			t.Fatalf("M * M^-1 element %d = %v, want %v", i, id[i], want[i])
		}
	}
}

func TestInverseSingular(t *testing.T) {
	_, ok := Scale(1, 0, 1).Inverse()
	if ok {
		t.Error("Inverse of a singular matrix should report false")
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := Perspective(math.Pi/2, 1, 1, 100)
	near := proj.MulVec4(Vec4{0, 0, -1, 1}).PerspectiveDivide()
	far := proj.MulVec4(Vec4{0, 0, -100, 1}).PerspectiveDivide()
	if abs(near.Z+1) > 1e-9 || abs(far.Z-1) > 1e-9 {
		t.Errorf("NDC depth = (%v, %v), want (-1, 1)", near.Z, far.Z)
	}
}
