package math

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{-1, 0},
		{0.5, 0.5},
		{2, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := Saturate(tt.x); got != tt.want {
			t.Errorf("Saturate(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestSmoothStep(t *testing.T) {
	if got := SmoothStep(0, 1, 0.5); got != 0.5 {
		t.Errorf("SmoothStep(0, 1, 0.5) = %v, want 0.5", got)
	}
	if got := SmoothStep(0, 1, -3); got != 0 {
		t.Errorf("SmoothStep below edge = %v, want 0", got)
	}
	if got := SmoothStep(2, 2, 3); got != 1 {
		t.Errorf("degenerate SmoothStep = %v, want 1", got)
	}
}

func TestRemap(t *testing.T) {
	if got := Remap(0.5, 0, 1, 10, 20); got != 15 {
		t.Errorf("Remap() = %v, want 15", got)
	}
	if got := Remap(0.5, 1, 1, 3, 4); got != 3 {
		t.Errorf("degenerate Remap() = %v, want 3", got)
	}
}

func TestModAndFract(t *testing.T) {
	if got := Mod(-1, 4); got != 3 {
		t.Errorf("Mod(-1, 4) = %v, want 3", got)
	}
	if got := Fract(-0.25); got != 0.75 {
		t.Errorf("Fract(-0.25) = %v, want 0.75", got)
	}
}
