package bake

import (
	"context"
	gomath "math"
	"testing"

	"github.com/Faultbox/skyscatter/internal/config"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

// tinyConfig keeps every bake small enough for a unit test.
func tinyConfig() *config.Config {
	cfg := config.Default()
	cfg.Resolutions = config.ResolutionConfig{
		Transmittance: config.Size2{Width: 16, Height: 8},
		MultiScatter:  4,
		SkyView:       config.Size2{Width: 8, Height: 8},
		Volume:        config.Size2{Width: 4, Height: 4},
		Worley:        4,
		PerlinWorley:  4,
		Curl:          4,
		Weather:       4,
	}
	cfg.Render.Width = 8
	cfg.Render.Height = 6
	cfg.Render.SunElevation = 30
	return cfg
}

func tinyScene(t *testing.T) *Scene {
	t.Helper()
	scene, err := SceneFromConfig(tinyConfig())
	if err != nil {
		t.Fatalf("SceneFromConfig() error = %v", err)
	}
	return scene
}

func finite(v math.Vec4) bool {
	for _, c := range []float64{v.X, v.Y, v.Z, v.W} {
		if gomath.IsNaN(c) || gomath.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func TestSceneFromConfig(t *testing.T) {
	cfg := tinyConfig()
	scene := tinyScene(t)
	if scene.Width != 8 || scene.Height != 6 {
		t.Errorf("frame size = %dx%d, want 8x6", scene.Width, scene.Height)
	}
	if scene.Camera.Viewport != (math.Vec2{X: 8, Y: 6}) {
		t.Errorf("camera viewport = %v, want 8x6", scene.Camera.Viewport)
	}
	if scene.SunDir != cfg.SunDirection() {
		t.Errorf("SunDir = %v, want %v", scene.SunDir, cfg.SunDirection())
	}
	if scene.Clouds != cfg.CloudParams() {
		t.Errorf("Clouds = %+v, want %+v", scene.Clouds, cfg.CloudParams())
	}
}

func TestFramePasses(t *testing.T) {
	tests := []struct {
		name       string
		withClouds bool
		fast       bool
	}{
		{"fast paths with clouds", true, true},
		{"ray marched sky", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene := tinyScene(t)
			scene.FastSky = tt.fast
			scene.FastAerialPerspective = tt.fast

			g, err := NewGraph(FramePasses(tt.withClouds)...)
			if err != nil {
				t.Fatal(err)
			}
			env := NewEnv(scene, NewDispatcher(2))
			if err := g.Run(context.Background(), env); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			frame := env.Res.Frame
			if frame == nil {
				t.Fatal("Frame was not produced")
			}
			if w, h := frame.Size(); w != 8 || h != 6 {
				t.Fatalf("frame size = %dx%d, want 8x6", w, h)
			}
			for i, v := range frame.Texels {
				if !finite(v) || v.X < 0 || v.Y < 0 || v.Z < 0 {
					t.Fatalf("frame texel %d = %v, want finite non-negative colour", i, v)
				}
			}

			// The top row is sky, the bottom row is ground.
			if got := env.Res.SceneDepth.At(4, 0).X; got != 1 {
				t.Errorf("top row depth = %v, want background", got)
			}
			if got := env.Res.SceneDepth.At(4, 5).X; got >= 1 {
				t.Errorf("bottom row depth = %v, want ground", got)
			}
			if got := env.Res.SkyLuminance.At(4, 0); got.Z <= 0 {
				t.Errorf("sky luminance %v, want light", got)
			}

			if tt.withClouds {
				if env.Res.CloudDistance == nil {
					t.Fatal("cloud layers were not produced")
				}
				ground := env.Res.CloudColour.At(4, 5)
				if ground.W != 0 {
					t.Errorf("cloud alpha over the ground = %v, want 0", ground.W)
				}
			}
		})
	}
}

func TestResolveClouds(t *testing.T) {
	d := NewDispatcher(1)
	layers := CloudLayers{
		Colour:   newFilled(2, 1, math.Vec4{X: 0.2, Y: 0.3, Z: 0.4, W: 0.5}),
		Emission: newFilled(2, 1, math.Vec4{X: 1, Y: 1, Z: 1, W: 1}),
		Distance: newFilled(2, 1, math.Vec4{X: -1, Y: -1, Z: -1, W: -1}),
	}
	layers.Distance.Set(1, 0, math.Vec4{X: 3})

	frame, err := ResolveClouds(context.Background(), d, layers, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := frame.At(0, 0), (math.Vec4{X: 0.2, Y: 0.3, Z: 0.4, W: 1}); got != want {
		t.Errorf("miss texel = %v, want %v", got, want)
	}
	if got, want := frame.At(1, 0), (math.Vec4{X: 0.7, Y: 0.8, Z: 0.9, W: 1}); !closeVec4(got, want, 1e-12) {
		t.Errorf("hit texel = %v, want %v", got, want)
	}
}

func newFilled(w, h int, v math.Vec4) *texture.Texture2D {
	t := texture.NewTexture2D(w, h, texture.Clamp)
	for i := range t.Texels {
		t.Texels[i] = v
	}
	return t
}
