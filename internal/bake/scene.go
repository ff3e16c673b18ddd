package bake

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyscatter/internal/config"
	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/clouds"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/noise"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

// ErrMissingInput is returned when a pass runs before the texture it reads.
var ErrMissingInput = errors.New("missing pass input")

// Scene is everything the passes read besides each other's textures.
type Scene struct {
	Atmosphere          atmosphere.Parameters
	MultiScatPowerSerie bool
	Clouds              clouds.Params
	Weather             noise.WeatherParams
	Resolutions         config.ResolutionConfig

	Camera *atmosphere.CameraData
	SunDir math.Vec3

	// Frame settings.
	Width, Height         int
	FastSky               bool
	FastAerialPerspective bool
	ColorTransmittance    bool
	SunDisk               bool
	BloomSunDisk          bool
	CloudBloom            float64
}

// SceneFromConfig resolves a validated configuration into a Scene.
func SceneFromConfig(cfg *config.Config) (*Scene, error) {
	cam, err := cfg.Camera()
	if err != nil {
		return nil, fmt.Errorf("building camera: %w", err)
	}
	return &Scene{
		Atmosphere:            cfg.AtmosphereParameters(),
		MultiScatPowerSerie:   cfg.Atmosphere.MultiScatPowerSerie,
		Clouds:                cfg.CloudParams(),
		Weather:               cfg.WeatherParams(),
		Resolutions:           cfg.Resolutions,
		Camera:                cam,
		SunDir:                cfg.SunDirection(),
		Width:                 cfg.Render.Width,
		Height:                cfg.Render.Height,
		FastSky:               cfg.Render.FastSky,
		FastAerialPerspective: cfg.Render.FastAerialPerspective,
		ColorTransmittance:    cfg.Render.ColorTransmittance,
		SunDisk:               cfg.Render.SunDisk,
		BloomSunDisk:          cfg.Render.BloomSunDisk,
		CloudBloom:            cfg.Render.CloudBloom,
	}, nil
}

// Resources are the textures produced by the passes. A nil field has not
// been baked yet.
type Resources struct {
	Transmittance     *texture.Texture2D
	MultiScatter      *texture.Texture2D
	SkyView           *texture.Texture2D
	AerialPerspective *texture.Texture3D
	Worley            *texture.Texture3D
	PerlinWorley      *texture.Texture3D
	Curl              *texture.Texture2D
	Weather           *texture.Texture2D

	SkyLuminance     *texture.Texture2D
	SkyTransmittance *texture.Texture2D
	SceneDepth       *texture.Texture2D

	CloudColour   *texture.Texture2D
	CloudEmission *texture.Texture2D
	CloudDistance *texture.Texture2D

	Frame *texture.Texture2D
}

// Named2D lists the baked 2-D textures by file stem, skipping unbaked ones.
func (r *Resources) Named2D() map[string]*texture.Texture2D {
	all := map[string]*texture.Texture2D{
		"transmittance":     r.Transmittance,
		"multi_scatter":     r.MultiScatter,
		"sky_view":          r.SkyView,
		"curl":              r.Curl,
		"weather":           r.Weather,
		"sky_luminance":     r.SkyLuminance,
		"sky_transmittance": r.SkyTransmittance,
		"cloud_colour":      r.CloudColour,
		"cloud_emission":    r.CloudEmission,
		"frame":             r.Frame,
	}
	for name, t := range all {
		if t == nil {
			delete(all, name)
		}
	}
	return all
}

// Named3D lists the baked volumes by file stem, skipping unbaked ones.
func (r *Resources) Named3D() map[string]*texture.Texture3D {
	all := map[string]*texture.Texture3D{
		"aerial_perspective": r.AerialPerspective,
		"worley":             r.Worley,
		"perlin_worley":      r.PerlinWorley,
	}
	for name, t := range all {
		if t == nil {
			delete(all, name)
		}
	}
	return all
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingInput, name)
}
