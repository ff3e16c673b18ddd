// Package config loads skyscatter settings: built-in defaults, then a YAML
// file, then command-line flags.
package config

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/clouds"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/noise"
)

// Vec3 is a YAML-friendly triple.
type Vec3 [3]float64

// Math converts the triple to a vector.
func (v Vec3) Math() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func vec3(v math.Vec3) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Config holds every skyscatter setting.
type Config struct {
	Atmosphere  AtmosphereConfig `yaml:"atmosphere"`
	Resolutions ResolutionConfig `yaml:"resolutions"`
	Weather     WeatherConfig    `yaml:"weather"`
	Clouds      CloudsConfig     `yaml:"clouds"`
	Render      RenderConfig     `yaml:"render"`
	Workers     int              `yaml:"workers"` // 0 uses every CPU
	Logging     LoggingConfig    `yaml:"logging"`
}

// DensityLayerConfig mirrors atmosphere.DensityLayer.
type DensityLayerConfig struct {
	Width        float64 `yaml:"width"`
	ExpTerm      float64 `yaml:"exp_term"`
	ExpScale     float64 `yaml:"exp_scale"`
	LinearTerm   float64 `yaml:"linear_term"`
	ConstantTerm float64 `yaml:"constant_term"`
}

// AtmosphereConfig holds the planet and medium. Distances are km.
type AtmosphereConfig struct {
	BottomRadius float64 `yaml:"bottom_radius"`
	TopRadius    float64 `yaml:"top_radius"`

	RayleighScattering Vec3                  `yaml:"rayleigh_scattering,flow"`
	RayleighDensity    [2]DensityLayerConfig `yaml:"rayleigh_density"`

	MieScattering Vec3                  `yaml:"mie_scattering,flow"`
	MieExtinction Vec3                  `yaml:"mie_extinction,flow"`
	MiePhaseG     float64               `yaml:"mie_phase_g"`
	MieDensity    [2]DensityLayerConfig `yaml:"mie_density"`

	AbsorptionExtinction Vec3                  `yaml:"absorption_extinction,flow"`
	AbsorptionDensity    [2]DensityLayerConfig `yaml:"absorption_density"`

	GroundAlbedo        Vec3    `yaml:"ground_albedo,flow"`
	SolarIrradiance     Vec3    `yaml:"solar_irradiance,flow"`
	SunIlluminance      Vec3    `yaml:"sun_illuminance,flow"`
	SunIlluminanceScale float64 `yaml:"sun_illuminance_scale"`
	SunAngularRadius    float64 `yaml:"sun_angular_radius"`   // radians
	MaxSunZenithAngle   float64 `yaml:"max_sun_zenith_angle"` // degrees

	MultipleScatteringFactor float64 `yaml:"multiple_scattering_factor"`
	MinSPP                   float64 `yaml:"min_spp"`
	MaxSPP                   float64 `yaml:"max_spp"`
	MultiScatPowerSerie      bool    `yaml:"multi_scat_power_serie"`
}

// Size2 is a 2-D texture resolution.
type Size2 struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ResolutionConfig sizes every baked texture. Noise volumes are cubes and
// the aerial-perspective Volume always has 32 depth slices.
type ResolutionConfig struct {
	Transmittance Size2 `yaml:"transmittance"`
	MultiScatter  int   `yaml:"multi_scatter"`
	SkyView       Size2 `yaml:"sky_view"`
	Volume        Size2 `yaml:"volume"`
	Worley        int   `yaml:"worley"`
	PerlinWorley  int   `yaml:"perlin_worley"`
	Curl          int   `yaml:"curl"`
	Weather       int   `yaml:"weather"`
}

// WeatherConfig shapes the weather map.
type WeatherConfig struct {
	PerlinAmplitude float64 `yaml:"perlin_amplitude"`
	PerlinFrequency float64 `yaml:"perlin_frequency"`
	PerlinScale     float64 `yaml:"perlin_scale"`
	PerlinOctaves   int     `yaml:"perlin_octaves"`
}

// CloudsConfig mirrors clouds.Params.
type CloudsConfig struct {
	WindDirection   Vec3    `yaml:"wind_direction,flow"`
	Speed           float64 `yaml:"speed"`
	Coverage        float64 `yaml:"coverage"`
	Crispiness      float64 `yaml:"crispiness"`
	Curliness       float64 `yaml:"curliness"`
	CurlStrength    float64 `yaml:"curl_strength"`
	Density         float64 `yaml:"density"`
	Absorption      float64 `yaml:"absorption"`
	InnerRadius     float64 `yaml:"inner_radius"`
	OuterRadius     float64 `yaml:"outer_radius"`
	TopColour       Vec3    `yaml:"top_colour,flow"`
	BottomColour    Vec3    `yaml:"bottom_colour,flow"`
	EnablePowder    bool    `yaml:"enable_powder"`
	TopOffset       float64 `yaml:"top_offset"`
	SilverIntensity float64 `yaml:"silver_intensity"`
	SilverSpread    float64 `yaml:"silver_spread"`
	FogFactor       float64 `yaml:"fog_factor"`
	Time            float64 `yaml:"time"`
}

// RenderConfig describes the frame rendered by the render command.
type RenderConfig struct {
	Width                 int     `yaml:"width"`
	Height                int     `yaml:"height"`
	CameraPosition        Vec3    `yaml:"camera_position,flow"` // km, sea level at y = 0
	CameraTarget          Vec3    `yaml:"camera_target,flow"`
	FovY                  float64 `yaml:"fov_y"`                // degrees
	SunAzimuth            float64 `yaml:"sun_azimuth"`
	SunElevation          float64 `yaml:"sun_elevation"`
	Exposure              float64 `yaml:"exposure"`
	FastSky               bool    `yaml:"fast_sky"`
	FastAerialPerspective bool    `yaml:"fast_aerial_perspective"`
	ColorTransmittance    bool    `yaml:"color_transmittance"`
	SunDisk               bool    `yaml:"sun_disk"`
	BloomSunDisk          bool    `yaml:"bloom_sun_disk"`
	Clouds                bool    `yaml:"clouds"`
	CloudBloom            float64 `yaml:"cloud_bloom"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in configuration: an Earth-like atmosphere, a
// broken cumulus layer and a low morning sun.
func Default() *Config {
	cfg := &Config{
		Resolutions: ResolutionConfig{
			Transmittance: Size2{Width: 256, Height: 64},
			MultiScatter:  32,
			SkyView:       Size2{Width: 192, Height: 108},
			Volume:        Size2{Width: 32, Height: 32},
			Worley:        32,
			PerlinWorley:  64,
			Curl:          128,
			Weather:       256,
		},
		Render: RenderConfig{
			Width:                 320,
			Height:                180,
			CameraPosition:        Vec3{0, 0.5, 0},
			CameraTarget:          Vec3{0, 1.5, 10},
			FovY:                  60,
			SunAzimuth:            0,
			SunElevation:          10,
			Exposure:              10,
			FastSky:               true,
			FastAerialPerspective: true,
			SunDisk:               true,
			BloomSunDisk:          true,
			Clouds:                true,
			CloudBloom:            0.05,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
	cfg.SetAtmosphere(atmosphere.DefaultParameters())
	cfg.SetClouds(clouds.DefaultParams())
	w := noise.DefaultWeatherParams()
	cfg.Weather = WeatherConfig{
		PerlinAmplitude: w.Amplitude,
		PerlinFrequency: w.Frequency,
		PerlinScale:     w.Scale,
		PerlinOctaves:   w.Octaves,
	}
	return cfg
}

func layerConfigs(p atmosphere.DensityProfile) [2]DensityLayerConfig {
	var out [2]DensityLayerConfig
	for i, l := range p.Layers {
		out[i] = DensityLayerConfig(l)
	}
	return out
}

func profile(layers [2]DensityLayerConfig) atmosphere.DensityProfile {
	var p atmosphere.DensityProfile
	for i, l := range layers {
		p.Layers[i] = atmosphere.DensityLayer(l)
	}
	return p
}

// SetAtmosphere overwrites the atmosphere section from p.
func (c *Config) SetAtmosphere(p atmosphere.Parameters) {
	c.Atmosphere = AtmosphereConfig{
		BottomRadius:             p.BottomRadius,
		TopRadius:                p.TopRadius,
		RayleighScattering:       vec3(p.RayleighScattering),
		RayleighDensity:          layerConfigs(p.RayleighDensity),
		MieScattering:            vec3(p.MieScattering),
		MieExtinction:            vec3(p.MieExtinction),
		MiePhaseG:                p.MiePhaseFunctionG,
		MieDensity:               layerConfigs(p.MieDensity),
		AbsorptionExtinction:     vec3(p.AbsorptionExtinction),
		AbsorptionDensity:        layerConfigs(p.AbsorptionDensity),
		GroundAlbedo:             vec3(p.GroundAlbedo),
		SolarIrradiance:          vec3(p.SolarIrradiance),
		SunIlluminance:           vec3(p.SunIlluminance),
		SunIlluminanceScale:      p.SunIlluminanceScale,
		SunAngularRadius:         p.SunAngularRadius,
		MaxSunZenithAngle:        gomath.Acos(p.MuSMin) * 180 / gomath.Pi,
		MultipleScatteringFactor: p.MultipleScatteringFactor,
		MinSPP:                   p.RayMarchMinSPP,
		MaxSPP:                   p.RayMarchMaxSPP,
		MultiScatPowerSerie:      c.Atmosphere.MultiScatPowerSerie,
	}
}

// AtmosphereParameters converts the atmosphere section.
func (c *Config) AtmosphereParameters() atmosphere.Parameters {
	a := c.Atmosphere
	mieScattering := a.MieScattering.Math()
	mieExtinction := a.MieExtinction.Math()
	return atmosphere.Parameters{
		SolarIrradiance:          a.SolarIrradiance.Math(),
		SunAngularRadius:         a.SunAngularRadius,
		SunIlluminance:           a.SunIlluminance.Math(),
		SunIlluminanceScale:      a.SunIlluminanceScale,
		BottomRadius:             a.BottomRadius,
		TopRadius:                a.TopRadius,
		RayleighDensity:          profile(a.RayleighDensity),
		RayleighScattering:       a.RayleighScattering.Math(),
		MieDensity:               profile(a.MieDensity),
		MieScattering:            mieScattering,
		MieExtinction:            mieExtinction,
		MieAbsorption:            mieExtinction.Sub(mieScattering).Max(math.Vec3{}),
		MiePhaseFunctionG:        a.MiePhaseG,
		AbsorptionDensity:        profile(a.AbsorptionDensity),
		AbsorptionExtinction:     a.AbsorptionExtinction.Math(),
		GroundAlbedo:             a.GroundAlbedo.Math(),
		MuSMin:                   gomath.Cos(math.ToRadians(a.MaxSunZenithAngle)),
		MultipleScatteringFactor: a.MultipleScatteringFactor,
		RayMarchMinSPP:           a.MinSPP,
		RayMarchMaxSPP:           a.MaxSPP,
	}
}

// SetClouds overwrites the clouds section from p.
func (c *Config) SetClouds(p clouds.Params) {
	c.Clouds = CloudsConfig{
		WindDirection:   vec3(p.WindDirection),
		Speed:           p.Speed,
		Coverage:        p.Coverage,
		Crispiness:      p.Crispiness,
		Curliness:       p.Curliness,
		CurlStrength:    p.CurlStrength,
		Density:         p.Density,
		Absorption:      p.Absorption,
		InnerRadius:     p.InnerRadius,
		OuterRadius:     p.OuterRadius,
		TopColour:       vec3(p.ColorTop),
		BottomColour:    vec3(p.ColorBottom),
		EnablePowder:    p.EnablePowder,
		TopOffset:       p.TopOffset,
		SilverIntensity: p.SilverIntensity,
		SilverSpread:    p.SilverSpread,
		FogFactor:       p.FogFactor,
		Time:            p.Time,
	}
}

// CloudParams converts the clouds section.
func (c *Config) CloudParams() clouds.Params {
	cl := c.Clouds
	return clouds.Params{
		WindDirection:   cl.WindDirection.Math(),
		Speed:           cl.Speed,
		Coverage:        cl.Coverage,
		Crispiness:      cl.Crispiness,
		Curliness:       cl.Curliness,
		CurlStrength:    cl.CurlStrength,
		Density:         cl.Density,
		Absorption:      cl.Absorption,
		InnerRadius:     cl.InnerRadius,
		OuterRadius:     cl.OuterRadius,
		ColorTop:        cl.TopColour.Math(),
		ColorBottom:     cl.BottomColour.Math(),
		EnablePowder:    cl.EnablePowder,
		TopOffset:       cl.TopOffset,
		SilverIntensity: cl.SilverIntensity,
		SilverSpread:    cl.SilverSpread,
		FogFactor:       cl.FogFactor,
		Time:            cl.Time,
	}
}

// WeatherParams converts the weather section.
func (c *Config) WeatherParams() noise.WeatherParams {
	return noise.WeatherParams{
		Amplitude: c.Weather.PerlinAmplitude,
		Frequency: c.Weather.PerlinFrequency,
		Scale:     c.Weather.PerlinScale,
		Octaves:   c.Weather.PerlinOctaves,
	}
}

// SunDirection returns the configured sun direction.
func (c *Config) SunDirection() math.Vec3 {
	return atmosphere.SunDirection(c.Render.SunAzimuth, c.Render.SunElevation)
}

// Camera builds the render camera. Near and far planes are in metres.
func (c *Config) Camera() (*atmosphere.CameraData, error) {
	r := c.Render
	return atmosphere.NewCameraData(
		r.CameraPosition.Math(), r.CameraTarget.Math(), math.Vec3{Y: 1},
		math.ToRadians(r.FovY),
		math.Vec2{X: float64(r.Width), Y: float64(r.Height)},
		0.1, 1e6)
}
