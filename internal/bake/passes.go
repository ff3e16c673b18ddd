package bake

import (
	"context"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscatter/internal/logger"
	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/clouds"
	"github.com/Faultbox/skyscatter/pkg/scattering"
)

// Pass names.
const (
	PassTransmittance     = "transmittance"
	PassMultiScatter      = "multi_scatter"
	PassSkyView           = "sky_view"
	PassAerialPerspective = "aerial_perspective"
	PassWorley            = "worley"
	PassPerlinWorley      = "perlin_worley"
	PassCurl              = "curl"
	PassWeather           = "weather"
	PassSceneDepth        = "scene_depth"
	PassSky               = "sky"
	PassClouds            = "volumetric_clouds"
	PassResolve           = "clouds_resolve"
)

func logSize(pass string, fields ...zap.Field) {
	logger.Named("bake").Info("baking", append([]zap.Field{zap.String("pass", pass)}, fields...)...)
}

// TransmittancePass bakes the transmittance LUT.
func TransmittancePass() Pass {
	return Pass{
		Name: PassTransmittance,
		Run: func(ctx context.Context, env *Env) error {
			size := env.Scene.Resolutions.Transmittance
			logSize(PassTransmittance, zap.Int("width", size.Width), zap.Int("height", size.Height))
			lut, err := BakeTransmittance(ctx, env.Dispatcher, env.Scene.Atmosphere, size.Width, size.Height)
			if err != nil {
				return err
			}
			env.Res.Transmittance = lut
			return nil
		},
	}
}

// MultiScatterPass bakes the multi-scattering LUT.
func MultiScatterPass() Pass {
	return Pass{
		Name: PassMultiScatter,
		Deps: []string{PassTransmittance},
		Run: func(ctx context.Context, env *Env) error {
			if env.Res.Transmittance == nil {
				return missing(PassTransmittance)
			}
			res := env.Scene.Resolutions.MultiScatter
			logSize(PassMultiScatter, zap.Int("size", res))
			lut, err := BakeMultiScatter(ctx, env.Dispatcher, env.Scene.Atmosphere, env.Res.Transmittance, res, env.Scene.MultiScatPowerSerie)
			if err != nil {
				return err
			}
			env.Res.MultiScatter = lut
			return nil
		},
	}
}

func lutInputs(env *Env) error {
	switch {
	case env.Res.Transmittance == nil:
		return missing(PassTransmittance)
	case env.Res.MultiScatter == nil:
		return missing(PassMultiScatter)
	case env.Scene.Camera == nil:
		return missing("camera")
	}
	return nil
}

// SkyViewPass bakes the sky-view LUT at the camera position.
func SkyViewPass() Pass {
	return Pass{
		Name: PassSkyView,
		Deps: []string{PassTransmittance, PassMultiScatter},
		Run: func(ctx context.Context, env *Env) error {
			if err := lutInputs(env); err != nil {
				return err
			}
			s := env.Scene
			m, err := SkyViewModel(s.Atmosphere, env.Res.Transmittance, env.Res.MultiScatter, s.Camera)
			if err != nil {
				return err
			}
			size := s.Resolutions.SkyView
			logSize(PassSkyView, zap.Int("width", size.Width), zap.Int("height", size.Height))
			lut, err := BakeSkyView(ctx, env.Dispatcher, m, s.Camera.Position, s.SunDir, size.Width, size.Height)
			if err != nil {
				return err
			}
			env.Res.SkyView = lut
			return nil
		},
	}
}

// AerialPerspectivePass bakes the camera froxel volume.
func AerialPerspectivePass() Pass {
	return Pass{
		Name: PassAerialPerspective,
		Deps: []string{PassTransmittance, PassMultiScatter},
		Run: func(ctx context.Context, env *Env) error {
			if err := lutInputs(env); err != nil {
				return err
			}
			s := env.Scene
			m, err := AerialPerspectiveModel(s.Atmosphere, env.Res.Transmittance, env.Res.MultiScatter, s.Camera)
			if err != nil {
				return err
			}
			size := s.Resolutions.Volume
			logSize(PassAerialPerspective, zap.Int("width", size.Width), zap.Int("height", size.Height),
				zap.Int("depth", scattering.AerialPerspectiveSlices))
			volume, err := BakeAerialPerspective(ctx, env.Dispatcher, m, s.SunDir, size.Width, size.Height)
			if err != nil {
				return err
			}
			env.Res.AerialPerspective = volume
			return nil
		},
	}
}

// WorleyPass bakes the erosion noise volume.
func WorleyPass() Pass {
	return Pass{
		Name: PassWorley,
		Run: func(ctx context.Context, env *Env) error {
			size := env.Scene.Resolutions.Worley
			logSize(PassWorley, zap.Int("size", size))
			volume, err := BakeWorley(ctx, env.Dispatcher, size)
			if err != nil {
				return err
			}
			env.Res.Worley = volume
			return nil
		},
	}
}

// PerlinWorleyPass bakes the base shape noise volume.
func PerlinWorleyPass() Pass {
	return Pass{
		Name: PassPerlinWorley,
		Run: func(ctx context.Context, env *Env) error {
			size := env.Scene.Resolutions.PerlinWorley
			logSize(PassPerlinWorley, zap.Int("size", size))
			volume, err := BakePerlinWorley(ctx, env.Dispatcher, size)
			if err != nil {
				return err
			}
			env.Res.PerlinWorley = volume
			return nil
		},
	}
}

// CurlPass bakes the curl noise.
func CurlPass() Pass {
	return Pass{
		Name: PassCurl,
		Run: func(ctx context.Context, env *Env) error {
			size := env.Scene.Resolutions.Curl
			logSize(PassCurl, zap.Int("size", size))
			curl, err := BakeCurl(ctx, env.Dispatcher, size)
			if err != nil {
				return err
			}
			env.Res.Curl = curl
			return nil
		},
	}
}

// WeatherPass bakes the weather map.
func WeatherPass() Pass {
	return Pass{
		Name: PassWeather,
		Run: func(ctx context.Context, env *Env) error {
			size := env.Scene.Resolutions.Weather
			logSize(PassWeather, zap.Int("size", size))
			weather, err := BakeWeather(ctx, env.Dispatcher, env.Scene.Weather, size)
			if err != nil {
				return err
			}
			env.Res.Weather = weather
			return nil
		},
	}
}

// SceneDepthPass rasterizes the planet surface into a depth buffer.
func SceneDepthPass() Pass {
	return Pass{
		Name: PassSceneDepth,
		Run: func(ctx context.Context, env *Env) error {
			s := env.Scene
			if s.Camera == nil {
				return missing("camera")
			}
			depth, err := BakeSceneDepth(ctx, env.Dispatcher, s.Camera, s.Atmosphere.BottomRadius, s.Width, s.Height)
			if err != nil {
				return err
			}
			env.Res.SceneDepth = depth
			return nil
		},
	}
}

// ScatteringModel builds the frame's pixel resolver from the baked LUTs.
func ScatteringModel(env *Env) (*scattering.Model, error) {
	if err := lutInputs(env); err != nil {
		return nil, err
	}
	s, r := env.Scene, env.Res
	atmo, err := atmosphere.NewModel(s.Atmosphere, atmosphere.Settings{
		VariableSampleCount: true,
		MieRayPhase:         true,
		MultiScatApprox:     true,
	},
		atmosphere.WithTransmittance(r.Transmittance),
		atmosphere.WithMultiScattering(r.MultiScatter),
		atmosphere.WithCamera(s.Camera))
	if err != nil {
		return nil, err
	}

	var options []scattering.Option
	if s.FastSky {
		if r.SkyView == nil {
			return nil, missing(PassSkyView)
		}
		options = append(options, scattering.WithSkyView(r.SkyView))
	}
	if s.FastAerialPerspective {
		if r.AerialPerspective == nil {
			return nil, missing(PassAerialPerspective)
		}
		options = append(options, scattering.WithAerialPerspective(r.AerialPerspective))
	}
	return scattering.NewModel(atmo, scattering.Settings{
		ColorTransmittance:    s.ColorTransmittance,
		FastSky:               s.FastSky,
		FastAerialPerspective: s.FastAerialPerspective,
		RenderSunDisk:         s.SunDisk,
		BloomSunDisk:          s.BloomSunDisk,
	}, options...)
}

// SkyPass renders the sky and aerial perspective of the frame.
func SkyPass() Pass {
	return Pass{
		Name: PassSky,
		Deps: []string{PassSkyView, PassAerialPerspective, PassSceneDepth},
		Run: func(ctx context.Context, env *Env) error {
			sc, err := ScatteringModel(env)
			if err != nil {
				return err
			}
			env.sky = sc
			s := env.Scene
			logSize(PassSky, zap.Int("width", s.Width), zap.Int("height", s.Height))
			L, T, err := RenderSky(ctx, env.Dispatcher, sc, env.Res.SceneDepth, s.SunDir, s.Width, s.Height)
			if err != nil {
				return err
			}
			env.Res.SkyLuminance = L
			env.Res.SkyTransmittance = T
			return nil
		},
	}
}

// CloudsPass raymarches the cloud layer over the sky image.
func CloudsPass() Pass {
	return Pass{
		Name: PassClouds,
		Deps: []string{PassSky, PassWorley, PassPerlinWorley, PassCurl, PassWeather},
		Run: func(ctx context.Context, env *Env) error {
			r := env.Res
			switch {
			case r.SkyLuminance == nil:
				return missing(PassSky)
			case r.PerlinWorley == nil:
				return missing(PassPerlinWorley)
			case r.Worley == nil:
				return missing(PassWorley)
			case r.Weather == nil:
				return missing(PassWeather)
			}
			sc := env.sky
			if sc == nil {
				var err error
				if sc, err = ScatteringModel(env); err != nil {
					return err
				}
			}
			var options []clouds.Option
			if r.Curl != nil {
				options = append(options, clouds.WithCurl(r.Curl))
			}
			cm, err := clouds.NewModel(sc, env.Scene.Clouds, r.PerlinWorley, r.Worley, r.Weather, options...)
			if err != nil {
				return err
			}
			layers, err := RenderClouds(ctx, env.Dispatcher, cm, r.SkyLuminance, env.Scene.SunDir)
			if err != nil {
				return err
			}
			r.CloudColour, r.CloudEmission, r.CloudDistance = layers.Colour, layers.Emission, layers.Distance
			return nil
		},
	}
}

// ResolvePass writes the final frame. Without clouds it is the sky image.
func ResolvePass(withClouds bool) Pass {
	deps := []string{PassSky}
	if withClouds {
		deps = append(deps, PassClouds)
	}
	return Pass{
		Name: PassResolve,
		Deps: deps,
		Run: func(ctx context.Context, env *Env) error {
			r := env.Res
			if r.SkyLuminance == nil {
				return missing(PassSky)
			}
			if !withClouds {
				r.Frame = r.SkyLuminance
				return nil
			}
			if r.CloudColour == nil {
				return missing(PassClouds)
			}
			frame, err := ResolveClouds(ctx, env.Dispatcher, CloudLayers{
				Colour:   r.CloudColour,
				Emission: r.CloudEmission,
				Distance: r.CloudDistance,
			}, env.Scene.CloudBloom)
			if err != nil {
				return err
			}
			r.Frame = frame
			return nil
		},
	}
}

// LUTPasses bakes every texture the frame passes read.
func LUTPasses() []Pass {
	return []Pass{
		TransmittancePass(),
		MultiScatterPass(),
		SkyViewPass(),
		AerialPerspectivePass(),
		WorleyPass(),
		PerlinWorleyPass(),
		CurlPass(),
		WeatherPass(),
	}
}

// FramePasses bakes the atmosphere LUTs and renders one frame, with or
// without the cloud layer.
func FramePasses(withClouds bool) []Pass {
	passes := []Pass{
		TransmittancePass(),
		MultiScatterPass(),
		SkyViewPass(),
		AerialPerspectivePass(),
		SceneDepthPass(),
		SkyPass(),
	}
	if withClouds {
		passes = append(passes, WorleyPass(), PerlinWorleyPass(), CurlPass(), WeatherPass(), CloudsPass())
	}
	return append(passes, ResolvePass(withClouds))
}
