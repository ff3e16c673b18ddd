package config

import "flag"

// Flags are the command-line overrides shared by the skybake commands.
// Only flags given explicitly override the file.
type Flags struct {
	fs *flag.FlagSet

	configPath   string
	debug        bool
	logFile      string
	workers      int
	width        int
	height       int
	sunAzimuth   float64
	sunElevation float64
	exposure     float64
	coverage     float64
	time         float64
	noClouds     bool
	fullSky      bool
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.configPath, "config", "", "Path to config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this file")
	fs.IntVar(&f.workers, "workers", 0, "Bake workers (0 = all CPUs)")
	fs.IntVar(&f.width, "width", 0, "Render width")
	fs.IntVar(&f.height, "height", 0, "Render height")
	fs.Float64Var(&f.sunAzimuth, "sun-azimuth", 0, "Sun azimuth in degrees")
	fs.Float64Var(&f.sunElevation, "sun-elevation", 0, "Sun elevation in degrees")
	fs.Float64Var(&f.exposure, "exposure", 0, "Tone-mapping exposure")
	fs.Float64Var(&f.coverage, "coverage", 0, "Cloud coverage in [0, 1]")
	fs.Float64Var(&f.time, "time", 0, "Cloud animation time in seconds")
	fs.BoolVar(&f.noClouds, "no-clouds", false, "Skip the cloud passes")
	fs.BoolVar(&f.fullSky, "full-sky", false, "Ray-march every pixel instead of using the LUTs")
	return f
}

// ConfigPath returns the -config value.
func (f *Flags) ConfigPath() string {
	return f.path()
}

func (f *Flags) path() string {
	if f == nil {
		return ""
	}
	return f.configPath
}

func (f *Flags) apply(cfg *Config) {
	if f == nil || f.fs == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = f.logFile
		case "workers":
			cfg.Workers = f.workers
		case "width":
			cfg.Render.Width = f.width
		case "height":
			cfg.Render.Height = f.height
		case "sun-azimuth":
			cfg.Render.SunAzimuth = f.sunAzimuth
		case "sun-elevation":
			cfg.Render.SunElevation = f.sunElevation
		case "exposure":
			cfg.Render.Exposure = f.exposure
		case "coverage":
			cfg.Clouds.Coverage = f.coverage
		case "time":
			cfg.Clouds.Time = f.time
		case "no-clouds":
			cfg.Render.Clouds = !f.noClouds
		case "full-sky":
			if f.fullSky {
				cfg.Render.FastSky = false
				cfg.Render.FastAerialPerspective = false
			}
		}
	})
}
