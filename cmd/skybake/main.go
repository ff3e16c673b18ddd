// skybake bakes atmosphere LUTs and cloud noise, and renders sky frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/Faultbox/skyscatter/internal/bake"
	"github.com/Faultbox/skyscatter/internal/config"
	"github.com/Faultbox/skyscatter/internal/logger"
	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "bake":
		err = cmdBake(args)
	case "render":
		err = cmdRender(args)
	case "sample":
		err = cmdSample(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skybake - atmosphere and cloud texture baker

Usage:
  skybake <command> [options]

Commands:
  bake [options] [output_dir]          Bake every LUT and noise texture (default ./bake)
  render [options] [output.tiff]       Render one sky frame (default ./frame.tiff)
  sample [options] <azimuth> <elev>    Print transmittance and luminance along one view
  config [path]                        Write the default configuration

Options (bake, render, sample):
  -config <file>       Config file (default ./skyscatter.yaml or the user config dir)
  -workers <n>         Bake workers (0 = all CPUs)
  -width, -height      Frame size
  -sun-azimuth, -sun-elevation
  -exposure, -coverage, -time, -no-clouds, -full-sky
  -debug, -log-file <file>

Examples:
  skybake bake ./luts
  skybake render -sun-elevation 3 -exposure 20 sunset.tiff
  skybake sample -sun-elevation 45 0 90
  skybake config ./skyscatter.yaml`)
}

// setup parses the shared flags and returns the configuration with logging
// initialised.
func setup(name string, args []string) (*config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, fs, nil
}

func run(cfg *config.Config, passes []bake.Pass) (*bake.Resources, error) {
	scene, err := bake.SceneFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	g, err := bake.NewGraph(passes...)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env := bake.NewEnv(scene, bake.NewDispatcher(cfg.Workers))
	if err := g.Run(ctx, env); err != nil {
		return nil, err
	}
	return env.Res, nil
}

func cmdBake(args []string) error {
	cfg, fs, err := setup("bake", args)
	if err != nil {
		return err
	}
	outputDir := "bake"
	if fs.NArg() > 0 {
		outputDir = fs.Arg(0)
	}

	res, err := run(cfg, bake.LUTPasses())
	if err != nil {
		return err
	}
	written, err := res.Export(outputDir, cfg.Render.Exposure)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Println(path)
	}
	return nil
}

func cmdRender(args []string) error {
	cfg, fs, err := setup("render", args)
	if err != nil {
		return err
	}
	output := "frame.tiff"
	if fs.NArg() > 0 {
		output = fs.Arg(0)
	}

	res, err := run(cfg, bake.FramePasses(cfg.Render.Clouds))
	if err != nil {
		return err
	}
	if err := texture.SaveTIFF(output, res.Frame, texture.Exposure(cfg.Render.Exposure)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", output, res.Frame.Width, res.Frame.Height)
	return nil
}

func cmdSample(args []string) error {
	cfg, fs, err := setup("sample", args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: skybake sample [options] <azimuth> <elevation>")
	}
	azimuth, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		return fmt.Errorf("parsing azimuth: %w", err)
	}
	elevation, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return fmt.Errorf("parsing elevation: %w", err)
	}

	res, err := run(cfg, []bake.Pass{bake.TransmittancePass(), bake.MultiScatterPass()})
	if err != nil {
		return err
	}
	// Sample at the precision the LUTs are stored with.
	texture.Quantize(res.Transmittance.Texels)
	texture.Quantize(res.MultiScatter.Texels)

	params := cfg.AtmosphereParameters()
	atmo, err := atmosphere.NewModel(params, atmosphere.Settings{
		VariableSampleCount: true,
		MieRayPhase:         true,
		UseGround:           true,
		MultiScatApprox:     true,
		MultiScatPowerSerie: cfg.Atmosphere.MultiScatPowerSerie,
	},
		atmosphere.WithTransmittance(res.Transmittance),
		atmosphere.WithMultiScattering(res.MultiScatter))
	if err != nil {
		return err
	}

	cameraPos := cfg.Render.CameraPosition.Math()
	origin := cameraPos.Add(math.Vec3{Y: params.BottomRadius})
	sunDir := cfg.SunDirection()
	view := atmosphere.Ray{Origin: origin, Direction: atmosphere.SunDirection(azimuth, elevation)}
	r, ok := atmo.MoveToTopAtmosphere(view)
	ss := atmosphere.SingleScatteringResult{Transmittance: math.Splat3(1)}
	if ok {
		ss = atmo.IntegrateScatteredLuminance(math.Vec2{}, r, sunDir, 30, -1, 9000000)
	}

	fmt.Printf("View:          azimuth %.2f, elevation %.2f\n", azimuth, elevation)
	fmt.Printf("Sun:           azimuth %.2f, elevation %.2f\n", cfg.Render.SunAzimuth, cfg.Render.SunElevation)
	fmt.Printf("Transmittance: %.6f %.6f %.6f\n", ss.Transmittance.X, ss.Transmittance.Y, ss.Transmittance.Z)
	fmt.Printf("Luminance:     %.6f %.6f %.6f\n", ss.Luminance.X, ss.Luminance.Y, ss.Luminance.Z)
	fmt.Printf("Optical depth: %.6f %.6f %.6f\n", ss.OpticalDepth.X, ss.OpticalDepth.Y, ss.OpticalDepth.Z)
	sun := atmo.SunRadiance(cameraPos, sunDir)
	fmt.Printf("Sun radiance:  %.6f %.6f %.6f\n", sun.X, sun.Y, sun.Z)
	return nil
}

func cmdConfig(args []string) error {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), config.FileName))
	return nil
}
