package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyscatter/internal/logger"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks every section and the domain parameters they convert to.
func (c *Config) Validate() error {
	if err := c.AtmosphereParameters().Validate(); err != nil {
		return fmt.Errorf("%w: atmosphere: %w", ErrInvalidConfig, err)
	}
	if err := c.CloudParams().Validate(); err != nil {
		return fmt.Errorf("%w: clouds: %w", ErrInvalidConfig, err)
	}

	r := c.Resolutions
	sizes := []struct {
		name string
		w, h int
	}{
		{"transmittance", r.Transmittance.Width, r.Transmittance.Height},
		{"multi_scatter", r.MultiScatter, r.MultiScatter},
		{"sky_view", r.SkyView.Width, r.SkyView.Height},
		{"volume", r.Volume.Width, r.Volume.Height},
		{"worley", r.Worley, r.Worley},
		{"perlin_worley", r.PerlinWorley, r.PerlinWorley},
		{"curl", r.Curl, r.Curl},
		{"weather", r.Weather, r.Weather},
		{"render", c.Render.Width, c.Render.Height},
	}
	for _, s := range sizes {
		if s.w <= 0 || s.h <= 0 {
			return fmt.Errorf("%w: %s resolution %dx%d must be positive", ErrInvalidConfig, s.name, s.w, s.h)
		}
	}

	switch {
	case r.MultiScatter < 2:
		return fmt.Errorf("%w: multi_scatter resolution %d must be at least 2", ErrInvalidConfig, r.MultiScatter)
	case c.Weather.PerlinOctaves < 1:
		return fmt.Errorf("%w: weather octaves %d must be at least 1", ErrInvalidConfig, c.Weather.PerlinOctaves)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	case c.Render.FovY <= 0 || c.Render.FovY >= 180:
		return fmt.Errorf("%w: fov %v outside (0, 180)", ErrInvalidConfig, c.Render.FovY)
	case c.Render.CameraPosition == c.Render.CameraTarget:
		return fmt.Errorf("%w: camera target equals camera position", ErrInvalidConfig)
	case c.Render.Exposure <= 0:
		return fmt.Errorf("%w: exposure %v must be positive", ErrInvalidConfig, c.Render.Exposure)
	}
	if !logger.KnownLevel(c.Logging.Level) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}
