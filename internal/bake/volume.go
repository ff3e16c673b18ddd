package bake

import (
	"context"
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/noise"
	"github.com/Faultbox/skyscatter/pkg/scattering"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

// AerialPerspectiveModel builds the integrator configuration of the
// aerial-perspective bake: fixed per-slice sample counts, Rayleigh and Mie
// phases, multi-scattering LUT.
func AerialPerspectiveModel(params atmosphere.Parameters, transmittance, multiScatter atmosphere.Sampler2D, cam *atmosphere.CameraData) (*atmosphere.Model, error) {
	return atmosphere.NewModel(params, atmosphere.Settings{
		MieRayPhase:     true,
		MultiScatApprox: true,
	},
		atmosphere.WithTransmittance(transmittance),
		atmosphere.WithMultiScattering(multiScatter),
		atmosphere.WithCamera(cam))
}

// AerialPerspectiveTexel integrates the froxel of slice z seen through
// viewport pixel pix. It returns (luminance, 1 - mean transmittance).
func AerialPerspectiveTexel(m *atmosphere.Model, pix math.Vec2, z int, sunDir math.Vec3) math.Vec4 {
	cam := m.Camera()
	p := m.Params()
	cameraPos := cam.PlanetPosition(p.BottomRadius)
	dir := cam.ScreenToDirection(pix)

	slice := (float64(z) + 0.5) / scattering.AerialPerspectiveSlices
	slice *= slice * scattering.AerialPerspectiveSlices
	tMax := scattering.AerialPerspectiveSliceToDepth(slice)

	// Froxels below ground integrate up to a point just above it.
	end := cameraPos.Add(dir.Scale(tMax))
	if end.Length() <= p.BottomRadius+atmosphere.PlanetRadiusOffset {
		end = end.Normalize().Scale(p.BottomRadius + atmosphere.PlanetRadiusOffset + 0.001)
		dir = end.Sub(cameraPos).Normalize()
		tMax = end.Distance(cameraPos)
	}

	r := atmosphere.Ray{Origin: cameraPos, Direction: dir}
	if cameraPos.Length() >= p.TopRadius {
		moved, ok := m.MoveToTopAtmosphere(r)
		if !ok {
			return math.Vec4{}
		}
		toAtmosphere := moved.Origin.Distance(cameraPos)
		if tMax < toAtmosphere {
			return math.Vec4{}
		}
		tMax = gomath.Max(0, tMax-toAtmosphere)
		r = moved
	}

	sampleCount := float64(max(1, 2*(z+1)))
	ss := m.IntegrateScatteredLuminance(pix, r, sunDir, sampleCount, -1, tMax)
	return math.V4(ss.Luminance, 1-ss.Transmittance.Mean())
}

// BakeAerialPerspective fills a width x height x 32 froxel volume over the
// model's camera frustum.
func BakeAerialPerspective(ctx context.Context, d *Dispatcher, m *atmosphere.Model, sunDir math.Vec3, width, height int) (*texture.Texture3D, error) {
	if m.Camera() == nil {
		return nil, missing("camera")
	}
	const depth = scattering.AerialPerspectiveSlices
	viewport := m.Camera().Viewport
	volume := texture.NewTexture3D(width, height, depth, texture.Clamp)
	err := d.Rows(ctx, height*depth, func(i int) {
		y, z := i%height, i/height
		for x := 0; x < width; x++ {
			pix := texelUV(x, y, width, height).Mul(viewport)
			volume.Set(x, y, z, AerialPerspectiveTexel(m, pix, z, sunDir))
		}
	})
	if err != nil {
		return nil, err
	}
	return volume, nil
}

// texelUVW returns the centre of voxel (x, y, z) in a size-wide cube.
func texelUVW(x, y, z, size int) math.Vec3 {
	s := float64(size)
	return math.Vec3{X: (float64(x) + 0.5) / s, Y: (float64(y) + 0.5) / s, Z: (float64(z) + 0.5) / s}
}

// bakeNoiseVolume fills a tileable size³ volume with texel and builds its
// mip chain.
func bakeNoiseVolume(ctx context.Context, d *Dispatcher, size int, texel func(math.Vec3) math.Vec4) (*texture.Texture3D, error) {
	volume := texture.NewTexture3D(size, size, size, texture.Repeat)
	err := d.Rows(ctx, size*size, func(i int) {
		y, z := i%size, i/size
		for x := 0; x < size; x++ {
			volume.Set(x, y, z, texel(texelUVW(x, y, z, size)))
		}
	})
	if err != nil {
		return nil, err
	}
	volume.GenerateMips()
	return volume, nil
}

// BakeWorley fills the high-frequency erosion volume.
func BakeWorley(ctx context.Context, d *Dispatcher, size int) (*texture.Texture3D, error) {
	return bakeNoiseVolume(ctx, d, size, noise.WorleyTexel)
}

// BakePerlinWorley fills the base cloud shape volume.
func BakePerlinWorley(ctx context.Context, d *Dispatcher, size int) (*texture.Texture3D, error) {
	return bakeNoiseVolume(ctx, d, size, noise.PerlinWorleyTexel)
}

// curlPeriod is the number of potential cells across the curl texture.
const curlPeriod = 4

// BakeCurl fills the tileable 2-D curl noise.
func BakeCurl(ctx context.Context, d *Dispatcher, size int) (*texture.Texture2D, error) {
	curl := texture.NewTexture2D(size, size, texture.Repeat)
	err := dispatch2D(ctx, d, size, size, func(x, y int) {
		curl.Set(x, y, noise.CurlTexel(texelUV(x, y, size, size), curlPeriod))
	})
	if err != nil {
		return nil, err
	}
	return curl, nil
}

// BakeWeather fills the tileable weather map.
func BakeWeather(ctx context.Context, d *Dispatcher, params noise.WeatherParams, size int) (*texture.Texture2D, error) {
	weather := texture.NewTexture2D(size, size, texture.Repeat)
	err := dispatch2D(ctx, d, size, size, func(x, y int) {
		weather.Set(x, y, params.Texel(texelUV(x, y, size, size)))
	})
	if err != nil {
		return nil, err
	}
	return weather, nil
}
