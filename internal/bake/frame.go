package bake

import (
	"context"
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/clouds"
	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/scattering"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

// GroundDepth returns the depth buffer value of the planet surface seen
// through viewport pixel pix, or 1 when the pixel shows sky.
func GroundDepth(cam *atmosphere.CameraData, bottomRadius float64, pix math.Vec2) float64 {
	r := atmosphere.Ray{Origin: cam.PlanetPosition(bottomRadius), Direction: cam.ScreenToDirection(pix)}
	hit := atmosphere.RaySphereIntersectNearest(r, math.Vec3{}, bottomRadius)
	if !hit.Valid || hit.T < 1e-6 {
		return 1
	}
	scenePos := hit.Point.Sub(math.Vec3{Y: bottomRadius}).Scale(atmosphere.MetresPerKilometre)
	clip := cam.Proj.Mul(cam.View).MulVec4(math.V4(scenePos, 1))
	if clip.W <= 0 {
		return 1
	}
	return gomath.Min(1, math.Saturate(clip.Z/clip.W*0.5+0.5))
}

// BakeSceneDepth fills a depth buffer holding only the planet surface.
func BakeSceneDepth(ctx context.Context, d *Dispatcher, cam *atmosphere.CameraData, bottomRadius float64, width, height int) (*texture.Texture2D, error) {
	depth := texture.NewTexture2D(width, height, texture.Clamp)
	size := math.Vec2{X: float64(width), Y: float64(height)}
	err := dispatch2D(ctx, d, width, height, func(x, y int) {
		pix := math.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}.Mul(cam.Viewport.Div(size))
		depth.Set(x, y, math.Vec4{X: GroundDepth(cam, bottomRadius, pix)})
	})
	if err != nil {
		return nil, err
	}
	return depth, nil
}

// groundLuminance is the sunlit Lambertian ground at planet-centred p.
func groundLuminance(atmo *atmosphere.Model, p, sunDir math.Vec3) math.Vec3 {
	params := atmo.Params()
	h := p.Length()
	up := p.Scale(1 / h)
	sunZenithCos := up.Dot(sunDir)
	if sunZenithCos <= 0 {
		return math.Vec3{}
	}
	T := atmo.TransmittanceToSun(h, sunZenithCos)
	return params.SunLuminance().Mul(T).Mul(params.GroundAlbedo).Scale(sunZenithCos / gomath.Pi)
}

// RenderSky resolves every pixel of a width x height frame. depth may be nil,
// in which case every pixel is background. Geometry pixels get a lit ground
// seen through the aerial perspective.
func RenderSky(ctx context.Context, d *Dispatcher, sc *scattering.Model, depth *texture.Texture2D, sunDir math.Vec3, width, height int) (luminance, transmittance *texture.Texture2D, err error) {
	atmo := sc.Atmosphere()
	cam := atmo.Camera()
	bottom := atmo.Params().BottomRadius
	size := math.Vec2{X: float64(width), Y: float64(height)}

	luminance = texture.NewTexture2D(width, height, texture.Clamp)
	transmittance = texture.NewTexture2D(width, height, texture.Clamp)
	err = dispatch2D(ctx, d, width, height, func(x, y int) {
		fragPos := math.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
		fragDepth := -1.0
		if depth != nil {
			fragDepth = depth.At(x, y).X
		}
		T, L := sc.GetPixelTransLum(fragPos, size, fragDepth, sunDir)
		if fragDepth >= 0 && fragDepth < 1 {
			pix := fragPos.Mul(cam.Viewport.Div(size))
			ground := cam.WorldPos(fragDepth, pix).Add(math.Vec3{Y: bottom})
			L = math.V4(L.XYZ().Add(T.XYZ().Mul(groundLuminance(atmo, ground, sunDir))), L.W)
		}
		luminance.Set(x, y, L)
		transmittance.Set(x, y, T)
	})
	if err != nil {
		return nil, nil, err
	}
	return luminance, transmittance, nil
}

// CloudLayers are the per-pixel outputs of the volumetric clouds pass.
type CloudLayers struct {
	Colour   *texture.Texture2D
	Emission *texture.Texture2D
	Distance *texture.Texture2D
}

// RenderClouds composites the cloud layer over the sky image.
func RenderClouds(ctx context.Context, d *Dispatcher, cm *clouds.Model, sky *texture.Texture2D, sunDir math.Vec3) (CloudLayers, error) {
	width, height := sky.Size()
	size := math.Vec2{X: float64(width), Y: float64(height)}
	layers := CloudLayers{
		Colour:   texture.NewTexture2D(width, height, texture.Clamp),
		Emission: texture.NewTexture2D(width, height, texture.Clamp),
		Distance: texture.NewTexture2D(width, height, texture.Clamp),
	}
	err := dispatch2D(ctx, d, width, height, func(x, y int) {
		colour, emission, distance := cm.ApplyClouds(x, y, size, sky.At(x, y), sunDir)
		layers.Colour.Set(x, y, colour)
		layers.Emission.Set(x, y, emission)
		layers.Distance.Set(x, y, distance)
	})
	if err != nil {
		return CloudLayers{}, err
	}
	return layers, nil
}

// ResolveClouds writes the final frame: the cloud colour plus bloom times
// the emission layer wherever a cloud was hit, floored at zero.
func ResolveClouds(ctx context.Context, d *Dispatcher, layers CloudLayers, bloom float64) (*texture.Texture2D, error) {
	width, height := layers.Colour.Size()
	frame := texture.NewTexture2D(width, height, texture.Clamp)
	err := dispatch2D(ctx, d, width, height, func(x, y int) {
		rgb := layers.Colour.At(x, y).XYZ()
		if layers.Distance.At(x, y).X >= 0 {
			rgb = rgb.Add(layers.Emission.At(x, y).XYZ().Scale(bloom))
		}
		frame.Set(x, y, math.V4(rgb.Max(math.Vec3{}), 1))
	})
	if err != nil {
		return nil, err
	}
	return frame, nil
}
