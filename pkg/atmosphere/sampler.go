package atmosphere

import "github.com/Faultbox/skyscatter/pkg/math"

// Sampler2D is a filtered 2-D lookup, such as a baked LUT.
type Sampler2D interface {
	Sample(uv math.Vec2) math.Vec4
	Size() (width, height int)
}

// ShadowSampler returns the sun visibility in [0,1] at a planet-centred
// position, typically from a host shadow map.
type ShadowSampler interface {
	Visibility(worldPos math.Vec3) float64
}
