package atmosphere

import (
	"errors"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// MetresPerKilometre converts scene units (metres) to atmosphere units.
const MetresPerKilometre = 1000

// CameraData carries the camera for screen-space reconstruction. Matrices work
// in scene metres with sea level at y = 0. Position is the same point in
// kilometres; add BottomRadius to Y for planet-centred coordinates.
type CameraData struct {
	Position    math.Vec3
	View        math.Mat4
	Proj        math.Mat4
	InvView     math.Mat4
	InvProj     math.Mat4
	InvViewProj math.Mat4
	Viewport    math.Vec2
}

// NewCameraData builds a perspective camera at position (km) looking at target (km).
// fovY is in radians; near and far are in metres.
func NewCameraData(position, target, up math.Vec3, fovY float64, viewport math.Vec2, near, far float64) (*CameraData, error) {
	if viewport.X <= 0 || viewport.Y <= 0 {
		return nil, errors.New("camera viewport must be positive")
	}
	eye := position.Scale(MetresPerKilometre)
	view := math.LookAt(eye, target.Scale(MetresPerKilometre), up)
	proj := math.Perspective(fovY, viewport.X/viewport.Y, near, far)
	return NewCameraDataFromMatrices(position, view, proj, viewport)
}

// NewCameraDataFromMatrices wraps host-supplied matrices.
func NewCameraDataFromMatrices(position math.Vec3, view, proj math.Mat4, viewport math.Vec2) (*CameraData, error) {
	invView, ok := view.Inverse()
	if !ok {
		return nil, errors.New("camera view matrix is singular")
	}
	invProj, ok := proj.Inverse()
	if !ok {
		return nil, errors.New("camera projection matrix is singular")
	}
	invViewProj, ok := proj.Mul(view).Inverse()
	if !ok {
		return nil, errors.New("camera view-projection matrix is singular")
	}
	return &CameraData{
		Position:    position,
		View:        view,
		Proj:        proj,
		InvView:     invView,
		InvProj:     invProj,
		InvViewProj: invViewProj,
		Viewport:    viewport,
	}, nil
}

// ndc converts pixel coordinates to normalized device coordinates, flipping Y.
func (c *CameraData) ndc(pixPos math.Vec2) math.Vec2 {
	return math.Vec2{
		X: 2*pixPos.X/c.Viewport.X - 1,
		Y: 1 - 2*pixPos.Y/c.Viewport.Y,
	}
}

// ScreenToDirection returns the normalized world direction through a pixel.
func (c *CameraData) ScreenToDirection(pixPos math.Vec2) math.Vec3 {
	n := c.ndc(pixPos)
	near := c.InvViewProj.MulVec4(math.Vec4{X: n.X, Y: n.Y, Z: -1, W: 1}).PerspectiveDivide()
	far := c.InvViewProj.MulVec4(math.Vec4{X: n.X, Y: n.Y, Z: 1, W: 1}).PerspectiveDivide()
	return far.Sub(near).Normalize()
}

// WorldPos reconstructs the scene position in kilometres of a pixel whose
// depth buffer value is depth in [0,1].
func (c *CameraData) WorldPos(depth float64, pixPos math.Vec2) math.Vec3 {
	n := c.ndc(pixPos)
	world := c.InvViewProj.MulVec4(math.Vec4{X: n.X, Y: n.Y, Z: depth*2 - 1, W: 1}).PerspectiveDivide()
	return world.Scale(1.0 / MetresPerKilometre)
}

// PlanetPosition returns the camera position relative to the planet centre.
func (c *CameraData) PlanetPosition(bottomRadius float64) math.Vec3 {
	return c.Position.Add(math.Vec3{Y: bottomRadius})
}
