// Package texture provides CPU-side RGBA float textures with GPU-style
// filtered sampling. Texel (i, j) has its centre at ((i+0.5)/w, (j+0.5)/h).
package texture

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// AddressMode selects how out-of-range coordinates are resolved.
type AddressMode int

const (
	// Clamp clamps coordinates to the edge texels.
	Clamp AddressMode = iota
	// Repeat wraps coordinates, for tileable noise.
	Repeat
)

func (a AddressMode) resolve(i, n int) int {
	if a == Repeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// linearTaps returns the two texel indices and the blend weight for a
// normalized coordinate along an axis of n texels.
func (a AddressMode) linearTaps(u float64, n int) (i0, i1 int, f float64) {
	x := u*float64(n) - 0.5
	fl := gomath.Floor(x)
	f = x - fl
	i := int(fl)
	return a.resolve(i, n), a.resolve(i+1, n), f
}

// Texture2D is a 2-D RGBA texture stored row-major.
type Texture2D struct {
	Width   int
	Height  int
	Address AddressMode
	Texels  []math.Vec4
}

// NewTexture2D allocates a zeroed texture.
func NewTexture2D(width, height int, address AddressMode) *Texture2D {
	return &Texture2D{
		Width:   width,
		Height:  height,
		Address: address,
		Texels:  make([]math.Vec4, width*height),
	}
}

// Size returns the texture dimensions.
func (t *Texture2D) Size() (int, int) {
	return t.Width, t.Height
}

// At fetches a texel with the texture's address mode applied.
func (t *Texture2D) At(x, y int) math.Vec4 {
	x = t.Address.resolve(x, t.Width)
	y = t.Address.resolve(y, t.Height)
	return t.Texels[y*t.Width+x]
}

// Set stores a texel. Coordinates must be in range.
func (t *Texture2D) Set(x, y int, v math.Vec4) {
	t.Texels[y*t.Width+x] = v
}

// Sample filters bilinearly at normalized coordinates.
func (t *Texture2D) Sample(uv math.Vec2) math.Vec4 {
	x0, x1, fx := t.Address.linearTaps(uv.X, t.Width)
	y0, y1, fy := t.Address.linearTaps(uv.Y, t.Height)
	row0 := t.Texels[y0*t.Width+x0].Lerp(t.Texels[y0*t.Width+x1], fx)
	row1 := t.Texels[y1*t.Width+x0].Lerp(t.Texels[y1*t.Width+x1], fx)
	return row0.Lerp(row1, fy)
}

// Texture3D is a 3-D RGBA texture stored slice-major with an optional mip chain.
type Texture3D struct {
	Width   int
	Height  int
	Depth   int
	Address AddressMode
	Texels  []math.Vec4

	mips []*Texture3D
}

// NewTexture3D allocates a zeroed volume.
func NewTexture3D(width, height, depth int, address AddressMode) *Texture3D {
	return &Texture3D{
		Width:   width,
		Height:  height,
		Depth:   depth,
		Address: address,
		Texels:  make([]math.Vec4, width*height*depth),
	}
}

// Size returns the volume dimensions.
func (t *Texture3D) Size() (int, int, int) {
	return t.Width, t.Height, t.Depth
}

func (t *Texture3D) index(x, y, z int) int {
	return (z*t.Height+y)*t.Width + x
}

// At fetches a texel with the texture's address mode applied.
func (t *Texture3D) At(x, y, z int) math.Vec4 {
	x = t.Address.resolve(x, t.Width)
	y = t.Address.resolve(y, t.Height)
	z = t.Address.resolve(z, t.Depth)
	return t.Texels[t.index(x, y, z)]
}

// Set stores a texel. Coordinates must be in range.
func (t *Texture3D) Set(x, y, z int, v math.Vec4) {
	t.Texels[t.index(x, y, z)] = v
}

// Sample filters trilinearly at normalized coordinates on the base level.
func (t *Texture3D) Sample(uvw math.Vec3) math.Vec4 {
	x0, x1, fx := t.Address.linearTaps(uvw.X, t.Width)
	y0, y1, fy := t.Address.linearTaps(uvw.Y, t.Height)
	z0, z1, fz := t.Address.linearTaps(uvw.Z, t.Depth)

	plane := func(z int) math.Vec4 {
		a := t.Texels[t.index(x0, y0, z)].Lerp(t.Texels[t.index(x1, y0, z)], fx)
		b := t.Texels[t.index(x0, y1, z)].Lerp(t.Texels[t.index(x1, y1, z)], fx)
		return a.Lerp(b, fy)
	}
	return plane(z0).Lerp(plane(z1), fz)
}

// Slice copies depth slice z into a 2-D texture.
func (t *Texture3D) Slice(z int) *Texture2D {
	out := NewTexture2D(t.Width, t.Height, t.Address)
	copy(out.Texels, t.Texels[t.index(0, 0, z):t.index(0, 0, z+1)])
	return out
}
