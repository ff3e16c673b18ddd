package texture

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// GenerateMips builds a box-filtered mip chain down to 1x1x1.
func (t *Texture3D) GenerateMips() {
	t.mips = t.mips[:0]
	src := t
	for src.Width > 1 || src.Height > 1 || src.Depth > 1 {
		dst := NewTexture3D(max(src.Width/2, 1), max(src.Height/2, 1), max(src.Depth/2, 1), t.Address)
		for z := 0; z < dst.Depth; z++ {
			for y := 0; y < dst.Height; y++ {
				for x := 0; x < dst.Width; x++ {
					dst.Set(x, y, z, src.boxAverage(x, y, z, dst))
				}
			}
		}
		t.mips = append(t.mips, dst)
		src = dst
	}
}

func (t *Texture3D) boxAverage(x, y, z int, dst *Texture3D) math.Vec4 {
	sx, sy, sz := t.Width/dst.Width, t.Height/dst.Height, t.Depth/dst.Depth
	var sum math.Vec4
	n := 0
	for dz := 0; dz < sz; dz++ {
		for dy := 0; dy < sy; dy++ {
			for dx := 0; dx < sx; dx++ {
				sum = sum.Add(t.Texels[t.index(x*sx+dx, y*sy+dy, z*sz+dz)])
				n++
			}
		}
	}
	return sum.Scale(1 / float64(n))
}

// Levels returns the number of mip levels including the base.
func (t *Texture3D) Levels() int {
	return len(t.mips) + 1
}

// Level returns mip level i, 0 being the base.
func (t *Texture3D) Level(i int) *Texture3D {
	if i <= 0 {
		return t
	}
	return t.mips[min(i, len(t.mips))-1]
}

// SampleLod filters trilinearly within and between mip levels.
func (t *Texture3D) SampleLod(uvw math.Vec3, lod float64) math.Vec4 {
	if len(t.mips) == 0 || lod <= 0 {
		return t.Sample(uvw)
	}
	lod = gomath.Min(lod, float64(len(t.mips)))
	lo := int(gomath.Floor(lod))
	f := lod - float64(lo)
	a := t.Level(lo).Sample(uvw)
	if f == 0 {
		return a
	}
	return a.Lerp(t.Level(lo+1).Sample(uvw), f)
}
