package texture

import (
	"fmt"
	"image"
	"image/color"
	"io"
	gomath "math"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/Faultbox/skyscatter/pkg/math"
)

// ToneMap selects how HDR texels are mapped to 16-bit channels.
type ToneMap func(v float64) float64

// Linear clamps values to [0,1].
func Linear(v float64) float64 {
	return math.Saturate(v)
}

// Exposure returns 1 - exp(-v*exposure).
func Exposure(exposure float64) ToneMap {
	return func(v float64) float64 {
		return math.Saturate(-gomath.Expm1(-gomath.Max(v, 0) * exposure))
	}
}

// ToImage converts the texture to an opaque 16-bit image. Row 0 is the top.
func (t *Texture2D) ToImage(tm ToneMap) *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, t.Width, t.Height))
	q := func(v float64) uint16 {
		return uint16(gomath.Round(tm(v) * 0xffff))
	}
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			v := t.Texels[y*t.Width+x]
			img.SetRGBA64(x, y, color.RGBA64{R: q(v.X), G: q(v.Y), B: q(v.Z), A: 0xffff})
		}
	}
	return img
}

// WriteTIFF encodes the texture as a deflate-compressed 16-bit TIFF.
func WriteTIFF(w io.Writer, t *Texture2D, tm ToneMap) error {
	if err := tiff.Encode(w, t.ToImage(tm), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encoding tiff: %w", err)
	}
	return nil
}

// SaveTIFF writes the texture to path, creating parent directories.
func SaveTIFF(path string, t *Texture2D, tm ToneMap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteTIFF(f, t, tm); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// SaveRGBA16F writes raw half-float texels to path.
func SaveRGBA16F(path string, texels []math.Vec4) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, EncodeRGBA16F(texels), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
