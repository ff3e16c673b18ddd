package texture

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/x448/float16"

	"github.com/Faultbox/skyscatter/pkg/math"
)

const bytesPerHalfTexel = 8

// EncodeRGBA16F packs texels as little-endian half floats, RGBA order.
func EncodeRGBA16F(texels []math.Vec4) []byte {
	out := make([]byte, len(texels)*bytesPerHalfTexel)
	for i, v := range texels {
		o := out[i*bytesPerHalfTexel:]
		binary.LittleEndian.PutUint16(o[0:], float16.Fromfloat32(float32(v.X)).Bits())
		binary.LittleEndian.PutUint16(o[2:], float16.Fromfloat32(float32(v.Y)).Bits())
		binary.LittleEndian.PutUint16(o[4:], float16.Fromfloat32(float32(v.Z)).Bits())
		binary.LittleEndian.PutUint16(o[6:], float16.Fromfloat32(float32(v.W)).Bits())
	}
	return out
}

// DecodeRGBA16F unpacks data produced by EncodeRGBA16F.
func DecodeRGBA16F(data []byte) ([]math.Vec4, error) {
	if len(data)%bytesPerHalfTexel != 0 {
		return nil, fmt.Errorf("RGBA16F data length %d is not a multiple of %d", len(data), bytesPerHalfTexel)
	}
	texels := make([]math.Vec4, len(data)/bytesPerHalfTexel)
	for i := range texels {
		o := data[i*bytesPerHalfTexel:]
		h := func(off int) float64 {
			return float64(float16.Frombits(binary.LittleEndian.Uint16(o[off:])).Float32())
		}
		texels[i] = math.Vec4{X: h(0), Y: h(2), Z: h(4), W: h(6)}
	}
	return texels, nil
}

// Quantize rounds every texel through half precision in place, matching the
// values a GPU RGBA16F target would hold.
func Quantize(texels []math.Vec4) {
	decoded, _ := DecodeRGBA16F(EncodeRGBA16F(texels))
	copy(texels, decoded)
}

// WriteRGBA16F writes the packed texels to w.
func WriteRGBA16F(w io.Writer, texels []math.Vec4) error {
	if _, err := w.Write(EncodeRGBA16F(texels)); err != nil {
		return fmt.Errorf("writing RGBA16F texels: %w", err)
	}
	return nil
}
