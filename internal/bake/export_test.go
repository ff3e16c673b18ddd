package bake

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Faultbox/skyscatter/pkg/math"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	volume := texture.NewTexture3D(2, 2, 4, texture.Repeat)
	volume.Set(1, 1, 2, math.Vec4{X: 0.5, Y: 0.25, Z: 1, W: 1})
	res := &Resources{
		Transmittance: newFilled(4, 2, math.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1}),
		SkyView:       newFilled(4, 2, math.Vec4{X: 0.1, Y: 0.2, Z: 0.3, W: 1}),
		Worley:        volume,
	}

	written, err := res.Export(dir, 10)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var want []string
	for _, name := range []string{"sky_view.rgba16f", "sky_view.tiff", "transmittance.rgba16f", "transmittance.tiff", "worley.rgba16f", "worley_z02.tiff"} {
		want = append(want, filepath.Join(dir, name))
	}
	if !reflect.DeepEqual(written, want) {
		t.Errorf("Export() = %v, want %v", written, want)
	}

	data, err := os.ReadFile(filepath.Join(dir, "worley.rgba16f"))
	if err != nil {
		t.Fatal(err)
	}
	texels, err := texture.DecodeRGBA16F(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(texels) != len(volume.Texels) {
		t.Fatalf("decoded %d texels, want %d", len(texels), len(volume.Texels))
	}
	// 0.5, 0.25 and 1 are exact in half precision.
	for i := range texels {
		if texels[i] != volume.Texels[i] {
			t.Errorf("texel %d = %v, want %v", i, texels[i], volume.Texels[i])
		}
	}
}
