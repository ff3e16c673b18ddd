package bake

import (
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscatter/internal/logger"
	"github.com/Faultbox/skyscatter/pkg/texture"
)

// linearTextures hold values already in [0,1]; the rest are radiance and
// get exposure tone mapping in previews.
var linearTextures = map[string]bool{
	"transmittance":     true,
	"sky_transmittance": true,
	"curl":              true,
	"weather":           true,
	"worley":            true,
	"perlin_worley":     true,
}

func toneMap(name string, exposure float64) texture.ToneMap {
	if linearTextures[name] {
		return texture.Linear
	}
	return texture.Exposure(exposure)
}

// Export writes every baked texture to dir: a raw RGBA16F blob per texture,
// a TIFF preview per 2-D texture and a TIFF of the middle slice of each
// volume. It returns the written paths, sorted.
func (r *Resources) Export(dir string, exposure float64) ([]string, error) {
	log := logger.Named("export")
	var written []string

	for name, t := range r.Named2D() {
		raw := filepath.Join(dir, name+".rgba16f")
		if err := texture.SaveRGBA16F(raw, t.Texels); err != nil {
			return nil, err
		}
		preview := filepath.Join(dir, name+".tiff")
		if err := texture.SaveTIFF(preview, t, toneMap(name, exposure)); err != nil {
			return nil, err
		}
		written = append(written, raw, preview)
	}

	for name, v := range r.Named3D() {
		raw := filepath.Join(dir, name+".rgba16f")
		if err := texture.SaveRGBA16F(raw, v.Texels); err != nil {
			return nil, err
		}
		_, _, depth := v.Size()
		preview := filepath.Join(dir, fmt.Sprintf("%s_z%02d.tiff", name, depth/2))
		if err := texture.SaveTIFF(preview, v.Slice(depth/2), toneMap(name, exposure)); err != nil {
			return nil, err
		}
		written = append(written, raw, preview)
	}

	sort.Strings(written)
	log.Info("exported textures", zap.String("dir", dir), zap.Int("files", len(written)))
	return written, nil
}
