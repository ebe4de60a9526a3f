package core

import (
	"fmt"

	"github.com/vk/framegraph/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

// component returns channel c of the texel of src nearest to (x, y) in a
// w x h target. Missing channels read as zero.
func component(src *resource.Buffer, x, y, w, h, c int) float32 {
	if src.IsEmpty() {
		return 0
	}
	sx := x * src.Width / w
	sy := y * src.Height / h
	texel := src.Texel(sx, sy)
	if c >= len(texel) {
		return 0
	}
	return texel[c]
}

// forEach calls fn for every channel of every texel of dst.
func forEach(dst *resource.Buffer, fn func(x, y, c int) float32) {
	channels := dst.Format.Resolve().Channels()
	data := dst.Data()
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			base := (y*dst.Width + x) * channels
			for c := 0; c < channels; c++ {
				data[base+c] = fn(x, y, c)
			}
		}
	}
}

func parseFormat(raw string) (resource.Format, error) {
	f, err := resource.ParseFormat(raw)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return f, nil
}

func floatList(values []float32) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	out := make([]cty.Value, len(values))
	for i, v := range values {
		out[i] = cty.NumberFloatVal(float64(v))
	}
	return cty.ListVal(out)
}
