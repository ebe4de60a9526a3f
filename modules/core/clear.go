package core

import (
	"context"

	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

var clearInfo = pass.Info{Type: "Clear", Description: "Fills its output with a constant color."}

var clearSchema = registry.Schema{
	"color": {
		Type:        cty.List(cty.Number),
		Default:     cty.ListVal([]cty.Value{cty.Zero, cty.Zero, cty.Zero, cty.NumberIntVal(1)}),
		Description: "Texel value, one number per channel.",
	},
	"format": {Type: cty.String, Default: cty.StringVal(string(resource.FormatRGBA32Float))},
	"width":  {Type: cty.Number, Default: cty.Zero, Description: "Output width; 0 follows the frame."},
	"height": {Type: cty.Number, Default: cty.Zero, Description: "Output height; 0 follows the frame."},
}

type clearConfig struct {
	Color  []float32 `cty:"color"`
	Format string    `cty:"format"`
	Width  int       `cty:"width"`
	Height int       `cty:"height"`
}

type clearPass struct {
	cfg    clearConfig
	format resource.Format
}

func newClear(_ context.Context, cfg registry.Config) (pass.Pass, error) {
	p := &clearPass{}
	if err := registry.Decode(cfg, &p.cfg); err != nil {
		return nil, err
	}
	format, err := parseFormat(p.cfg.Format)
	if err != nil {
		return nil, err
	}
	p.format = format
	return p, nil
}

func (p *clearPass) Reflect() pass.Reflection {
	var r pass.Reflection
	out := r.AddOutput("out", "Constant color").WithFormat(p.format)
	if p.cfg.Width > 0 && p.cfg.Height > 0 {
		out.WithSize(p.cfg.Width, p.cfg.Height)
	}
	return r
}

func (p *clearPass) Execute(_ context.Context, data *pass.RenderData) error {
	out, err := data.Output("out")
	if err != nil {
		return err
	}
	out.Fill(p.cfg.Color)
	return nil
}

func (p *clearPass) Config() map[string]cty.Value {
	return map[string]cty.Value{
		"color":  floatList(p.cfg.Color),
		"format": cty.StringVal(string(p.format)),
		"width":  cty.NumberIntVal(int64(p.cfg.Width)),
		"height": cty.NumberIntVal(int64(p.cfg.Height)),
	}
}
