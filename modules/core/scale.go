package core

import (
	"context"

	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

var scaleInfo = pass.Info{Type: "Scale", Description: "Computes in*factor + bias per channel."}

var scaleSchema = registry.Schema{
	"factor": {Type: cty.Number, Default: cty.NumberIntVal(1)},
	"bias":   {Type: cty.Number, Default: cty.Zero},
}

type scaleConfig struct {
	Factor float32 `cty:"factor"`
	Bias   float32 `cty:"bias"`
}

type scalePass struct {
	cfg scaleConfig
}

func newScale(_ context.Context, cfg registry.Config) (pass.Pass, error) {
	p := &scalePass{}
	if err := registry.Decode(cfg, &p.cfg); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *scalePass) Reflect() pass.Reflection {
	var r pass.Reflection
	r.AddInput("in", "Source")
	r.AddOutput("out", "Scaled source")
	return r
}

func (p *scalePass) Execute(_ context.Context, data *pass.RenderData) error {
	out, err := data.Output("out")
	if err != nil {
		return err
	}
	in := data.Input("in")
	forEach(out, func(x, y, c int) float32 {
		return component(in, x, y, out.Width, out.Height, c)*p.cfg.Factor + p.cfg.Bias
	})
	return nil
}

func (p *scalePass) Config() map[string]cty.Value {
	return map[string]cty.Value{
		"factor": cty.NumberFloatVal(float64(p.cfg.Factor)),
		"bias":   cty.NumberFloatVal(float64(p.cfg.Bias)),
	}
}
