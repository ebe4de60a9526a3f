package core

import (
	"context"
	"fmt"

	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

var blendInfo = pass.Info{Type: "Blend", Description: "Linear blend of two inputs: a*(1-weight) + b*weight."}

var blendSchema = registry.Schema{
	"weight": {Type: cty.Number, Default: cty.NumberFloatVal(0.5)},
}

type blendConfig struct {
	Weight float32 `cty:"weight"`
}

type blendPass struct {
	cfg blendConfig
}

func newBlend(_ context.Context, cfg registry.Config) (pass.Pass, error) {
	p := &blendPass{}
	if err := registry.Decode(cfg, &p.cfg); err != nil {
		return nil, err
	}
	if p.cfg.Weight < 0 || p.cfg.Weight > 1 {
		return nil, fmt.Errorf("weight must be within [0, 1], got %g", p.cfg.Weight)
	}
	return p, nil
}

func (p *blendPass) Reflect() pass.Reflection {
	var r pass.Reflection
	r.AddInput("a", "First operand")
	r.AddInput("b", "Second operand")
	r.AddOutput("out", "Blended result")
	return r
}

func (p *blendPass) Execute(_ context.Context, data *pass.RenderData) error {
	out, err := data.Output("out")
	if err != nil {
		return err
	}
	a, b := data.Input("a"), data.Input("b")
	w := p.cfg.Weight
	forEach(out, func(x, y, c int) float32 {
		return component(a, x, y, out.Width, out.Height, c)*(1-w) + component(b, x, y, out.Width, out.Height, c)*w
	})
	return nil
}

func (p *blendPass) Config() map[string]cty.Value {
	return map[string]cty.Value{"weight": cty.NumberFloatVal(float64(p.cfg.Weight))}
}
