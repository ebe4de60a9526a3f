package core

import (
	"context"

	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

var copyInfo = pass.Info{Type: "Copy", Description: "Copies its input, resampling and converting channels as needed."}

var copySchema = registry.Schema{
	"format": {Type: cty.String, Default: cty.StringVal(string(resource.FormatRGBA32Float))},
}

type copyConfig struct {
	Format string `cty:"format"`
}

type copyPass struct {
	format resource.Format
}

func newCopy(_ context.Context, cfg registry.Config) (pass.Pass, error) {
	var c copyConfig
	if err := registry.Decode(cfg, &c); err != nil {
		return nil, err
	}
	format, err := parseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return &copyPass{format: format}, nil
}

func (p *copyPass) Reflect() pass.Reflection {
	var r pass.Reflection
	r.AddInput("in", "Source")
	r.AddOutput("out", "Copy of the source").WithFormat(p.format)
	return r
}

func (p *copyPass) Execute(_ context.Context, data *pass.RenderData) error {
	out, err := data.Output("out")
	if err != nil {
		return err
	}
	in := data.Input("in")
	forEach(out, func(x, y, c int) float32 {
		return component(in, x, y, out.Width, out.Height, c)
	})
	return nil
}

func (p *copyPass) Config() map[string]cty.Value {
	return map[string]cty.Value{"format": cty.StringVal(string(p.format))}
}
