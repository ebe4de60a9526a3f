package print

import (
	"context"
	"math"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Info describes the Print pass type.
var Info = pass.Info{Type: "Print", Description: "Logs a summary of its input every frame."}

// Input defines the configuration of a Print pass.
type Input struct {
	Label string `cty:"label"`
}

var schema = registry.Schema{
	"label": {Type: cty.String, Default: cty.StringVal(""), Description: "Tag included in the log line."},
}

// Summary describes a buffer without its contents.
type Summary struct {
	Width, Height int
	Min, Max      float32
	Mean          float64
	Checksum      uint64
}

type printPass struct {
	input Input
	last  Summary
}

func newPrint(_ context.Context, cfg registry.Config) (pass.Pass, error) {
	p := &printPass{}
	if err := registry.Decode(cfg, &p.input); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *printPass) Reflect() pass.Reflection {
	var r pass.Reflection
	r.AddInput("in", "Buffer to summarize")
	return r
}

func (p *printPass) Execute(ctx context.Context, data *pass.RenderData) error {
	in := data.Input("in")
	s := Summary{Width: in.Width, Height: in.Height, Checksum: in.Checksum()}
	values := in.Data()
	if len(values) > 0 {
		s.Min, s.Max = float32(math.Inf(1)), float32(math.Inf(-1))
		var sum float64
		for _, v := range values {
			s.Min = min(s.Min, v)
			s.Max = max(s.Max, v)
			sum += float64(v)
		}
		s.Mean = sum / float64(len(values))
	}
	p.last = s

	ctxlog.FromContext(ctx).Info("🖨️ Buffer summary",
		"label", p.input.Label,
		"frame", data.Frame,
		"format", in.Format,
		"size", [2]int{s.Width, s.Height},
		"min", s.Min,
		"max", s.Max,
		"mean", s.Mean,
		"checksum", s.Checksum,
	)
	return nil
}

// Last returns the summary of the most recent frame.
func (p *printPass) Last() Summary { return p.last }

func (p *printPass) Config() map[string]cty.Value {
	return map[string]cty.Value{"label": cty.StringVal(p.input.Label)}
}

// Register registers the Print pass type.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Info, schema, newPrint)
}
