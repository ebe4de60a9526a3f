// Package accumulate provides the AccumulatePass library: a temporal pass
// that averages its input over consecutive frames.
package accumulate

import (
	"context"
	"fmt"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

// LibraryName is the catalog name of this library.
const LibraryName = "AccumulatePass"

// Info describes the Accumulate pass type.
var Info = pass.Info{Type: "Accumulate", Description: "Running average of the input across frames."}

// Input defines the configuration of an Accumulate pass.
type Input struct {
	// MaxFrames stops accumulating after this many frames; 0 means never.
	MaxFrames int  `cty:"max_frames"`
	Enabled   bool `cty:"enabled"`
}

var schema = registry.Schema{
	"max_frames": {Type: cty.Number, Default: cty.Zero},
	"enabled":    {Type: cty.Bool, Default: cty.True},
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Accumulate pass type.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Info, schema, New)
}

// Library returns the AccumulatePass catalog entry.
func Library() registry.Library {
	return registry.Library{Name: LibraryName, Description: Info.Description, Modules: []registry.Module{&Module{}}}
}

// Pass keeps the running mean in an internal port, so the history lives in
// plan storage and survives from one frame to the next.
type Pass struct {
	input Input

	frames int
}

// New is the factory for Accumulate passes.
func New(_ context.Context, cfg registry.Config) (pass.Pass, error) {
	p := &Pass{}
	if err := registry.Decode(cfg, &p.input); err != nil {
		return nil, err
	}
	if p.input.MaxFrames < 0 {
		return nil, fmt.Errorf("max_frames must not be negative, got %d", p.input.MaxFrames)
	}
	return p, nil
}

// Reflect implements pass.Pass.
func (p *Pass) Reflect() pass.Reflection {
	var r pass.Reflection
	r.AddInput("input", "Per-frame sample")
	r.AddOutput("output", "Accumulated average").WithFormat(resource.FormatRGBA32Float)
	r.AddInternal("history", "Running mean of the accumulated frames").WithFormat(resource.FormatRGBA32Float)
	return r
}

// Compile checks the history matches the output. A new plan brings fresh
// history storage, so accumulation restarts.
func (p *Pass) Compile(ctx context.Context, data pass.CompileData) error {
	out, ok := data.Outputs["output"]
	if !ok || out == nil {
		return fmt.Errorf("output binding missing")
	}
	hist, ok := data.Internals["history"]
	if !ok || hist == nil {
		return fmt.Errorf("history binding missing")
	}
	if hist.Len() != out.Len() {
		return fmt.Errorf("history holds %d values, output %d", hist.Len(), out.Len())
	}
	if p.frames > 0 {
		ctxlog.FromContext(ctx).Debug("Accumulation restarted by compile.", "frames", p.frames)
	}
	p.frames = 0
	return nil
}

// Reset drops the accumulated history.
func (p *Pass) Reset() {
	p.frames = 0
}

// Frames returns the number of frames in the current average.
func (p *Pass) Frames() int { return p.frames }

// Execute implements pass.Pass.
func (p *Pass) Execute(_ context.Context, data *pass.RenderData) error {
	out, err := data.Output("output")
	if err != nil {
		return err
	}
	hist, err := data.Internal("history")
	if err != nil {
		return err
	}
	in := data.Input("input")

	dst := out.Data()
	if !p.input.Enabled {
		copyConverted(dst, in, out)
		return nil
	}

	avg := hist.Data()
	if p.input.MaxFrames == 0 || p.frames < p.input.MaxFrames {
		sample := make([]float32, len(avg))
		copyConverted(sample, in, hist)
		p.frames++
		if p.frames == 1 {
			copy(avg, sample)
		} else {
			n := float32(p.frames)
			for i, v := range sample {
				avg[i] += (v - avg[i]) / n
			}
		}
	}
	copy(dst, avg)
	return nil
}

// copyConverted writes in into dst laid out like out: nearest texel, with
// channels beyond the input's count read as zero.
func copyConverted(dst []float32, in, out *resource.Buffer) {
	channels := out.Format.Resolve().Channels()
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			var texel []float32
			if !in.IsEmpty() {
				texel = in.Texel(x*in.Width/out.Width, y*in.Height/out.Height)
			}
			base := (y*out.Width + x) * channels
			for c := 0; c < channels; c++ {
				if c < len(texel) {
					dst[base+c] = texel[c]
				} else {
					dst[base+c] = 0
				}
			}
		}
	}
}

// Config implements pass.Scriptable.
func (p *Pass) Config() map[string]cty.Value {
	return map[string]cty.Value{
		"max_frames": cty.NumberIntVal(int64(p.input.MaxFrames)),
		"enabled":    cty.BoolVal(p.input.Enabled),
	}
}
