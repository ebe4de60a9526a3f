package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/resource"
)

// In declares a required input port of any format.
func In(name string) pass.Port {
	return pass.Port{Name: name, Direction: pass.Input, Format: resource.FormatAny}
}

// OptIn declares an optional input port of any format.
func OptIn(name string) pass.Port {
	return pass.Port{Name: name, Direction: pass.Input, Format: resource.FormatAny, Optional: true}
}

// Out declares an output port of the given format.
func Out(name string, format resource.Format) pass.Port {
	return pass.Port{Name: name, Direction: pass.Output, Format: format}
}

// Scratch declares an internal port of the given format.
func Scratch(name string, format resource.Format) pass.Port {
	return pass.Port{Name: name, Direction: pass.Internal, Format: format}
}

// ExecFunc is the body of a FuncPass.
type ExecFunc func(ctx context.Context, data *pass.RenderData) error

// FuncPass is a pass with fixed ports whose Execute delegates to a function.
type FuncPass struct {
	Name  string
	Ports []pass.Port
	Fn    ExecFunc

	// Recorder, when set, gets the pass name appended on every Execute.
	Recorder *Recorder
}

// Reflect implements pass.Pass.
func (p *FuncPass) Reflect() pass.Reflection {
	return pass.Reflection{Ports: append([]pass.Port(nil), p.Ports...)}
}

// Execute implements pass.Pass.
func (p *FuncPass) Execute(ctx context.Context, data *pass.RenderData) error {
	if p.Recorder != nil {
		p.Recorder.Record(p.Name)
	}
	if p.Fn == nil {
		return nil
	}
	return p.Fn(ctx, data)
}

// Recorder collects pass names in execution order. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// Record appends name.
func (r *Recorder) Record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

// Calls returns a copy of the recorded names.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset forgets every recorded call.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Instance wraps a FuncPass in a registry instance.
func Instance(t *testing.T, p *FuncPass) *registry.Instance {
	t.Helper()
	inst, err := registry.NewInstance(pass.Info{Type: "Func" + p.Name}, nil, p)
	require.NoError(t, err)
	return inst
}

// FillOutputs returns an ExecFunc that fills every output with the sum of
// the first texel component of every non-empty input plus bias. It makes
// data flow observable in tests.
func FillOutputs(bias float32) ExecFunc {
	return func(ctx context.Context, data *pass.RenderData) error {
		v := bias
		for _, name := range data.InputNames() {
			if in := data.Input(name); !in.IsEmpty() {
				v += in.Data()[0]
			}
		}
		for _, name := range data.OutputNames() {
			out, err := data.Output(name)
			if err != nil {
				return err
			}
			out.Fill([]float32{v})
		}
		return nil
	}
}
