package pass

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/framegraph/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

// Info describes a pass type.
type Info struct {
	Type        string
	Description string
}

// Pass is the opaque execution handle the engine schedules.
type Pass interface {
	// Reflect declares the pass's ports. It is called once per compile and
	// must return the same ports for an unchanged configuration.
	Reflect() Reflection

	// Execute runs one frame of work. Returned errors are forwarded verbatim
	// inside PassExecutionFailed.
	Execute(ctx context.Context, data *RenderData) error
}

// CompileData is given to passes implementing Compiler once a plan's
// storage is resolved.
type CompileData struct {
	FrameWidth  int
	FrameHeight int

	// Outputs maps each output port to its resolved format and size.
	Outputs map[string]*resource.Buffer

	// Internals maps each internal port to its private storage.
	Internals map[string]*resource.Buffer
}

// Compiler is implemented by passes that need to prepare per-plan state,
// for example to size history buffers to the resolved output size.
type Compiler interface {
	Compile(ctx context.Context, data CompileData) error
}

// Resetter is implemented by passes that keep state across frames and can
// drop it on request.
type Resetter interface {
	Reset()
}

// Scriptable is implemented by passes that can report their current
// configuration, so a graph can be exported back into a description.
type Scriptable interface {
	Config() map[string]cty.Value
}

// RenderData is the per-frame view a pass gets of its bindings.
type RenderData struct {
	Frame       uint64
	FrameWidth  int
	FrameHeight int

	inputs    map[string]*resource.Buffer
	outputs   map[string]*resource.Buffer
	internals map[string]*resource.Buffer
}

// NewRenderData assembles the bindings for one pass invocation.
func NewRenderData(frame uint64, width, height int, inputs, outputs, internals map[string]*resource.Buffer) *RenderData {
	return &RenderData{
		Frame:       frame,
		FrameWidth:  width,
		FrameHeight: height,
		inputs:      inputs,
		outputs:     outputs,
		internals:   internals,
	}
}

// Input returns the binding for an input port. Unconnected optional inputs
// yield an empty buffer, never nil.
func (d *RenderData) Input(name string) *resource.Buffer {
	if b, ok := d.inputs[name]; ok && b != nil {
		return b
	}
	return resource.Empty(resource.FormatAny)
}

// Output returns the storage for an output port.
func (d *RenderData) Output(name string) (*resource.Buffer, error) {
	b, ok := d.outputs[name]
	if !ok || b == nil {
		return nil, fmt.Errorf("no output port %q", name)
	}
	return b, nil
}

// Internal returns the private storage of an internal port. Its contents
// are whatever the pass left there on the previous frame.
func (d *RenderData) Internal(name string) (*resource.Buffer, error) {
	b, ok := d.internals[name]
	if !ok || b == nil {
		return nil, fmt.Errorf("no internal port %q", name)
	}
	return b, nil
}

// InputNames returns the bound input port names in lexical order.
func (d *RenderData) InputNames() []string { return sortedKeys(d.inputs) }

// OutputNames returns the output port names in lexical order.
func (d *RenderData) OutputNames() []string { return sortedKeys(d.outputs) }

func sortedKeys(m map[string]*resource.Buffer) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
