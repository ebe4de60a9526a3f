package engine

import (
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/resource"
)

// Output is one marked port and its contents at the end of a frame.
type Output struct {
	Name   string
	Buffer *resource.Buffer
}

// Outputs is a read-only snapshot of the marked outputs, in marking order.
// Its buffers are copies and are never touched by later frames.
type Outputs struct {
	Frame uint64

	list   []Output
	byName map[string]int
}

// Get returns the buffer for a marked "pass.port" name.
func (o *Outputs) Get(name string) (*resource.Buffer, error) {
	i, ok := o.byName[name]
	if !ok {
		return nil, errdefs.New(errdefs.ErrNotFound, "no output named %q", name)
	}
	return o.list[i].Buffer, nil
}

// All returns every output in marking order.
func (o *Outputs) All() []Output {
	return append([]Output(nil), o.list...)
}

// Names returns the output names in marking order.
func (o *Outputs) Names() []string {
	names := make([]string, len(o.list))
	for i, out := range o.list {
		names[i] = out.Name
	}
	return names
}

// Len returns the number of outputs.
func (o *Outputs) Len() int { return len(o.list) }
