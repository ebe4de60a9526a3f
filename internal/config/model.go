package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific graph description loader.
type Loader interface {
	// Load reads the description from the given paths and translates it
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is the format-agnostic representation of a graph description.
// Range fields locate each item in its source file; they are zero for
// models that were not read from a file.
type Model struct {
	Name      string
	Libraries []string
	Passes    []*Pass
	Edges     []*Edge
	Outputs   []*Output

	// Range is the graph block that declared the libraries.
	Range hcl.Range
}

// Pass is one pass instance to create.
type Pass struct {
	Type   string
	Name   string
	Config map[string]cty.Value

	Range hcl.Range
}

// Edge connects an output reference to an input reference.
type Edge struct {
	From string
	To   string

	FromRange hcl.Range
	ToRange   hcl.Range
}

// Output marks a port whose contents are read after every frame.
type Output struct {
	Ref string

	Range hcl.Range
}

// Refs returns the output references in model order.
func (m *Model) Refs() []string {
	refs := make([]string, len(m.Outputs))
	for i, o := range m.Outputs {
		refs[i] = o.Ref
	}
	return refs
}
