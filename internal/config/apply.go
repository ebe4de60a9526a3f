package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/graph"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/portref"
	"github.com/vk/framegraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// DefaultGraphName is used when a description does not name its graph.
const DefaultGraphName = "graph"

// SourceError is a builder error located in the description that caused
// it. Its message is the diagnostics' message; errors.Is and errors.As see
// the builder error.
type SourceError struct {
	Diagnostics hcl.Diagnostics
	Err         error
}

func (e *SourceError) Error() string { return e.Diagnostics.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// located wraps err in a SourceError pointing at rng. Errors from models
// without source positions are returned unchanged.
func located(err error, rng hcl.Range, summary string) error {
	if rng.Filename == "" {
		return err
	}
	return &SourceError{
		Diagnostics: hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  summary,
			Detail:   err.Error(),
			Subject:  rng.Ptr(),
		}},
		Err: err,
	}
}

// Apply loads the model's libraries into reg and builds a graph by issuing
// the builder calls the model describes, in order. The first failing call
// aborts the build.
func Apply(ctx context.Context, m *Model, reg *registry.Registry) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	name := m.Name
	if name == "" {
		name = DefaultGraphName
	}
	logger.Debug("Applying graph description.", "graph", name, "libraries", len(m.Libraries), "passes", len(m.Passes), "edges", len(m.Edges), "outputs", len(m.Outputs))

	for _, lib := range m.Libraries {
		if err := reg.LoadLibrary(ctx, lib); err != nil {
			return nil, located(err, m.Range, "Unknown pass library")
		}
	}

	g := graph.New(name)
	for _, p := range m.Passes {
		inst, err := reg.Create(ctx, p.Type, registry.Config(p.Config))
		if err != nil {
			return nil, located(fmt.Errorf("creating pass %q: %w", p.Name, err), p.Range, "Invalid pass")
		}
		if err := g.AddPass(ctx, inst, p.Name); err != nil {
			return nil, located(err, p.Range, "Invalid pass")
		}
	}
	for _, e := range m.Edges {
		if err := g.AddEdge(ctx, e.From, e.To); err != nil {
			return nil, located(err, e.blame(err), "Invalid edge")
		}
	}
	for _, o := range m.Outputs {
		if err := g.MarkOutput(ctx, o.Ref); err != nil {
			return nil, located(err, o.Range, "Invalid output")
		}
	}

	logger.Debug("Graph description applied.", "graph", name, "generation", g.Generation())
	return g, nil
}

// blame picks the endpoint an AddEdge error is about: "from" when the
// error names the source reference or port, "to" otherwise.
func (e *Edge) blame(err error) hcl.Range {
	fe, ok := errdefs.As(err)
	if !ok {
		return e.ToRange
	}
	if fe.Ref != "" && fe.Ref == e.From {
		return e.FromRange
	}
	if src, perr := portref.Parse(e.From); perr == nil && fe.Pass == src.Pass && (fe.Port == "" || fe.Port == src.Port) {
		return e.FromRange
	}
	return e.ToRange
}

// FromGraph describes g as a model. Passes that report their live
// configuration through pass.Scriptable are described by it; the others by
// the configuration they were created with.
func FromGraph(g *graph.Graph, libraries []string) *Model {
	m := &Model{
		Name:      g.Name,
		Libraries: append([]string(nil), libraries...),
	}
	for _, n := range g.Nodes() {
		cfg := map[string]cty.Value(n.Instance.Config)
		if s, ok := n.Instance.Pass.(pass.Scriptable); ok {
			cfg = s.Config()
		}
		m.Passes = append(m.Passes, &Pass{Type: n.Instance.Info.Type, Name: n.Name, Config: cfg})
	}
	for _, e := range g.Edges() {
		m.Edges = append(m.Edges, &Edge{From: g.RefOf(e.Src).String(), To: g.RefOf(e.Dst).String()})
	}
	for _, h := range g.Outputs() {
		m.Outputs = append(m.Outputs, &Output{Ref: g.RefOf(h).String()})
	}
	return m
}
