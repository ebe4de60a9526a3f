package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/internal/resource"
	"github.com/vk/framegraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func testRegistry() *registry.Registry {
	return registry.New(registry.Library{
		Name: "TestPasses",
		Modules: []registry.Module{
			&testutil.SimpleModule{
				Type:  "Source",
				Ports: []pass.Port{testutil.Out("out", resource.FormatRGBA32Float)},
				Schema: registry.Schema{
					"value": {Type: cty.Number, Default: cty.NumberIntVal(1)},
				},
			},
			&testutil.SimpleModule{
				Type:  "Filter",
				Ports: []pass.Port{testutil.In("in"), testutil.Out("out", resource.FormatRGBA32Float)},
			},
		},
	})
}

func svgfModel() *Model {
	return &Model{
		Name:      "SVGF",
		Libraries: []string{"TestPasses.dll"},
		Passes: []*Pass{
			{Type: "Source", Name: "GBuffer", Config: map[string]cty.Value{"value": cty.NumberIntVal(3)}},
			{Type: "Filter", Name: "SVGFPass", Config: map[string]cty.Value{}},
		},
		Edges:   []*Edge{{From: "GBuffer.out", To: "SVGFPass.in"}},
		Outputs: []*Output{{Ref: "SVGFPass.out"}},
	}
}

func TestApply(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testRegistry()

	g, err := Apply(ctx, svgfModel(), reg)
	require.NoError(t, err)

	assert.Equal(t, "SVGF", g.Name)
	assert.True(t, reg.Loaded("TestPasses"))
	require.Equal(t, 2, g.Len())
	assert.Equal(t, "GBuffer", g.NodeAt(0).Name)
	require.Len(t, g.Edges(), 1)
	require.Len(t, g.Outputs(), 1)
	assert.Equal(t, "SVGFPass.out", g.RefOf(g.Outputs()[0]).String())

	node, ok := g.Node("GBuffer")
	require.True(t, ok)
	assert.True(t, node.Instance.Config["value"].RawEquals(cty.NumberIntVal(3)))
}

func TestApply_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(m *Model)
		kind   error
	}{
		{
			name:   "unknown library",
			mutate: func(m *Model) { m.Libraries = append(m.Libraries, "Missing.dll") },
			kind:   errdefs.ErrPassLibraryNotFound,
		},
		{
			name:   "unknown pass type",
			mutate: func(m *Model) { m.Passes[1].Type = "Blur" },
			kind:   errdefs.ErrUnknownPassType,
		},
		{
			name:   "invalid config",
			mutate: func(m *Model) { m.Passes[0].Config["value"] = cty.StringVal("bright") },
			kind:   errdefs.ErrInvalidConfig,
		},
		{
			name:   "duplicate pass",
			mutate: func(m *Model) { m.Passes[1].Name = "GBuffer" },
			kind:   errdefs.ErrDuplicateName,
		},
		{
			name:   "edge to unknown port",
			mutate: func(m *Model) { m.Edges[0].To = "SVGFPass.color" },
			kind:   errdefs.ErrUnknownPort,
		},
		{
			name:   "output on unknown pass",
			mutate: func(m *Model) { m.Outputs = []*Output{{Ref: "Tonemap.out"}} },
			kind:   errdefs.ErrUnknownPass,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := svgfModel()
			tc.mutate(m)
			g, err := Apply(context.Background(), m, testRegistry())
			assert.ErrorIs(t, err, tc.kind)
			assert.Nil(t, g)
		})
	}
}

func at(line, col int) hcl.Range {
	return hcl.Range{
		Filename: "svgf.hcl",
		Start:    hcl.Pos{Line: line, Column: col},
		End:      hcl.Pos{Line: line, Column: col + 12},
	}
}

func locatedModel() *Model {
	m := svgfModel()
	m.Range = at(1, 1)
	m.Passes[0].Range = at(5, 1)
	m.Passes[1].Range = at(9, 1)
	m.Edges[0].FromRange = at(14, 10)
	m.Edges[0].ToRange = at(15, 10)
	m.Outputs[0].Range = at(18, 1)
	return m
}

func TestApply_ErrorsPointAtSource(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(m *Model)
		kind    error
		summary string
		line    int
	}{
		{
			name:    "unknown library",
			mutate:  func(m *Model) { m.Libraries = []string{"Missing.dll"} },
			kind:    errdefs.ErrPassLibraryNotFound,
			summary: "Unknown pass library",
			line:    1,
		},
		{
			name:    "invalid config",
			mutate:  func(m *Model) { m.Passes[0].Config["value"] = cty.StringVal("bright") },
			kind:    errdefs.ErrInvalidConfig,
			summary: "Invalid pass",
			line:    5,
		},
		{
			name:    "duplicate pass",
			mutate:  func(m *Model) { m.Passes[1].Name = "GBuffer" },
			kind:    errdefs.ErrDuplicateName,
			summary: "Invalid pass",
			line:    9,
		},
		{
			name:    "unknown source port",
			mutate:  func(m *Model) { m.Edges[0].From = "GBuffer.color" },
			kind:    errdefs.ErrUnknownPort,
			summary: "Invalid edge",
			line:    14,
		},
		{
			name:    "unknown destination pass",
			mutate:  func(m *Model) { m.Edges[0].To = "Tonemap.in" },
			kind:    errdefs.ErrUnknownPass,
			summary: "Invalid edge",
			line:    15,
		},
		{
			name:    "edge into an output",
			mutate:  func(m *Model) { m.Edges[0].To = "SVGFPass.out" },
			kind:    errdefs.ErrPortDirectionMismatch,
			summary: "Invalid edge",
			line:    15,
		},
		{
			name:    "unknown output",
			mutate:  func(m *Model) { m.Outputs[0].Ref = "SVGFPass.color" },
			kind:    errdefs.ErrUnknownPort,
			summary: "Invalid output",
			line:    18,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := locatedModel()
			tc.mutate(m)
			_, err := Apply(context.Background(), m, testRegistry())
			require.ErrorIs(t, err, tc.kind)

			var se *SourceError
			require.ErrorAs(t, err, &se)
			require.Len(t, se.Diagnostics, 1)
			d := se.Diagnostics[0]
			assert.Equal(t, hcl.DiagError, d.Severity)
			assert.Equal(t, tc.summary, d.Summary)
			require.NotNil(t, d.Subject)
			assert.Equal(t, tc.line, d.Subject.Start.Line)
			assert.ErrorContains(t, err, fmt.Sprintf("svgf.hcl:%d,", tc.line))
		})
	}
}

func TestApply_ErrorsWithoutSourceAreUnwrapped(t *testing.T) {
	m := svgfModel()
	m.Edges[0].To = "SVGFPass.color"
	_, err := Apply(context.Background(), m, testRegistry())
	require.ErrorIs(t, err, errdefs.ErrUnknownPort)
	var se *SourceError
	assert.False(t, errors.As(err, &se))
}

func TestApply_DefaultGraphName(t *testing.T) {
	m := svgfModel()
	m.Name = ""
	g, err := Apply(context.Background(), m, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, DefaultGraphName, g.Name)
}

func TestFromGraph(t *testing.T) {
	ctx := context.Background()
	want := svgfModel()
	g, err := Apply(ctx, want, testRegistry())
	require.NoError(t, err)

	got := FromGraph(g, want.Libraries)
	diff := cmp.Diff(want, got, cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) }))
	assert.Empty(t, diff)
}
