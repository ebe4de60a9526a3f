package allocator

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/graph"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/resource"
	"github.com/vk/framegraph/internal/scheduler"
	"github.com/vk/framegraph/internal/testutil"
)

var (
	out = testutil.Out("out", resource.FormatRGBA32Float)
	in  = testutil.In("in")
)

type fixture struct {
	g *graph.Graph
	s *scheduler.Schedule
}

func newFixture(t *testing.T, passes map[string][]pass.Port, order []string, edges [][2]string, marks ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	g := graph.New("alloc")
	for _, name := range order {
		inst := testutil.Instance(t, &testutil.FuncPass{Name: name, Ports: passes[name]})
		require.NoError(t, g.AddPass(ctx, inst, name))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(ctx, e[0], e[1]))
	}
	for _, m := range marks {
		require.NoError(t, g.MarkOutput(ctx, m))
	}
	deps, err := g.Validate(ctx)
	require.NoError(t, err)
	s, err := scheduler.Build(ctx, g, deps)
	require.NoError(t, err)
	return &fixture{g: g, s: s}
}

func (f *fixture) allocate(t *testing.T, opts Options) *Allocation {
	t.Helper()
	if opts.FrameWidth == 0 {
		opts.FrameWidth, opts.FrameHeight = 8, 4
	}
	ctx, _ := testutil.Context(t)
	a, err := Allocate(ctx, f.g, f.s, opts)
	require.NoError(t, err)
	assertNoOverlap(t, f.g, a)
	return a
}

func (f *fixture) binding(t *testing.T, a *Allocation, ref string) *resource.Buffer {
	t.Helper()
	h, err := f.g.Resolve(ref)
	require.NoError(t, err)
	return a.Binding(h)
}

func (f *fixture) slot(t *testing.T, a *Allocation, ref string) int {
	t.Helper()
	b := f.binding(t, a, ref)
	require.NotNil(t, b.Slot(), "%s has no storage", ref)
	return b.Slot().ID
}

// assertNoOverlap fails if two outputs with overlapping lifetimes share a
// slot.
func assertNoOverlap(t *testing.T, g *graph.Graph, a *Allocation) {
	t.Helper()
	for i, x := range a.Lifetimes {
		for _, y := range a.Lifetimes[i+1:] {
			if x.Slot != y.Slot {
				continue
			}
			disjoint := x.End < y.Start || y.End < x.Start
			assert.True(t, disjoint, "%s [%d,%d] and %s [%d,%d] share slot %d",
				g.RefOf(x.Port), x.Start, x.End, g.RefOf(y.Port), y.Start, y.End, x.Slot)
		}
	}
}

func chain(t *testing.T, marks ...string) *fixture {
	return newFixture(t,
		map[string][]pass.Port{
			"A": {out},
			"B": {in, out},
			"C": {in, out},
			"D": {in, out},
		},
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A.out", "B.in"}, {"B.out", "C.in"}, {"C.out", "D.in"}},
		marks...,
	)
}

func TestAllocate_AliasesDisjointLifetimes(t *testing.T) {
	f := chain(t, "D.out")
	a := f.allocate(t, Options{})

	// A.out [0,1], B.out [1,2], C.out [2,3], D.out [3,end].
	assert.Equal(t, 2, a.Stats.Slots)
	assert.Equal(t, 4, a.Stats.Outputs)
	assert.Equal(t, 2, a.Stats.Aliased)
	assert.Equal(t, 2*8*4*4*4, a.Stats.Bytes)

	assert.Equal(t, f.slot(t, a, "A.out"), f.slot(t, a, "C.out"))
	assert.Equal(t, f.slot(t, a, "B.out"), f.slot(t, a, "D.out"))
	assert.NotEqual(t, f.slot(t, a, "A.out"), f.slot(t, a, "B.out"))
}

func TestAllocate_DisableAliasing(t *testing.T) {
	f := chain(t, "D.out")
	a := f.allocate(t, Options{DisableAliasing: true})

	assert.Equal(t, 4, a.Stats.Slots)
	assert.Zero(t, a.Stats.Aliased)
	seen := map[int]bool{}
	for _, ref := range []string{"A.out", "B.out", "C.out", "D.out"} {
		id := f.slot(t, a, ref)
		assert.False(t, seen[id], "slot %d reused by %s", id, ref)
		seen[id] = true
	}
}

func TestAllocate_MarkedOutputsAreNeverReused(t *testing.T) {
	t.Run("marked output port", func(t *testing.T) {
		f := chain(t, "A.out", "D.out")
		a := f.allocate(t, Options{})

		aSlot := f.slot(t, a, "A.out")
		for _, ref := range []string{"B.out", "C.out", "D.out"} {
			assert.NotEqual(t, aSlot, f.slot(t, a, ref), ref)
		}
		for _, lt := range a.Lifetimes {
			if f.g.RefOf(lt.Port).String() == "A.out" {
				assert.True(t, lt.Protected())
			}
		}
	})

	t.Run("marked input protects its producer", func(t *testing.T) {
		f := chain(t, "B.in")
		a := f.allocate(t, Options{})

		aSlot := f.slot(t, a, "A.out")
		for _, ref := range []string{"B.out", "C.out", "D.out"} {
			assert.NotEqual(t, aSlot, f.slot(t, a, ref), ref)
		}
	})
}

func TestAllocate_ParallelSiblingsDoNotAlias(t *testing.T) {
	// A -> B, and C independent: sequential steps A0 B1 C2, levels A0 B1 C0.
	f := newFixture(t,
		map[string][]pass.Port{
			"A": {out},
			"B": {in, out},
			"C": {out},
		},
		[]string{"A", "B", "C"},
		[][2]string{{"A.out", "B.in"}},
	)

	seq := f.allocate(t, Options{})
	assert.Equal(t, f.slot(t, seq, "A.out"), f.slot(t, seq, "C.out"))

	par := f.allocate(t, Options{Parallel: true})
	assert.NotEqual(t, f.slot(t, par, "A.out"), f.slot(t, par, "C.out"))
	assert.Equal(t, f.slot(t, par, "C.out"), f.slot(t, par, "B.out"))
}

func TestAllocate_SizeMismatchIsNotAliased(t *testing.T) {
	small := pass.Port{Name: "out", Direction: pass.Output, Format: resource.FormatR32Float, Width: 2, Height: 2}
	f := newFixture(t,
		map[string][]pass.Port{
			"A": {out},
			"B": {in, out},
			"C": {in, small},
		},
		[]string{"A", "B", "C"},
		[][2]string{{"A.out", "B.in"}, {"B.out", "C.in"}},
	)
	a := f.allocate(t, Options{})

	assert.Equal(t, 3, a.Stats.Slots)
	c := f.binding(t, a, "C.out")
	assert.Equal(t, resource.FormatR32Float, c.Format)
	assert.Equal(t, 2, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, 4, c.Len())
}

func TestAllocate_InputBindings(t *testing.T) {
	anyOut := testutil.Out("out", resource.FormatAny)
	history := pass.Port{Name: "history", Direction: pass.Input, Format: resource.FormatRG32Float, Optional: true}
	f := newFixture(t,
		map[string][]pass.Port{
			"A": {anyOut},
			"B": {in, history, out},
		},
		[]string{"A", "B"},
		[][2]string{{"A.out", "B.in"}},
	)
	a := f.allocate(t, Options{FrameWidth: 3, FrameHeight: 2})

	src := f.binding(t, a, "A.out")
	assert.Same(t, src, f.binding(t, a, "B.in"))
	assert.Equal(t, resource.FormatRGBA32Float, src.Format)
	assert.Equal(t, 3*2*4, src.Len())

	empty := f.binding(t, a, "B.history")
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, resource.FormatRG32Float, empty.Format)

	h, err := f.g.Resolve("B.in")
	require.NoError(t, err)
	inputs, outputs, internals := a.Bindings(f.g.NodeAt(h.Pass), h.Pass)
	assert.Len(t, inputs, 2)
	assert.Len(t, outputs, 1)
	assert.Empty(t, internals)
	assert.Same(t, src, inputs["in"])
}

func TestAllocate_InternalPortsOwnTheirSlot(t *testing.T) {
	history := testutil.Scratch("history", resource.FormatR32Float)
	f := newFixture(t,
		map[string][]pass.Port{
			"A": {out},
			"B": {in, history, out},
			"C": {in, out},
			"D": {in, out},
		},
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A.out", "B.in"}, {"B.out", "C.in"}, {"C.out", "D.in"}},
		"D.out",
	)

	for _, opts := range []Options{{}, {Parallel: true}, {DisableAliasing: true}} {
		a := f.allocate(t, opts)
		assert.Equal(t, 4, a.Stats.Outputs)
		assert.Equal(t, 1, a.Stats.Internals)

		hSlot := f.slot(t, a, "B.history")
		for _, ref := range []string{"A.out", "B.out", "C.out", "D.out"} {
			assert.NotEqual(t, hSlot, f.slot(t, a, ref), ref)
		}
		hist := f.binding(t, a, "B.history")
		assert.Equal(t, resource.FormatR32Float, hist.Format)
		assert.Equal(t, 8*4, hist.Len())

		for _, lt := range a.Lifetimes {
			if lt.Internal {
				assert.Equal(t, hSlot, lt.Slot)
				assert.True(t, lt.Protected())
			}
		}

		b := f.g.NodeAt(f.s.Order[1])
		_, outputs, internals := a.Bindings(b, f.s.Order[1])
		assert.Len(t, outputs, 1)
		assert.Same(t, hist, internals["history"])
	}

	// Aliasing among the chain is unchanged by the private slot.
	a := f.allocate(t, Options{})
	assert.Equal(t, 3, a.Stats.Slots)
	assert.Equal(t, 2*8*4*4*4+8*4*4, a.Stats.Bytes)
}

func TestAllocate_RandomGraphs(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		d := testutil.RandomDAG(rand.New(rand.NewSource(seed)), 2+int(seed%15))
		f := newFixture(t, d.Ports, d.Order, d.Edges, d.Marks...)

		for _, opts := range []Options{{}, {Parallel: true}} {
			t.Run(fmt.Sprintf("seed=%d,parallel=%t", seed, opts.Parallel), func(t *testing.T) {
				a := f.allocate(t, opts)
				assertLiveOutputsApart(t, f, a, opts.Parallel)
				assertProtectedSlotsExclusive(t, f, a)
			})
		}
	}
}

type interval struct {
	ref        string
	start, end int
}

// assertLiveOutputsApart recomputes every output's live interval from the
// schedule and checks that outputs sharing a slot are never live together.
func assertLiveOutputsApart(t *testing.T, f *fixture, a *Allocation, parallel bool) {
	t.Helper()
	step := f.s.Step
	if parallel {
		step = f.s.Level
	}
	marked := map[string]bool{}
	for _, h := range f.g.Outputs() {
		if f.g.PortOf(h).Direction == pass.Input {
			if e, ok := f.g.Incoming(h); ok {
				h = e.Src
			}
		}
		marked[f.g.RefOf(h).String()] = true
	}

	bySlot := map[int][]interval{}
	for pi, n := range f.g.Nodes() {
		for qi, p := range n.Ports() {
			if p.Direction != pass.Output {
				continue
			}
			h := graph.PortHandle{Pass: pi, Port: qi}
			iv := interval{ref: f.g.RefOf(h).String(), start: step[pi], end: step[pi]}
			for _, e := range f.g.Edges() {
				if e.Src == h && step[e.Dst.Pass] > iv.end {
					iv.end = step[e.Dst.Pass]
				}
			}
			if marked[iv.ref] {
				iv.end = EndOfFrame
			}
			id := a.Binding(h).Slot().ID
			bySlot[id] = append(bySlot[id], iv)
		}
	}

	for id, ivs := range bySlot {
		for i, x := range ivs {
			for _, y := range ivs[i+1:] {
				assert.True(t, x.end < y.start || y.end < x.start,
					"%s [%d,%d] and %s [%d,%d] share slot %d", x.ref, x.start, x.end, y.ref, y.start, y.end, id)
			}
		}
	}
}

// assertProtectedSlotsExclusive checks that marked outputs and internal
// ports never share their slot with any other port.
func assertProtectedSlotsExclusive(t *testing.T, f *fixture, a *Allocation) {
	t.Helper()
	owners := map[int][]string{}
	for pi, n := range f.g.Nodes() {
		for qi, p := range n.Ports() {
			if p.Direction == pass.Input {
				continue
			}
			h := graph.PortHandle{Pass: pi, Port: qi}
			id := a.Binding(h).Slot().ID
			owners[id] = append(owners[id], f.g.RefOf(h).String())
		}
	}
	exclusive := map[string]bool{}
	for _, h := range f.g.Outputs() {
		if f.g.PortOf(h).Direction == pass.Output {
			exclusive[f.g.RefOf(h).String()] = true
		}
	}
	for _, lt := range a.Lifetimes {
		if lt.Internal {
			exclusive[f.g.RefOf(lt.Port).String()] = true
		}
	}
	for id, refs := range owners {
		for _, ref := range refs {
			if exclusive[ref] {
				assert.Len(t, refs, 1, "slot %d of %s is shared with %v", id, ref, refs)
			}
		}
	}
}

func TestAllocate_InvalidFrameSize(t *testing.T) {
	f := chain(t)
	_, err := Allocate(context.Background(), f.g, f.s, Options{FrameWidth: 0, FrameHeight: 720})
	require.ErrorIs(t, err, errdefs.ErrInvalidConfig)
	assert.ErrorContains(t, err, `pass "A", port "out"`)
}
