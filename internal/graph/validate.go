package graph

import (
	"context"
	"sort"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/pass"
)

// Dependencies is the pass-level dependency graph derived from edges: pass
// A depends on pass B when any edge runs from B to A. Lists are indexed by
// insertion index and hold sorted, unique indices.
type Dependencies struct {
	Producers [][]int
	Consumers [][]int
}

// Validate checks the graph and derives its dependency lists. Checks run in
// a fixed order and the first failure is returned:
//
//  1. every edge endpoint resolves to a port of the right direction;
//  2. connected ports have compatible formats;
//  3. every required input has exactly one incoming edge;
//  4. the pass dependency graph is acyclic.
func (g *Graph) Validate(ctx context.Context) (*Dependencies, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validate: Starting graph validation.", "graph", g.Name, "passes", len(g.nodes), "edges", len(g.edges))

	if err := g.validateEndpoints(); err != nil {
		return nil, err
	}
	if err := g.validateFormats(); err != nil {
		return nil, err
	}
	if err := g.validateInputs(); err != nil {
		return nil, err
	}

	deps := g.dependencies()
	if cycle := findCycle(deps.Consumers); cycle != nil {
		names := make([]string, len(cycle))
		for i, idx := range cycle {
			names[i] = g.nodes[idx].Name
		}
		return nil, errdefs.Cyclic(names)
	}

	logger.Debug("Validate: Graph is valid.", "graph", g.Name)
	return deps, nil
}

func (g *Graph) validHandle(h PortHandle) bool {
	return h.Pass >= 0 && h.Pass < len(g.nodes) && h.Port >= 0 && h.Port < len(g.nodes[h.Pass].ports)
}

func (g *Graph) validateEndpoints() error {
	for _, e := range g.edges {
		if !g.validHandle(e.Src) || !g.validHandle(e.Dst) {
			return errdefs.New(errdefs.ErrUnknownPort, "edge endpoint no longer resolves")
		}
		if src := g.PortOf(e.Src); src.Direction != pass.Output {
			return errdefs.ForPort(errdefs.ErrPortDirectionMismatch, g.nodes[e.Src.Pass].Name, src.Name)
		}
		if dst := g.PortOf(e.Dst); dst.Direction != pass.Input {
			return errdefs.ForPort(errdefs.ErrPortDirectionMismatch, g.nodes[e.Dst.Pass].Name, dst.Name)
		}
	}
	for _, o := range g.outputs {
		if !g.validHandle(o) {
			return errdefs.New(errdefs.ErrUnknownPort, "output mark no longer resolves")
		}
	}
	return nil
}

func (g *Graph) validateFormats() error {
	for _, e := range g.edges {
		src, dst := g.PortOf(e.Src), g.PortOf(e.Dst)
		if !src.Format.Compatible(dst.Format) {
			return errdefs.ForPort(errdefs.ErrPortTypeMismatch, g.nodes[e.Dst.Pass].Name, dst.Name).
				WithMsg("%s produces %s, input accepts %s", g.RefOf(e.Src), src.Format, dst.Format)
		}
	}
	return nil
}

func (g *Graph) validateInputs() error {
	counts := make(map[PortHandle]int, len(g.edges))
	for _, e := range g.edges {
		counts[e.Dst]++
	}
	for pi, n := range g.nodes {
		for qi, p := range n.ports {
			if p.Direction != pass.Input {
				continue
			}
			c := counts[PortHandle{Pass: pi, Port: qi}]
			if c > 1 {
				return errdefs.ForPort(errdefs.ErrPortAlreadyConnected, n.Name, p.Name).WithMsg("%d incoming edges", c)
			}
			if c == 0 && p.Required() {
				return errdefs.ForPort(errdefs.ErrUnsatisfiedInput, n.Name, p.Name)
			}
		}
	}
	return nil
}

func (g *Graph) dependencies() *Dependencies {
	n := len(g.nodes)
	producers := make([]map[int]struct{}, n)
	consumers := make([]map[int]struct{}, n)
	for i := 0; i < n; i++ {
		producers[i] = make(map[int]struct{})
		consumers[i] = make(map[int]struct{})
	}
	for _, e := range g.edges {
		producers[e.Dst.Pass][e.Src.Pass] = struct{}{}
		consumers[e.Src.Pass][e.Dst.Pass] = struct{}{}
	}
	return &Dependencies{
		Producers: sortedLists(producers),
		Consumers: sortedLists(consumers),
	}
}

func sortedLists(sets []map[int]struct{}) [][]int {
	out := make([][]int, len(sets))
	for i, set := range sets {
		list := make([]int, 0, len(set))
		for v := range set {
			list = append(list, v)
		}
		sort.Ints(list)
		out[i] = list
	}
	return out
}

// findCycle runs a depth-first search over outgoing lists in index order
// and returns one cycle as a path whose first and last entries are equal,
// or nil. A self-loop is reported as [i, i].
func findCycle(outgoing [][]int) []int {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(outgoing))
	parent := make([]int, len(outgoing))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var visit func(u int) bool
	visit = func(u int) bool {
		color[u] = gray
		for _, v := range outgoing[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if visit(v) {
					return true
				}
			case gray:
				// Back edge u -> v: walk parents from u up to v.
				path := []int{u}
				for cur := u; cur != v; {
					cur = parent[cur]
					path = append(path, cur)
				}
				// path is u ... v in reverse dependency order.
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = append(path, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range outgoing {
		if color[i] == white && visit(i) {
			return cycle
		}
	}
	return nil
}
