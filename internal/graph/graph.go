package graph

import (
	"context"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/portref"
	"github.com/vk/framegraph/internal/registry"
)

// PortHandle is an interned (pass, port) pair: indices into the graph's
// pass list and into that pass's declared ports.
type PortHandle struct {
	Pass int
	Port int
}

// Edge connects a producing output port to a consuming input port.
type Edge struct {
	Src PortHandle
	Dst PortHandle
}

// Node is one named pass instance in the graph.
type Node struct {
	Name     string
	Instance *registry.Instance

	ports   []pass.Port
	portIdx map[string]int
}

// Ports returns the node's ports in declaration order.
func (n *Node) Ports() []pass.Port { return n.ports }

// Port returns the port at index i.
func (n *Node) Port(i int) pass.Port { return n.ports[i] }

// PortIndex returns the index of the named port.
func (n *Node) PortIndex(name string) (int, bool) {
	i, ok := n.portIdx[name]
	return i, ok
}

// Graph owns pass instances, edges and output marks.
type Graph struct {
	Name string

	nodes  []*Node
	byName map[string]int
	edges  []Edge
	// incoming maps a destination input to its edge index.
	incoming map[PortHandle]int
	outputs  []PortHandle

	generation uint64
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{
		Name:     name,
		byName:   make(map[string]int),
		incoming: make(map[PortHandle]int),
	}
}

// Generation returns a counter that moves on every structural change.
func (g *Graph) Generation() uint64 { return g.generation }

// AddPass adds a pass instance under a unique name.
func (g *Graph) AddPass(ctx context.Context, inst *registry.Instance, name string) error {
	if err := portref.ValidatePassName(name); err != nil {
		return err
	}
	if inst == nil || inst.Pass == nil {
		return errdefs.ForPass(errdefs.ErrInvalidConfig, name).WithMsg("nil pass instance")
	}
	if _, exists := g.byName[name]; exists {
		return errdefs.ForPass(errdefs.ErrDuplicateName, name)
	}
	for _, n := range g.nodes {
		if n.Instance == inst {
			return errdefs.ForPass(errdefs.ErrDuplicateName, name).WithMsg("instance already added as %q", n.Name)
		}
	}

	ports := inst.Ports()
	portIdx := make(map[string]int, len(ports))
	for i, p := range ports {
		portIdx[p.Name] = i
	}

	g.byName[name] = len(g.nodes)
	g.nodes = append(g.nodes, &Node{Name: name, Instance: inst, ports: ports, portIdx: portIdx})
	g.generation++

	ctxlog.FromContext(ctx).Debug("Pass added to graph.", "graph", g.Name, "pass", name, "type", inst.Info.Type, "ports", len(ports))
	return nil
}

// AddEdge connects src ("pass.port", an output) to dst ("pass.port", an
// input). An input accepts exactly one incoming edge.
func (g *Graph) AddEdge(ctx context.Context, src, dst string) error {
	srcH, err := g.Resolve(src)
	if err != nil {
		return err
	}
	dstH, err := g.Resolve(dst)
	if err != nil {
		return err
	}

	srcPort := g.PortOf(srcH)
	dstPort := g.PortOf(dstH)
	if srcPort.Direction != pass.Output {
		return errdefs.ForPort(errdefs.ErrPortDirectionMismatch, g.nodes[srcH.Pass].Name, srcPort.Name).
			WithMsg("edge source must be an output, got %s", srcPort.Direction)
	}
	if dstPort.Direction != pass.Input {
		return errdefs.ForPort(errdefs.ErrPortDirectionMismatch, g.nodes[dstH.Pass].Name, dstPort.Name).
			WithMsg("edge destination must be an input, got %s", dstPort.Direction)
	}
	if existing, taken := g.incoming[dstH]; taken {
		return errdefs.ForPort(errdefs.ErrPortAlreadyConnected, g.nodes[dstH.Pass].Name, dstPort.Name).
			WithMsg("already fed by %s", g.RefOf(g.edges[existing].Src))
	}

	g.incoming[dstH] = len(g.edges)
	g.edges = append(g.edges, Edge{Src: srcH, Dst: dstH})
	g.generation++

	ctxlog.FromContext(ctx).Debug("Edge added to graph.", "graph", g.Name, "from", src, "to", dst)
	return nil
}

// MarkOutput exposes a port's binding to the caller after each frame.
// Marking an already marked port is a no-op.
func (g *Graph) MarkOutput(ctx context.Context, ref string) error {
	h, err := g.Resolve(ref)
	if err != nil {
		return err
	}
	if p := g.PortOf(h); p.Direction == pass.Internal {
		return errdefs.ForPort(errdefs.ErrPortDirectionMismatch, g.nodes[h.Pass].Name, p.Name).
			WithMsg("internal ports cannot be marked")
	}
	for _, o := range g.outputs {
		if o == h {
			ctxlog.FromContext(ctx).Debug("Output already marked.", "graph", g.Name, "output", ref)
			return nil
		}
	}
	g.outputs = append(g.outputs, h)
	g.generation++

	ctxlog.FromContext(ctx).Debug("Output marked.", "graph", g.Name, "output", ref)
	return nil
}

// UnmarkOutput removes an output mark. Unmarking an unmarked port is a
// no-op.
func (g *Graph) UnmarkOutput(ctx context.Context, ref string) error {
	h, err := g.Resolve(ref)
	if err != nil {
		return err
	}
	for i, o := range g.outputs {
		if o == h {
			g.outputs = append(g.outputs[:i:i], g.outputs[i+1:]...)
			g.generation++
			ctxlog.FromContext(ctx).Debug("Output unmarked.", "graph", g.Name, "output", ref)
			return nil
		}
	}
	return nil
}

// RemoveEdge deletes the edge between src and dst.
func (g *Graph) RemoveEdge(ctx context.Context, src, dst string) error {
	srcH, err := g.Resolve(src)
	if err != nil {
		return err
	}
	dstH, err := g.Resolve(dst)
	if err != nil {
		return err
	}
	idx, ok := g.incoming[dstH]
	if !ok || g.edges[idx].Src != srcH {
		return errdefs.New(errdefs.ErrNotFound, "no edge %s -> %s", src, dst)
	}

	edges := make([]Edge, 0, len(g.edges)-1)
	edges = append(edges, g.edges[:idx]...)
	edges = append(edges, g.edges[idx+1:]...)
	g.setEdges(edges)
	g.generation++

	ctxlog.FromContext(ctx).Debug("Edge removed from graph.", "graph", g.Name, "from", src, "to", dst)
	return nil
}

// RemovePass deletes a pass together with its edges and output marks.
func (g *Graph) RemovePass(ctx context.Context, name string) error {
	idx, ok := g.byName[name]
	if !ok {
		return errdefs.ForPass(errdefs.ErrUnknownPass, name)
	}

	remap := func(h PortHandle) PortHandle {
		if h.Pass > idx {
			h.Pass--
		}
		return h
	}

	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.Src.Pass == idx || e.Dst.Pass == idx {
			continue
		}
		edges = append(edges, Edge{Src: remap(e.Src), Dst: remap(e.Dst)})
	}
	outputs := make([]PortHandle, 0, len(g.outputs))
	for _, o := range g.outputs {
		if o.Pass == idx {
			continue
		}
		outputs = append(outputs, remap(o))
	}

	g.nodes = append(g.nodes[:idx:idx], g.nodes[idx+1:]...)
	g.byName = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.byName[n.Name] = i
	}
	g.outputs = outputs
	g.setEdges(edges)
	g.generation++

	ctxlog.FromContext(ctx).Debug("Pass removed from graph.", "graph", g.Name, "pass", name)
	return nil
}

func (g *Graph) setEdges(edges []Edge) {
	g.edges = edges
	g.incoming = make(map[PortHandle]int, len(edges))
	for i, e := range edges {
		g.incoming[e.Dst] = i
	}
}

// Resolve turns a "pass.port" reference into a handle.
func (g *Graph) Resolve(ref string) (PortHandle, error) {
	r, err := portref.Parse(ref)
	if err != nil {
		return PortHandle{}, err
	}
	passIdx, ok := g.byName[r.Pass]
	if !ok {
		return PortHandle{}, errdefs.ForPass(errdefs.ErrUnknownPass, r.Pass).WithRef(ref)
	}
	portIdx, ok := g.nodes[passIdx].portIdx[r.Port]
	if !ok {
		return PortHandle{}, errdefs.ForPort(errdefs.ErrUnknownPort, r.Pass, r.Port).WithRef(ref)
	}
	return PortHandle{Pass: passIdx, Port: portIdx}, nil
}

// PortOf returns the port descriptor behind a handle.
func (g *Graph) PortOf(h PortHandle) pass.Port {
	return g.nodes[h.Pass].ports[h.Port]
}

// RefOf returns the reference naming a handle.
func (g *Graph) RefOf(h PortHandle) portref.Ref {
	return portref.Ref{Pass: g.nodes[h.Pass].Name, Port: g.nodes[h.Pass].ports[h.Port].Name}
}

// Nodes returns the passes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Node returns the pass with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	idx, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// NodeAt returns the pass at insertion index i.
func (g *Graph) NodeAt(i int) *Node { return g.nodes[i] }

// Len returns the number of passes.
func (g *Graph) Len() int { return len(g.nodes) }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Incoming returns the edge feeding an input port.
func (g *Graph) Incoming(dst PortHandle) (Edge, bool) {
	idx, ok := g.incoming[dst]
	if !ok {
		return Edge{}, false
	}
	return g.edges[idx], true
}

// Outputs returns the marked ports in marking order.
func (g *Graph) Outputs() []PortHandle {
	out := make([]PortHandle, len(g.outputs))
	copy(out, g.outputs)
	return out
}
