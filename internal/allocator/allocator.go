package allocator

import (
	"context"
	"math"
	"sort"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/graph"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/resource"
	"github.com/vk/framegraph/internal/scheduler"
)

// EndOfFrame is the end step of a lifetime that must survive the frame.
const EndOfFrame = math.MaxInt

// Options controls allocation.
type Options struct {
	FrameWidth  int
	FrameHeight int

	// Parallel measures lifetimes in levels instead of plan positions.
	Parallel bool
	// DisableAliasing gives every output its own slot.
	DisableAliasing bool
}

// Lifetime is the step interval during which an output's contents matter.
type Lifetime struct {
	Port  graph.PortHandle
	Start int
	End   int
	Slot  int

	// Internal lifetimes span every frame of the plan.
	Internal bool
}

// Protected reports whether the output lives until the end of the frame.
func (l Lifetime) Protected() bool { return l.End == EndOfFrame }

// Stats summarizes an allocation.
type Stats struct {
	Outputs   int
	Internals int
	Slots     int
	Bytes     int
	Aliased   int
}

// Allocation is the set of bindings for one compiled plan.
type Allocation struct {
	Slots     []*resource.Slot
	Lifetimes []Lifetime
	Stats     Stats

	// bindings is indexed by pass insertion index, then port index.
	bindings [][]*resource.Buffer
}

// Binding returns the buffer bound to a port.
func (a *Allocation) Binding(h graph.PortHandle) *resource.Buffer {
	return a.bindings[h.Pass][h.Port]
}

// Bindings returns the named input, output and internal bindings of one pass.
func (a *Allocation) Bindings(node *graph.Node, passIdx int) (inputs, outputs, internals map[string]*resource.Buffer) {
	inputs = make(map[string]*resource.Buffer)
	outputs = make(map[string]*resource.Buffer)
	internals = make(map[string]*resource.Buffer)
	for i, p := range node.Ports() {
		switch p.Direction {
		case pass.Input:
			inputs[p.Name] = a.bindings[passIdx][i]
		case pass.Internal:
			internals[p.Name] = a.bindings[passIdx][i]
		default:
			outputs[p.Name] = a.bindings[passIdx][i]
		}
	}
	return inputs, outputs, internals
}

type request struct {
	lifetime Lifetime
	format   resource.Format
	width    int
	height   int
}

type slotState struct {
	slot *resource.Slot
	end  int
}

// Allocate binds every port of g following the order in s.
func Allocate(ctx context.Context, g *graph.Graph, s *scheduler.Schedule, opts Options) (*Allocation, error) {
	logger := ctxlog.FromContext(ctx)

	step := s.Step
	if opts.Parallel {
		step = s.Level
	}

	protected := protectedOutputs(g)
	lastUse := make(map[graph.PortHandle]int)
	for _, e := range g.Edges() {
		if st, ok := lastUse[e.Src]; !ok || step[e.Dst.Pass] > st {
			lastUse[e.Src] = step[e.Dst.Pass]
		}
	}

	var reqs, internals []request
	for _, pi := range s.Order {
		node := g.NodeAt(pi)
		for qi, p := range node.Ports() {
			if p.Direction == pass.Input {
				continue
			}
			h := graph.PortHandle{Pass: pi, Port: qi}
			w, ht := opts.FrameWidth, opts.FrameHeight
			if p.Width > 0 && p.Height > 0 {
				w, ht = p.Width, p.Height
			}
			if w <= 0 || ht <= 0 {
				return nil, errdefs.ForPort(errdefs.ErrInvalidConfig, node.Name, p.Name).
					WithMsg("%s size %dx%d", p.Direction, w, ht)
			}
			r := request{format: p.Format.Resolve(), width: w, height: ht}
			if p.Direction == pass.Internal {
				r.lifetime = Lifetime{Port: h, Start: 0, End: EndOfFrame, Internal: true}
				internals = append(internals, r)
				continue
			}
			start := step[pi]
			end := start
			if last, ok := lastUse[h]; ok && last > end {
				end = last
			}
			if protected[h] {
				end = EndOfFrame
			}
			r.lifetime = Lifetime{Port: h, Start: start, End: end}
			reqs = append(reqs, r)
		}
	}
	// Parallel levels need not be monotonic in plan order.
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].lifetime.Start < reqs[j].lifetime.Start
	})

	a := &Allocation{bindings: make([][]*resource.Buffer, g.Len())}
	for i, n := range g.Nodes() {
		a.bindings[i] = make([]*resource.Buffer, len(n.Ports()))
	}

	var slots []*slotState
	for _, r := range reqs {
		n := resource.Elements(r.format, r.width, r.height)
		var chosen *slotState
		if !opts.DisableAliasing {
			for _, st := range slots {
				if st.end < r.lifetime.Start && st.slot.Len() == n {
					chosen = st
					break
				}
			}
		}
		if chosen == nil {
			chosen = &slotState{slot: resource.NewSlot(len(slots), n)}
			slots = append(slots, chosen)
		} else {
			a.Stats.Aliased++
			logger.Debug("Output aliases an existing slot.", "port", g.RefOf(r.lifetime.Port).String(), "slot", chosen.slot.ID)
		}
		chosen.end = r.lifetime.End

		lt := r.lifetime
		lt.Slot = chosen.slot.ID
		a.Lifetimes = append(a.Lifetimes, lt)
		a.bindings[lt.Port.Pass][lt.Port.Port] = resource.NewBuffer(r.format, r.width, r.height, chosen.slot)
	}

	// Internal ports always get a slot of their own, so nothing another
	// pass writes can clobber what they carry into the next frame.
	for _, r := range internals {
		slot := resource.NewSlot(len(slots), resource.Elements(r.format, r.width, r.height))
		slots = append(slots, &slotState{slot: slot, end: EndOfFrame})

		lt := r.lifetime
		lt.Slot = slot.ID
		a.Lifetimes = append(a.Lifetimes, lt)
		a.bindings[lt.Port.Pass][lt.Port.Port] = resource.NewBuffer(r.format, r.width, r.height, slot)
	}

	for pi, n := range g.Nodes() {
		for qi, p := range n.Ports() {
			if p.Direction != pass.Input {
				continue
			}
			h := graph.PortHandle{Pass: pi, Port: qi}
			if e, ok := g.Incoming(h); ok {
				a.bindings[pi][qi] = a.bindings[e.Src.Pass][e.Src.Port]
			} else {
				a.bindings[pi][qi] = resource.Empty(p.Format)
			}
		}
	}

	for _, st := range slots {
		a.Slots = append(a.Slots, st.slot)
		a.Stats.Bytes += st.slot.Bytes()
	}
	a.Stats.Outputs = len(reqs)
	a.Stats.Internals = len(internals)
	a.Stats.Slots = len(slots)

	logger.Debug("Resources allocated.",
		"graph", g.Name,
		"outputs", a.Stats.Outputs,
		"internals", a.Stats.Internals,
		"slots", a.Stats.Slots,
		"bytes", a.Stats.Bytes,
		"aliased", a.Stats.Aliased,
		"parallel", opts.Parallel,
	)
	return a, nil
}

// protectedOutputs returns the output ports whose contents the caller reads
// after the frame: marked outputs and the producers of marked inputs.
func protectedOutputs(g *graph.Graph) map[graph.PortHandle]bool {
	out := make(map[graph.PortHandle]bool)
	for _, h := range g.Outputs() {
		if g.PortOf(h).Direction == pass.Output {
			out[h] = true
			continue
		}
		if e, ok := g.Incoming(h); ok {
			out[e.Src] = true
		}
	}
	return out
}
