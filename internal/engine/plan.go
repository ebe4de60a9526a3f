package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/framegraph/internal/allocator"
	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/graph"
	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/resource"
	"github.com/vk/framegraph/internal/scheduler"
)

// step is one scheduled pass with its bindings resolved.
type step struct {
	index     int
	name      string
	pass      pass.Pass
	level     int
	inputs    map[string]*resource.Buffer
	outputs   map[string]*resource.Buffer
	internals map[string]*resource.Buffer
}

// Plan is a compiled graph: an ordered pass sequence with every port bound
// to storage. A plan is valid only for the graph generation it was built
// from.
type Plan struct {
	graph      *graph.Graph
	generation uint64
	opts       Options
	schedule   *scheduler.Schedule
	alloc      *allocator.Allocation
	steps      []*step
	levels     [][]*step

	// mu serializes frames.
	mu      sync.Mutex
	frame   uint64
	outputs *Outputs
}

// Compile validates g and turns it into a plan. No plan is returned if any
// check fails.
func Compile(ctx context.Context, g *graph.Graph, opts Options) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile: Starting.", "graph", g.Name, "generation", g.Generation())

	deps, err := g.Validate(ctx)
	if err != nil {
		return nil, err
	}
	sched, err := scheduler.Build(ctx, g, deps)
	if err != nil {
		return nil, err
	}
	alloc, err := allocator.Allocate(ctx, g, sched, opts.allocator())
	if err != nil {
		return nil, err
	}

	p := &Plan{
		graph:      g,
		generation: g.Generation(),
		opts:       opts,
		schedule:   sched,
		alloc:      alloc,
		steps:      make([]*step, 0, sched.Len()),
		levels:     make([][]*step, len(sched.Levels)),
	}
	for _, idx := range sched.Order {
		node := g.NodeAt(idx)
		inputs, outputs, internals := alloc.Bindings(node, idx)
		st := &step{
			index:     idx,
			name:      node.Name,
			pass:      node.Instance.Pass,
			level:     sched.Level[idx],
			inputs:    inputs,
			outputs:   outputs,
			internals: internals,
		}
		p.steps = append(p.steps, st)
		p.levels[st.level] = append(p.levels[st.level], st)
	}

	for _, st := range p.steps {
		c, ok := st.pass.(pass.Compiler)
		if !ok {
			continue
		}
		data := pass.CompileData{
			FrameWidth:  opts.FrameWidth,
			FrameHeight: opts.FrameHeight,
			Outputs:     st.outputs,
			Internals:   st.internals,
		}
		if err := c.Compile(ctx, data); err != nil {
			return nil, errdefs.ForPass(errdefs.ErrInvalidConfig, st.name).WithMsg("compile hook failed").WithCause(err)
		}
	}

	logger.Debug("Compile: Plan ready.",
		"graph", g.Name,
		"passes", len(p.steps),
		"levels", len(p.levels),
		"slots", alloc.Stats.Slots,
		"internals", alloc.Stats.Internals,
		"bytes", alloc.Stats.Bytes,
		"aliased", alloc.Stats.Aliased,
	)
	return p, nil
}

// Generation returns the graph generation the plan was compiled from.
func (p *Plan) Generation() uint64 { return p.generation }

// Stale reports whether the graph changed since the plan was compiled.
func (p *Plan) Stale() bool { return p.graph.Generation() != p.generation }

// Passes returns the pass names in execution order.
func (p *Plan) Passes() []string {
	names := make([]string, len(p.steps))
	for i, st := range p.steps {
		names[i] = st.name
	}
	return names
}

// Levels returns the pass names grouped by dependency level.
func (p *Plan) Levels() [][]string {
	out := make([][]string, len(p.levels))
	for i, lvl := range p.levels {
		for _, st := range lvl {
			out[i] = append(out[i], st.name)
		}
	}
	return out
}

// Stats returns the allocation summary.
func (p *Plan) Stats() allocator.Stats { return p.alloc.Stats }

// Binding returns the buffer bound to a "pass.port" reference.
func (p *Plan) Binding(ref string) (*resource.Buffer, error) {
	h, err := p.graph.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return p.alloc.Binding(h), nil
}

// Frames returns the number of frames attempted with this plan.
func (p *Plan) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Execute runs one frame. A failing pass aborts the rest of the frame and
// is reported as ErrPassExecutionFailed; the plan stays usable and the
// previous output snapshot is kept. The context is checked once before the
// first pass; a frame that has started is never cut short by cancellation.
// A panicking pass fails the frame like an error does.
func (p *Plan) Execute(ctx context.Context) (*Outputs, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Stale() {
		return nil, errdefs.New(errdefs.ErrStalePlan, "graph %q is at generation %d, plan was compiled at %d",
			p.graph.Name, p.graph.Generation(), p.generation)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame := p.frame
	p.frame++
	ctx, logger := ctxlog.With(ctx, "frame", frame)
	logger.Debug("Frame started.", "graph", p.graph.Name, "passes", len(p.steps), "parallel", p.opts.Parallel)
	start := time.Now()

	var err error
	if p.opts.Parallel {
		err = p.runLevels(ctx, frame)
	} else {
		err = p.runSequential(ctx, frame)
	}
	if err != nil {
		logger.Debug("Frame aborted.", "error", err, "duration", time.Since(start))
		return nil, err
	}

	p.outputs = p.snapshot(frame)
	logger.Debug("Frame finished.", "duration", time.Since(start), "outputs", p.outputs.Len())
	return p.outputs, nil
}

// Outputs returns the snapshot of the last successful frame.
func (p *Plan) Outputs() (*Outputs, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.outputs == nil {
		return nil, errdefs.New(errdefs.ErrNoExecutionYet, "graph %q has not completed a frame", p.graph.Name)
	}
	return p.outputs, nil
}

func (p *Plan) snapshot(frame uint64) *Outputs {
	marks := p.graph.Outputs()
	out := &Outputs{Frame: frame, list: make([]Output, 0, len(marks)), byName: make(map[string]int, len(marks))}
	for _, h := range marks {
		name := p.graph.RefOf(h).String()
		out.byName[name] = len(out.list)
		out.list = append(out.list, Output{Name: name, Buffer: p.alloc.Binding(h).Clone()})
	}
	return out
}

func (s *step) run(ctx context.Context, p *Plan, frame uint64) (err error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing pass.", "pass", s.name, "level", s.level)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Pass panicked.", "pass", s.name, "panic", r)
			err = errdefs.PassFailed(s.name, fmt.Errorf("panic: %v", r))
		}
	}()

	data := pass.NewRenderData(frame, p.opts.FrameWidth, p.opts.FrameHeight, s.inputs, s.outputs, s.internals)
	if err := s.pass.Execute(ctx, data); err != nil {
		logger.Debug("Pass failed.", "pass", s.name, "error", err)
		return errdefs.PassFailed(s.name, err)
	}
	return nil
}

func (p *Plan) String() string {
	return fmt.Sprintf("plan(%s@%d, %d passes)", p.graph.Name, p.generation, len(p.steps))
}
