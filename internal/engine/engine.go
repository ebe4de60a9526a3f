package engine

import (
	"context"
	"sync"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/graph"
	"github.com/vk/framegraph/internal/pass"
)

// State is the lifecycle state of an Engine.
type State int

const (
	Uncompiled State = iota
	Compiled
	Executing
)

func (s State) String() string {
	switch s {
	case Uncompiled:
		return "Uncompiled"
	case Compiled:
		return "Compiled"
	case Executing:
		return "Executing"
	default:
		return "Unknown"
	}
}

// Engine owns a graph's current plan and last output snapshot.
type Engine struct {
	g    *graph.Graph
	opts Options

	// frameMu serializes Execute calls; mu guards the fields below.
	frameMu sync.Mutex
	mu      sync.Mutex
	state   State
	plan    *Plan
	outputs *Outputs
}

// New creates an engine for g. Nothing is compiled until Compile.
func New(g *graph.Graph, opts Options) *Engine {
	return &Engine{g: g, opts: opts}
}

// Graph returns the engine's graph.
func (e *Engine) Graph() *graph.Graph { return e.g }

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Plan returns the current plan, or nil when uncompiled.
func (e *Engine) Plan() *Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan
}

// Compile builds a plan for the graph's current generation. Calling it
// again without graph changes returns the existing plan. It fails with
// ErrFrameInFlight while a frame runs.
func (e *Engine) Compile(ctx context.Context) (*Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Executing {
		return nil, errdefs.New(errdefs.ErrFrameInFlight, "cannot recompile graph %q during a frame", e.g.Name)
	}
	if e.plan != nil && !e.plan.Stale() {
		ctxlog.FromContext(ctx).Debug("Compile: Graph unchanged, reusing plan.", "graph", e.g.Name, "generation", e.plan.Generation())
		return e.plan, nil
	}

	plan, err := Compile(ctx, e.g, e.opts)
	if err != nil {
		e.plan = nil
		e.state = Uncompiled
		return nil, err
	}
	e.plan = plan
	e.state = Compiled
	return plan, nil
}

// Execute runs one frame with the current plan. Concurrent calls are
// serialized.
func (e *Engine) Execute(ctx context.Context) (*Outputs, error) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	e.mu.Lock()
	switch {
	case e.state == Uncompiled || e.plan == nil:
		e.mu.Unlock()
		return nil, errdefs.New(errdefs.ErrNotCompiled, "graph %q has no compiled plan", e.g.Name)
	case e.plan.Stale():
		e.plan = nil
		e.state = Uncompiled
		e.mu.Unlock()
		return nil, errdefs.New(errdefs.ErrStalePlan, "graph %q changed since the last compile", e.g.Name)
	}
	plan := e.plan
	e.state = Executing
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.state == Executing {
			e.state = Compiled
		}
	}()

	outputs, err := plan.Execute(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.outputs = outputs
	e.mu.Unlock()
	return outputs, nil
}

// Outputs returns the snapshot of the last successful frame.
func (e *Engine) Outputs() (*Outputs, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outputs == nil {
		return nil, errdefs.New(errdefs.ErrNoExecutionYet, "graph %q has not completed a frame", e.g.Name)
	}
	return e.outputs, nil
}

// Reset drops temporal history held by passes, as after a camera cut.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Executing {
		return errdefs.New(errdefs.ErrFrameInFlight, "cannot reset graph %q during a frame", e.g.Name)
	}
	n := 0
	for _, node := range e.g.Nodes() {
		if r, ok := node.Instance.Pass.(pass.Resetter); ok {
			r.Reset()
			n++
		}
	}
	ctxlog.FromContext(ctx).Debug("Engine reset.", "graph", e.g.Name, "passes_reset", n)
	return nil
}
