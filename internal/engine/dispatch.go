package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runSequential runs every step in plan order. Once started, a frame runs
// to completion or to its first failing pass.
func (p *Plan) runSequential(ctx context.Context, frame uint64) error {
	for _, st := range p.steps {
		if err := st.run(ctx, p, frame); err != nil {
			return err
		}
	}
	return nil
}

// runLevels dispatches each level's passes concurrently. A failure stops
// the frame once the level's in-flight passes have returned.
func (p *Plan) runLevels(ctx context.Context, frame uint64) error {
	for _, level := range p.levels {
		if len(level) == 1 {
			if err := level[0].run(ctx, p, frame); err != nil {
				return err
			}
			continue
		}

		var g errgroup.Group
		g.SetLimit(p.opts.workers())
		for _, st := range level {
			g.Go(func() error {
				return st.run(ctx, p, frame)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
