package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/framegraph/internal/config"
	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/engine"
	"github.com/vk/framegraph/internal/graph"
	"github.com/vk/framegraph/internal/hcl_adapter"
	"github.com/vk/framegraph/internal/publish"
)

// Run loads the graph description, compiles it and renders the configured
// number of frames.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer a.closeHealthcheckServer()
	}

	model, err := a.loader.Load(ctx, a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to load graph description: %w", err)
	}

	g, err := config.Apply(ctx, model, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build render graph: %w", err)
	}
	a.logger.Info("Pass types registered:", "count", len(a.registry.Types()), "types", a.registry.Types())

	if a.config.ExportPath != "" {
		if err := a.export(g, model.Libraries); err != nil {
			return err
		}
	}

	eng := engine.New(g, engine.Options{
		FrameWidth:      a.config.Width,
		FrameHeight:     a.config.Height,
		Parallel:        a.config.Parallel,
		Workers:         a.config.Workers,
		DisableAliasing: a.config.NoAlias,
	})
	a.engine.Store(eng)
	plan, err := eng.Compile(ctx)
	if err != nil {
		return fmt.Errorf("failed to compile render graph: %w", err)
	}
	stats := plan.Stats()
	a.logger.Info("🧩 Render graph compiled.",
		"graph", g.Name, "passes", len(plan.Passes()), "levels", len(plan.Levels()),
		"slots", stats.Slots, "internals", stats.Internals, "aliased", stats.Aliased, "bytes", stats.Bytes)

	if a.config.Frames == 0 {
		a.logger.Warn("Frame count is zero, rendering not required.")
		return nil
	}

	publisher, err := a.openPublisher(ctx)
	if err != nil {
		return err
	}
	defer publisher.Close()

	a.logger.Info("🚀 Rendering frames...", "frames", a.config.Frames, "parallel", a.config.Parallel)
	var last *engine.Outputs
	for i := 0; i < a.config.Frames; i++ {
		start := time.Now()
		outputs, err := eng.Execute(ctx)
		if err != nil {
			return fmt.Errorf("frame %d failed: %w", i+1, err)
		}
		took := time.Since(start)
		a.frames.Add(1)
		a.logger.Debug("Frame rendered.", "frame", outputs.Frame, "duration", took)

		if err := publisher.Publish(ctx, publish.Summarize(g.Name, outputs, took)); err != nil {
			a.logger.Warn("Failed to publish frame.", "frame", outputs.Frame, "error", err)
		}
		last = outputs
	}

	for _, o := range last.All() {
		a.logger.Info("Output ready.", "output", o.Name, "format", o.Buffer.Format, "checksum", fmt.Sprintf("%016x", o.Buffer.Checksum()))
	}
	a.logger.Info("🏁 Rendering finished.", "frames", a.Frames())

	a.logger.Debug("App.Run method finished.")
	return nil
}

// export writes the built graph back out as HCL.
func (a *App) export(g *graph.Graph, libraries []string) error {
	src := hcl_adapter.Export(config.FromGraph(g, libraries))
	if a.config.ExportPath == "-" {
		_, err := a.outW.Write(src)
		return err
	}
	if err := os.WriteFile(a.config.ExportPath, src, 0o644); err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}
	a.logger.Info("Graph exported.", "path", a.config.ExportPath)
	return nil
}

// openPublisher returns the publisher frames are sent to.
func (a *App) openPublisher(ctx context.Context) (publish.Publisher, error) {
	if a.publisher != nil {
		return a.publisher, nil
	}
	if a.config.PublishURL == "" {
		return publish.Nop{}, nil
	}
	p, err := publish.Dial(ctx, publish.Options{
		URL:       a.config.PublishURL,
		Namespace: a.config.PublishNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect frame publisher: %w", err)
	}
	return p, nil
}
