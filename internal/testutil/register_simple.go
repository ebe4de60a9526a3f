package testutil

import (
	"context"

	"github.com/vk/framegraph/internal/pass"
	"github.com/vk/framegraph/internal/registry"
)

// SimpleModule is a test helper for easily creating a module that
// registers a single pass type whose instances are FuncPasses.
type SimpleModule struct {
	Type     string
	Ports    []pass.Port
	Fn       ExecFunc
	Schema   registry.Schema
	Recorder *Recorder
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	r.Register(pass.Info{Type: m.Type}, m.Schema, func(ctx context.Context, cfg registry.Config) (pass.Pass, error) {
		return &FuncPass{Name: m.Type, Ports: m.Ports, Fn: m.Fn, Recorder: m.Recorder}, nil
	})
}
