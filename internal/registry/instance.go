package registry

import (
	"context"
	"errors"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/pass"
)

// Factory builds a pass from a configuration that already passed the type's
// Schema. Returning an error rejects the configuration.
type Factory func(ctx context.Context, cfg Config) (pass.Pass, error)

// Instance is a constructed pass together with its type, configuration and
// declared ports. It exclusively owns its execution handle.
type Instance struct {
	Info   pass.Info
	Config Config
	Pass   pass.Pass

	reflection pass.Reflection
}

// Ports returns the ports the pass declared when it was created, in
// declaration order.
func (i *Instance) Ports() []pass.Port {
	out := make([]pass.Port, len(i.reflection.Ports))
	copy(out, i.reflection.Ports)
	return out
}

// Port returns the named port.
func (i *Instance) Port(name string) (pass.Port, bool) {
	return i.reflection.Find(name)
}

// NewInstance wraps a pass built outside a registry, reflecting its ports
// once.
func NewInstance(info pass.Info, cfg Config, p pass.Pass) (*Instance, error) {
	reflection := p.Reflect()
	if err := reflection.Validate(); err != nil {
		return nil, &errdefs.Error{Kind: errdefs.ErrInvalidConfig, Msg: "pass type " + info.Type, Cause: err}
	}
	return &Instance{Info: info, Config: cfg, Pass: p, reflection: reflection}, nil
}

// Create builds a pass instance of the given type. It fails with
// UnknownPassType for unregistered types and InvalidConfig when the schema
// or the factory rejects cfg.
func (r *Registry) Create(ctx context.Context, typeName string, cfg Config) (*Instance, error) {
	logger := ctxlog.FromContext(ctx)

	reg, ok := r.types[typeName]
	if !ok {
		return nil, errdefs.New(errdefs.ErrUnknownPassType, "%q is not registered; load the library that provides it", typeName)
	}

	normalized, err := reg.Schema.Apply(cfg)
	if err != nil {
		return nil, &errdefs.Error{Kind: errdefs.ErrInvalidConfig, Msg: "pass type " + typeName, Cause: err}
	}

	p, err := reg.Factory(ctx, normalized)
	if err != nil {
		if errors.Is(err, errdefs.ErrInvalidConfig) {
			return nil, err
		}
		return nil, &errdefs.Error{Kind: errdefs.ErrInvalidConfig, Msg: "pass type " + typeName, Cause: err}
	}

	inst, err := NewInstance(reg.Info, normalized, p)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pass instance created.", "type", typeName, "ports", len(inst.reflection.Ports))
	return inst, nil
}
