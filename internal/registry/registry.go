package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/framegraph/internal/pass"
)

// Module is the interface that every pass module implements to register its
// pass types.
type Module interface {
	Register(r *Registry)
}

// ModuleFunc adapts a plain function to the Module interface.
type ModuleFunc func(r *Registry)

// Register implements Module.
func (f ModuleFunc) Register(r *Registry) { f(r) }

// Registration is everything the registry knows about one pass type.
type Registration struct {
	Info    pass.Info
	Schema  Schema
	Factory Factory
	Library string
}

// Registry holds the registered pass types and the catalog of libraries
// that can be loaded into it.
type Registry struct {
	types   map[string]*Registration
	catalog map[string]Library
	loaded  map[string]struct{}

	// loading names the library whose modules are currently registering.
	loading string
}

// New creates a registry whose catalog holds the given libraries. None of
// them is loaded yet.
func New(libs ...Library) *Registry {
	r := &Registry{
		types:   make(map[string]*Registration),
		catalog: make(map[string]Library),
		loaded:  make(map[string]struct{}),
	}
	for _, lib := range libs {
		r.AddLibrary(lib)
	}
	return r
}

// Register associates a type name with a factory. Registering the same type
// twice is a programmer error and panics.
func (r *Registry) Register(info pass.Info, schema Schema, factory Factory) {
	if info.Type == "" {
		panic("pass type name cannot be empty")
	}
	if factory == nil {
		panic(fmt.Sprintf("pass type '%s' registered without a factory", info.Type))
	}
	if _, exists := r.types[info.Type]; exists {
		panic(fmt.Sprintf("pass type '%s' already registered", info.Type))
	}
	slog.Debug("Registering pass type.", "type", info.Type, "library", r.loading)
	r.types[info.Type] = &Registration{
		Info:    info,
		Schema:  schema,
		Factory: factory,
		Library: r.loading,
	}
}

// RegisterModules registers pass types from modules outside any library.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the registration for a type.
func (r *Registry) Lookup(typeName string) (*Registration, bool) {
	reg, ok := r.types[typeName]
	return reg, ok
}

// Types returns the registered type names in lexical order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
