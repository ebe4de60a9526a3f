// Package core provides the CorePasses library: small deterministic passes
// over float32 buffers used to assemble and exercise graphs.
package core

import (
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/modules/print"
)

// LibraryName is the catalog name of this library.
const LibraryName = "CorePasses"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every core pass type.
func (m *Module) Register(r *registry.Registry) {
	r.Register(clearInfo, clearSchema, newClear)
	r.Register(copyInfo, copySchema, newCopy)
	r.Register(blendInfo, blendSchema, newBlend)
	r.Register(scaleInfo, scaleSchema, newScale)
}

// Library returns the CorePasses catalog entry.
func Library() registry.Library {
	return registry.Library{
		Name:        LibraryName,
		Description: "Clear, Copy, Blend, Scale and Print passes.",
		Modules:     []registry.Module{&Module{}, &print.Module{}},
	}
}
