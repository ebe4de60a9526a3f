package app

import (
	"github.com/vk/framegraph/internal/registry"
	"github.com/vk/framegraph/modules/accumulate"
	"github.com/vk/framegraph/modules/core"
)

// coreLibraries is the definitive list of pass libraries compiled into the
// framegraph binary. Graph descriptions load them by name.
var coreLibraries = []registry.Library{
	core.Library(),
	accumulate.Library(),
}
