package engine

import (
	"runtime"

	"github.com/vk/framegraph/internal/allocator"
)

// Options controls compilation and dispatch.
type Options struct {
	FrameWidth  int
	FrameHeight int

	// Parallel runs the passes of one dependency level concurrently.
	Parallel bool
	// Workers bounds concurrent passes in parallel mode. Zero means one per
	// CPU.
	Workers int
	// DisableAliasing gives every output port its own storage.
	DisableAliasing bool
}

// DefaultOptions returns sequential dispatch at 1280x720.
func DefaultOptions() Options {
	return Options{FrameWidth: 1280, FrameHeight: 720}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) allocator() allocator.Options {
	return allocator.Options{
		FrameWidth:      o.FrameWidth,
		FrameHeight:     o.FrameHeight,
		Parallel:        o.Parallel,
		DisableAliasing: o.DisableAliasing,
	}
}
