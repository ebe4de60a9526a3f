// Package resource holds the backing storage the allocator hands out to pass
// ports: a Slot is a block of float32 storage, a Buffer is a typed 2D view over
// a Slot. Several Buffers may view the same Slot when the allocator aliases
// ports whose lifetimes do not overlap.
package resource

import (
	"fmt"
	"strings"
)

// Format is the declared format class of a port.
type Format string

const (
	// FormatAny accepts (on inputs) or defers to the default (on outputs)
	// any format.
	FormatAny         Format = "Any"
	FormatR32Float    Format = "R32Float"
	FormatRG32Float   Format = "RG32Float"
	FormatRGB32Float  Format = "RGB32Float"
	FormatRGBA32Float Format = "RGBA32Float"
)

// DefaultFormat is used for output ports declared with FormatAny.
const DefaultFormat = FormatRGBA32Float

var channelCounts = map[Format]int{
	FormatR32Float:    1,
	FormatRG32Float:   2,
	FormatRGB32Float:  3,
	FormatRGBA32Float: 4,
}

// Channels returns the number of float32 components per texel, or 0 for
// FormatAny and unknown formats.
func (f Format) Channels() int {
	return channelCounts[f]
}

// IsAny reports whether f is the wildcard format. The empty string counts
// as the wildcard so zero-valued port descriptors accept anything.
func (f Format) IsAny() bool {
	return f == FormatAny || f == ""
}

// Resolve returns f, or DefaultFormat when f is the wildcard.
func (f Format) Resolve() Format {
	if f.IsAny() {
		return DefaultFormat
	}
	return f
}

// Compatible reports whether a producer of format f can feed a consumer of
// format other: the formats are equal or either side is the wildcard.
func (f Format) Compatible(other Format) bool {
	return f.IsAny() || other.IsAny() || f == other
}

// Known reports whether f is the wildcard or one of the declared formats.
func (f Format) Known() bool {
	return f.IsAny() || channelCounts[f] > 0
}

func (f Format) String() string {
	if f == "" {
		return string(FormatAny)
	}
	return string(f)
}

// ParseFormat converts a case-insensitive format name into a Format.
func ParseFormat(name string) (Format, error) {
	if strings.EqualFold(name, string(FormatAny)) {
		return FormatAny, nil
	}
	for f := range channelCounts {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown resource format %q", name)
}
