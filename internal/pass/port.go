package pass

import (
	"fmt"

	"github.com/vk/framegraph/internal/resource"
)

// Direction tells whether a port is read or written by its pass.
type Direction int

const (
	Input Direction = iota
	Output
	// Internal ports are private scratch storage. They are never connected
	// or marked, and keep their contents from one frame to the next.
	Internal
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Port describes one named slot of a pass.
type Port struct {
	Name        string
	Direction   Direction
	Format      resource.Format
	Optional    bool
	Description string

	// Width and Height fix an output's size. Zero means the frame size.
	Width  int
	Height int
}

// Required reports whether an input port must be connected.
func (p Port) Required() bool {
	return p.Direction == Input && !p.Optional
}

// Reflection is the ordered set of ports a pass declares.
type Reflection struct {
	Ports []Port
}

// PortBuilder tweaks a port that was just declared. It addresses the port
// by index, so it stays valid while more ports are added.
type PortBuilder struct {
	r *Reflection
	i int
}

func (r *Reflection) add(name, description string, dir Direction) PortBuilder {
	r.Ports = append(r.Ports, Port{Name: name, Direction: dir, Description: description, Format: resource.FormatAny})
	return PortBuilder{r: r, i: len(r.Ports) - 1}
}

// AddInput declares an input port.
func (r *Reflection) AddInput(name, description string) PortBuilder {
	return r.add(name, description, Input)
}

// AddOutput declares an output port.
func (r *Reflection) AddOutput(name, description string) PortBuilder {
	return r.add(name, description, Output)
}

// AddInternal declares a private port that persists across frames.
func (r *Reflection) AddInternal(name, description string) PortBuilder {
	return r.add(name, description, Internal)
}

// WithFormat sets the port's format.
func (b PortBuilder) WithFormat(f resource.Format) PortBuilder {
	b.r.Ports[b.i].Format = f
	return b
}

// WithOptional marks an input as optional.
func (b PortBuilder) WithOptional() PortBuilder {
	b.r.Ports[b.i].Optional = true
	return b
}

// WithSize fixes the port's dimensions.
func (b PortBuilder) WithSize(width, height int) PortBuilder {
	b.r.Ports[b.i].Width, b.r.Ports[b.i].Height = width, height
	return b
}

// Port returns a copy of the port as declared so far.
func (b PortBuilder) Port() Port {
	return b.r.Ports[b.i]
}

// Find returns the port with the given name.
func (r Reflection) Find(name string) (Port, bool) {
	for _, p := range r.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Validate rejects empty and duplicate port names, unknown formats and
// negative sizes.
func (r Reflection) Validate() error {
	seen := make(map[string]struct{}, len(r.Ports))
	for _, p := range r.Ports {
		if p.Name == "" {
			return fmt.Errorf("port name cannot be empty")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("port %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		if !p.Format.Known() {
			return fmt.Errorf("port %q has unknown format %q", p.Name, string(p.Format))
		}
		if p.Width < 0 || p.Height < 0 {
			return fmt.Errorf("port %q has negative size %dx%d", p.Name, p.Width, p.Height)
		}
		if p.Direction == Internal && p.Optional {
			return fmt.Errorf("internal port %q cannot be optional", p.Name)
		}
	}
	return nil
}

// Channel is one row of a ChannelList, the tabular way passes usually
// declare many similar ports.
type Channel struct {
	Name        string
	Description string
	Optional    bool
	Format      resource.Format
}

// ChannelList is a table of channel declarations.
type ChannelList []Channel

// AddInputs declares every channel in the list as an input.
func (r *Reflection) AddInputs(channels ChannelList) {
	for _, c := range channels {
		p := r.AddInput(c.Name, c.Description).WithFormat(c.Format)
		if c.Optional {
			p.WithOptional()
		}
	}
}

// AddOutputs declares every channel in the list as an output.
func (r *Reflection) AddOutputs(channels ChannelList) {
	for _, c := range channels {
		r.AddOutput(c.Name, c.Description).WithFormat(c.Format)
	}
}
