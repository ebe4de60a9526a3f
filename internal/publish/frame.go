package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vk/framegraph/internal/engine"
)

// OutputSummary describes one marked output of a frame.
type OutputSummary struct {
	Name     string `json:"name"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Checksum string `json:"checksum"`
}

// Frame is the payload published after each successful frame.
type Frame struct {
	Graph      string          `json:"graph"`
	Index      uint64          `json:"frame"`
	DurationMS float64         `json:"duration_ms"`
	Outputs    []OutputSummary `json:"outputs"`
}

// Summarize builds the payload for a frame's outputs.
func Summarize(graphName string, outputs *engine.Outputs, took time.Duration) Frame {
	f := Frame{
		Graph:      graphName,
		Index:      outputs.Frame,
		DurationMS: float64(took.Microseconds()) / 1000,
		Outputs:    make([]OutputSummary, 0, outputs.Len()),
	}
	for _, o := range outputs.All() {
		f.Outputs = append(f.Outputs, OutputSummary{
			Name:     o.Name,
			Format:   o.Buffer.Format.String(),
			Width:    o.Buffer.Width,
			Height:   o.Buffer.Height,
			Checksum: fmt.Sprintf("%016x", o.Buffer.Checksum()),
		})
	}
	return f
}

// Publisher delivers frame summaries.
type Publisher interface {
	Publish(ctx context.Context, f Frame) error
	Close() error
}

// Nop discards every frame.
type Nop struct{}

func (Nop) Publish(context.Context, Frame) error { return nil }
func (Nop) Close() error                         { return nil }

// Memory keeps published frames in memory. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

// Publish records f.
func (m *Memory) Publish(_ context.Context, f Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("publisher closed")
	}
	m.frames = append(m.frames, f)
	return nil
}

// Close stops accepting frames.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Frames returns a copy of the recorded frames.
func (m *Memory) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.frames...)
}
