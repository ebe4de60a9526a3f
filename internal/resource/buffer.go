package resource

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Slot is a block of backing storage. The allocator owns slots; passes only
// ever see them through a Buffer.
type Slot struct {
	ID   int
	data []float32
}

// NewSlot allocates a zeroed slot holding n float32 values.
func NewSlot(id, n int) *Slot {
	return &Slot{ID: id, data: make([]float32, n)}
}

// Len returns the number of float32 values the slot holds.
func (s *Slot) Len() int { return len(s.data) }

// Bytes returns the slot's size in bytes.
func (s *Slot) Bytes() int { return len(s.data) * 4 }

// Buffer is a 2D view of a Slot with a concrete format.
type Buffer struct {
	Format Format
	Width  int
	Height int
	slot   *Slot
}

// NewBuffer returns a view over slot. The slot must hold at least
// width*height*channels values.
func NewBuffer(format Format, width, height int, slot *Slot) *Buffer {
	return &Buffer{Format: format, Width: width, Height: height, slot: slot}
}

// Alloc returns a buffer backed by a fresh slot of its own.
func Alloc(format Format, width, height int) *Buffer {
	format = format.Resolve()
	return NewBuffer(format, width, height, NewSlot(-1, Elements(format, width, height)))
}

// Empty is the binding given to unconnected optional inputs: a zero-sized
// buffer of the declared format with no backing storage.
func Empty(format Format) *Buffer {
	return &Buffer{Format: format}
}

// Elements returns the number of float32 values a buffer of the given shape
// needs.
func Elements(format Format, width, height int) int {
	return width * height * format.Resolve().Channels()
}

// IsEmpty reports whether b has no storage.
func (b *Buffer) IsEmpty() bool {
	return b == nil || b.slot == nil || b.Len() == 0
}

// Slot returns the backing slot.
func (b *Buffer) Slot() *Slot {
	if b == nil {
		return nil
	}
	return b.slot
}

// Len returns the number of float32 values in the view.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return Elements(b.Format, b.Width, b.Height)
}

// Data returns the view's values. Writes through the returned slice land in
// the backing slot.
func (b *Buffer) Data() []float32 {
	if b.IsEmpty() {
		return nil
	}
	return b.slot.data[:b.Len()]
}

// Texel returns the components of the texel at (x, y).
func (b *Buffer) Texel(x, y int) []float32 {
	c := b.Format.Resolve().Channels()
	i := (y*b.Width + x) * c
	return b.Data()[i : i+c]
}

// Fill sets every texel to value, repeating or truncating value to the
// channel count.
func (b *Buffer) Fill(value []float32) {
	c := b.Format.Resolve().Channels()
	data := b.Data()
	for i := range data {
		if len(value) == 0 {
			data[i] = 0
			continue
		}
		ch := i % c
		if ch < len(value) {
			data[i] = value[ch]
		} else {
			data[i] = 0
		}
	}
}

// Clone returns a detached copy of b with its own storage.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	if b.IsEmpty() {
		return Empty(b.Format)
	}
	out := Alloc(b.Format, b.Width, b.Height)
	copy(out.Data(), b.Data())
	return out
}

// Equal reports whether a and b have the same shape and bit-identical data.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return b.IsEmpty() && other.IsEmpty()
	}
	if b.Format != other.Format || b.Width != other.Width || b.Height != other.Height {
		return false
	}
	x, y := b.Data(), other.Data()
	for i := range x {
		if math.Float32bits(x[i]) != math.Float32bits(y[i]) {
			return false
		}
	}
	return true
}

// Checksum returns an FNV-1a hash of the buffer's bits, used to summarize
// frame results without shipping pixel data.
func (b *Buffer) Checksum() uint64 {
	h := fnv.New64a()
	var word [4]byte
	for _, v := range b.Data() {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(v))
		h.Write(word[:])
	}
	return h.Sum64()
}
