// Package ram provides a basic RAM implementation.
package ram

// RAM represents a fixed size block of RAM. Addresses are offsets
// into the block, and wrap around its size.
type RAM interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Reset()
	Size() int
}

type ram struct {
	data []uint8
}

// NewRAM returns a new zeroed RAM of the given size.
func NewRAM(size uint32) RAM {
	return &ram{
		data: make([]uint8, size),
	}
}

// Read returns the value at the given address.
func (r *ram) Read(address uint16) uint8 {
	return r.data[int(address)%len(r.data)]
}

// Write writes the value to the given address.
func (r *ram) Write(address uint16, value uint8) {
	r.data[int(address)%len(r.data)] = value
}

// Reset zero-fills the RAM.
func (r *ram) Reset() {
	for i := range r.data {
		r.data[i] = 0
	}
}

// Size returns the size of the RAM in bytes.
func (r *ram) Size() int {
	return len(r.data)
}
