// Package cartridge provides the ROM image mapped into the low half of
// the address space. The cartridge is a flat, read-only byte store with
// no bank switching and no external RAM.
package cartridge

import (
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/thelolagemann/sm83core/pkg/log"
	"github.com/thelolagemann/sm83core/pkg/utils"
)

// fill is returned for any read outside the ROM image.
const fill = 0xFF

// Cartridge represents a basic game cartridge.
type Cartridge struct {
	rom []byte

	Log log.Logger
}

// NewCartridge returns an empty cartridge.
func NewCartridge(logger log.Logger) *Cartridge {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	return &Cartridge{
		rom: []byte{},
		Log: logger,
	}
}

// LoadFromPath replaces the ROM image with the contents of the file at
// path, decompressing it if needed. On failure the previous image is
// left untouched.
func (c *Cartridge) LoadFromPath(path string) error {
	data, err := utils.LoadFile(path)
	if err != nil {
		c.Log.Errorf("could not load ROM %s: %v", path, err)
		return fmt.Errorf("loading ROM: %w", err)
	}

	c.rom = data
	c.Log.Infof("loaded ROM %s (%d bytes, xxh64 %016x)", path, len(data), c.Checksum())
	return nil
}

// LoadFromBytes replaces the ROM image with a copy of data. An empty
// image is accepted; Empty reports it.
func (c *Cartridge) LoadFromBytes(data []byte) {
	c.rom = append(make([]byte, 0, len(data)), data...)

	if len(c.rom) == 0 {
		c.Log.Warnf("loaded empty data into cartridge")
		return
	}
	c.Log.Infof("loaded %d bytes of data into cartridge", len(c.rom))
}

// Read returns the value at the given address.
func (c *Cartridge) Read(address uint16) uint8 {
	if int(address) < len(c.rom) {
		return c.rom[address]
	}
	return fill
}

// Write ignores the write, the ROM is read-only and there is no bank
// controller to receive it.
func (c *Cartridge) Write(address uint16, value uint8) {
	c.Log.Debugf("ignoring cartridge write 0x%02X to 0x%04X", value, address)
}

// Empty returns true if the cartridge holds no data.
func (c *Cartridge) Empty() bool {
	return len(c.rom) == 0
}

// Size returns the size of the ROM image in bytes.
func (c *Cartridge) Size() int {
	return len(c.rom)
}

// Bytes returns a copy of the ROM image.
func (c *Cartridge) Bytes() []byte {
	return append([]byte(nil), c.rom...)
}

// Checksum returns the xxhash64 digest of the ROM image.
func (c *Cartridge) Checksum() uint64 {
	return xxhash.Sum64(c.rom)
}

// Header parses the cartridge header. ok is false when the image is
// too small to contain one.
func (c *Cartridge) Header() (h Header, ok bool) {
	if len(c.rom) < headerEnd {
		return Header{}, false
	}
	return parseHeader(c.rom[headerStart:headerEnd]), true
}
