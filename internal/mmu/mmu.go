// Package mmu provides a memory management unit for the Game Boy. The
// MMU is unaware of the CPU, and routes every address of the 16-bit
// address space to exactly one region handler.
package mmu

import (
	"github.com/thelolagemann/sm83core/internal/cartridge"
	"github.com/thelolagemann/sm83core/internal/ram"
	"github.com/thelolagemann/sm83core/pkg/log"
)

const (
	// fill is the value returned by reads of unmapped or stubbed regions.
	fill = 0xFF

	wRAMSize = 0x2000 // 8kB
	zRAMSize = 0x7F   // 127B
)

// IOBus is the interface that the MMU exposes to the CPU.
type IOBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// region handles the reads and writes of a range of addresses.
type region struct {
	name  string
	Read  func(address uint16) uint8
	Write func(address uint16, value uint8)
}

// MMU is the memory management unit for the Game Boy. It handles all
// memory reads and writes to the Game Boy's 64kB of memory.
type MMU struct {
	// 64kB address space
	raw [65536]*region

	// 0x0000 - 0x7FFF - ROM (32kB)
	Cart *cartridge.Cartridge

	// 0xC000 - 0xDFFF - Work RAM (8kB)
	// 0xE000 - 0xFDFF - Echo RAM (7.5kB)
	wRAM ram.RAM

	// 0xFF80 - 0xFFFE - Zero Page RAM (127B)
	zRAM ram.RAM

	// (0xFFFF) - interrupt enable register
	ie uint8

	Log log.Logger
}

// NewMMU returns a new MMU with the given cartridge connected. cart may
// be nil, in which case the ROM region reads as 0xFF.
func NewMMU(cart *cartridge.Cartridge, logger log.Logger) *MMU {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	m := &MMU{
		Cart: cart,
		wRAM: ram.NewRAM(wRAMSize),
		zRAM: ram.NewRAM(zRAMSize),
		Log:  logger,
	}
	m.init()

	return m
}

func (m *MMU) init() {
	unmapped := func(name string) *region {
		return &region{
			name:  name,
			Read:  func(uint16) uint8 { return fill },
			Write: func(uint16, uint8) {},
		}
	}

	cart := &region{name: "ROM", Read: m.readCart, Write: m.writeCart}
	vRAM := unmapped("VRAM")
	eRAM := unmapped("external RAM")
	wRAM := &region{name: "WRAM", Read: readOffset(m.wRAM.Read, 0xC000), Write: writeOffset(m.wRAM.Write, 0xC000)}
	echo := &region{name: "echo RAM", Read: readOffset(m.wRAM.Read, 0xE000), Write: writeOffset(m.wRAM.Write, 0xE000)}
	oam := unmapped("OAM")
	prohibited := unmapped("prohibited")
	io := unmapped("I/O")
	zRAM := &region{name: "HRAM", Read: readOffset(m.zRAM.Read, 0xFF80), Write: writeOffset(m.zRAM.Write, 0xFF80)}
	ie := &region{
		name:  "IE",
		Read:  func(uint16) uint8 { return m.ie },
		Write: func(_ uint16, v uint8) { m.ie = v },
	}

	m.mapRegion(0x0000, 0x7FFF, cart)
	m.mapRegion(0x8000, 0x9FFF, vRAM)
	m.mapRegion(0xA000, 0xBFFF, eRAM)
	m.mapRegion(0xC000, 0xDFFF, wRAM)
	m.mapRegion(0xE000, 0xFDFF, echo)
	m.mapRegion(0xFE00, 0xFE9F, oam)
	m.mapRegion(0xFEA0, 0xFEFF, prohibited)
	m.mapRegion(0xFF00, 0xFF7F, io)
	m.mapRegion(0xFF80, 0xFFFE, zRAM)
	m.mapRegion(0xFFFF, 0xFFFF, ie)
}

// mapRegion assigns r to every address in [start, end].
func (m *MMU) mapRegion(start, end int, r *region) {
	for i := start; i <= end; i++ {
		m.raw[i] = r
	}
}

func readOffset(read func(uint16) uint8, offset uint16) func(uint16) uint8 {
	return func(addr uint16) uint8 {
		return read(addr - offset)
	}
}

func writeOffset(write func(uint16, uint8), offset uint16) func(uint16, uint8) {
	return func(addr uint16, v uint8) {
		write(addr-offset, v)
	}
}

func (m *MMU) readCart(address uint16) uint8 {
	if m.Cart == nil {
		return fill
	}
	return m.Cart.Read(address)
}

func (m *MMU) writeCart(address uint16, value uint8) {
	if m.Cart == nil {
		return
	}
	m.Cart.Write(address, value)
}

// ConnectCartridge replaces the connected cartridge. Passing nil
// detaches the current one.
func (m *MMU) ConnectCartridge(cart *cartridge.Cartridge) {
	m.Cart = cart
}

// Cartridge returns the connected cartridge, or nil.
func (m *MMU) Cartridge() *cartridge.Cartridge {
	return m.Cart
}

// Reset zero-fills the work and zero page RAM. The cartridge and the
// interrupt enable register are left untouched.
func (m *MMU) Reset() {
	m.wRAM.Reset()
	m.zRAM.Reset()
}

// Region returns the name of the region mapped at address.
func (m *MMU) Region(address uint16) string {
	if r := m.raw[address]; r != nil {
		return r.name
	}
	return "unmapped"
}

// Read returns the value at the given address. It handles the
// mirroring and the stubbed regions.
func (m *MMU) Read(address uint16) uint8 {
	r := m.raw[address]
	if r == nil {
		m.Log.Warnf("unhandled bus read at address 0x%04X", address)
		return fill
	}
	return r.Read(address)
}

// Write writes the value to the given address. Writes to read-only or
// stubbed regions are dropped.
func (m *MMU) Write(address uint16, value uint8) {
	r := m.raw[address]
	if r == nil {
		m.Log.Warnf("unhandled bus write at address 0x%04X value: 0x%02X", address, value)
		return
	}
	r.Write(address, value)
}
