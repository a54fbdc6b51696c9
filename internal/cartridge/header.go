package cartridge

import (
	"fmt"
	"strings"
)

const (
	headerStart = 0x0100
	headerEnd   = 0x0150
)

type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

var (
	ramMAP = map[uint8]uint{
		0x00: 0,
		0x02: 8 * 1024,
		0x03: 32 * 1024,
		0x04: 128 * 1024,
		0x05: 64 * 1024,
	}
)

type Type uint8

const (
	ROM        Type = 0x00
	MBC1       Type = 0x01
	MBC1RAM    Type = 0x02
	MBC2       Type = 0x05
	ROMRAM     Type = 0x08
	MBC3       Type = 0x11
	MBC5       Type = 0x19
	HUDSONHUC1 Type = 0xFF
)

func (t Type) String() string {
	switch t {
	case ROM:
		return "ROM ONLY"
	case MBC1, MBC1RAM:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case ROMRAM:
		return "ROM+RAM"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	case HUDSONHUC1:
		return "HuC1"
	}
	return fmt.Sprintf("unknown (0x%02X)", uint8(t))
}

// Header represents the header of a cartridge, located at the address
// space 0x0100-0x014F. Only ROM ONLY cartridges are emulated, the rest
// of the header is informational.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title string

	// 0x0143 - CGB compatibility flag
	CartridgeGBMode Flag

	CartridgeType  Type
	ROMSize        uint
	RAMSize        uint
	HeaderChecksum uint8
	GlobalChecksum uint16

	// computed over 0x0134-0x014C
	computedChecksum uint8
}

// parseHeader parses the 0x50 header bytes starting at 0x0100.
func parseHeader(header []byte) Header {
	h := Header{}

	// parse the mode of the cartridge and parse the header accordingly
	switch header[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	// parse the title
	if h.CartridgeGBMode == FlagOnlyDMG {
		h.Title = string(header[0x34:0x44])
	} else {
		h.Title = string(header[0x34:0x43])
	}
	h.Title = strings.TrimRight(h.Title, "\x00")

	h.CartridgeType = Type(header[0x47])

	// parse the ROM size (calculated by 32kB x (1 << n))
	if header[0x48] <= 8 {
		h.ROMSize = (32 * 1024) * (1 << header[0x48])
	}
	h.RAMSize = ramMAP[header[0x49]]

	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	var sum uint8
	for _, b := range header[0x34:0x4D] {
		sum = sum - b - 1
	}
	h.computedChecksum = sum

	return h
}

// Valid reports whether the stored header checksum matches the header.
func (h *Header) Valid() bool {
	return h.HeaderChecksum == h.computedChecksum
}

func (h *Header) Hardware() string {
	switch h.CartridgeGBMode {
	case FlagOnlyDMG:
		return "DMG"
	case FlagSupportsCGB, FlagOnlyCGB:
		return "CGB"
	default:
		return "Unknown"
	}
}

func (h *Header) String() string {
	return fmt.Sprintf("%s Mode: %s | Type: %s | ROM Size: %dkB | RAM Size: %dkB", h.Title, h.Hardware(), h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}
