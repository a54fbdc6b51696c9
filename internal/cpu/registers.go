package cpu

import "github.com/thelolagemann/sm83core/pkg/utils"

// Register represents a GB Register which is used to hold an 8-bit value.
// The CPU has 8 registers: A, B, C, D, E, H, L, and F. The F register is
// special in that it is used to hold the flags.
type Register = uint8

// RegisterPair represents a pair of GB Registers which is used to hold a 16-bit
// value. The CPU has 4 register pairs: AF, BC, DE, and HL.
type RegisterPair struct {
	High *Register
	Low  *Register

	// lowMask is applied to every write of the low register, AF uses
	// it to keep the unused lower nibble of F clear.
	lowMask uint8
}

func newRegisterPair(high, low *Register, lowMask uint8) *RegisterPair {
	return &RegisterPair{High: high, Low: low, lowMask: lowMask}
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Uint16() uint16 {
	return utils.BytesToUint16(*r.High, *r.Low)
}

// SetUint16 sets the value of the RegisterPair to the given value.
func (r *RegisterPair) SetUint16(value uint16) {
	high, low := utils.Uint16ToBytes(value)
	*r.High = high
	*r.Low = low & r.lowMask
}

// Registers represents the GB CPU registers.
type Registers struct {
	A Register
	B Register
	C Register
	D Register
	E Register
	F Register
	H Register
	L Register

	BC *RegisterPair
	DE *RegisterPair
	HL *RegisterPair
	AF *RegisterPair
}

// register indices as encoded in the opcode bits
const (
	indexB uint8 = iota
	indexC
	indexD
	indexE
	indexH
	indexL
	indexHL // (HL), memory at HL
	indexA
)

// register pair indices as encoded in the opcode bits
const (
	pairBC uint8 = iota
	pairDE
	pairHL
	pairSP
)

var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var pairNames = [4]string{"BC", "DE", "HL", "SP"}

// registerName returns the name of the register at index.
func registerName(index uint8) string {
	if int(index) < len(registerNames) {
		return registerNames[index]
	}
	return "??R"
}

// pairName returns the name of the register pair at index.
func pairName(index uint8) string {
	if int(index) < len(pairNames) {
		return pairNames[index]
	}
	return "??RP"
}

// registerIndex returns a Register pointer for the given index, or nil
// for the (HL) slot, which isn't a register.
func (c *CPU) registerIndex(index uint8) *Register {
	switch index {
	case indexB:
		return &c.B
	case indexC:
		return &c.C
	case indexD:
		return &c.D
	case indexE:
		return &c.E
	case indexH:
		return &c.H
	case indexL:
		return &c.L
	case indexA:
		return &c.A
	}
	return nil
}

// readRegister returns the value selected by index, reading the memory
// at HL for the (HL) slot.
func (c *CPU) readRegister(index uint8) uint8 {
	if index == indexHL {
		return c.readByte(c.HL.Uint16())
	}
	if reg := c.registerIndex(index); reg != nil {
		return *reg
	}
	c.Log.Warnf("invalid register index: %d", index)
	return 0xFF
}

// writeRegister writes value to the register selected by index, writing
// the memory at HL for the (HL) slot.
func (c *CPU) writeRegister(index uint8, value uint8) {
	if index == indexHL {
		c.writeByte(c.HL.Uint16(), value)
		return
	}
	if reg := c.registerIndex(index); reg != nil {
		*reg = value
		return
	}
	c.Log.Warnf("invalid register index: %d", index)
}

// registerPair returns the value of the register pair at index.
func (c *CPU) registerPair(index uint8) uint16 {
	switch index {
	case pairBC:
		return c.BC.Uint16()
	case pairDE:
		return c.DE.Uint16()
	case pairHL:
		return c.HL.Uint16()
	case pairSP:
		return c.SP
	}
	c.Log.Warnf("invalid register pair index: %d", index)
	return 0
}

// setRegisterPair sets the register pair at index to value.
func (c *CPU) setRegisterPair(index uint8, value uint16) {
	switch index {
	case pairBC:
		c.BC.SetUint16(value)
	case pairDE:
		c.DE.SetUint16(value)
	case pairHL:
		c.HL.SetUint16(value)
	case pairSP:
		c.SP = value
	default:
		c.Log.Warnf("invalid register pair index: %d", index)
	}
}
