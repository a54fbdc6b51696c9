package cpu

import "fmt"

// nop does nothing.
//
//	NOP
type nop struct{}

func (nop) Immediate() uint8            { return 0 }
func (nop) Execute(*CPU, Operands)      {}
func (nop) Disassemble(Operands) string { return "NOP" }

// halt is a marker only, the CPU keeps stepping. Callers watch for the
// opcode to decide when a program has finished.
//
//	HALT
type halt struct{}

func (halt) Immediate() uint8            { return 0 }
func (halt) Execute(*CPU, Operands)      {}
func (halt) Disassemble(Operands) string { return "HALT" }

// loadPairImmediate loads a 16-bit immediate value into a register pair.
//
//	LD nn, d16
//	nn = BC, DE, HL, SP
type loadPairImmediate struct {
	pair uint8
}

func (loadPairImmediate) Immediate() uint8 { return 2 }

func (i loadPairImmediate) Execute(c *CPU, ops Operands) {
	c.setRegisterPair(i.pair, ops.d16())
}

func (i loadPairImmediate) Disassemble(ops Operands) string {
	return fmt.Sprintf("LD %s, %s", pairName(i.pair), hex16(ops.d16()))
}

// incrementRegister increments a register.
//
//	INC n
//	n = A, B, C, D, E, H, L
type incrementRegister struct {
	reg uint8
}

func (incrementRegister) Immediate() uint8 { return 0 }

func (i incrementRegister) Execute(c *CPU, _ Operands) {
	reg := c.registerIndex(i.reg)
	*reg = c.increment(*reg)
}

func (i incrementRegister) Disassemble(Operands) string {
	return "INC " + registerName(i.reg)
}

// decrementRegister decrements a register.
//
//	DEC n
//	n = A, B, C, D, E, H, L
type decrementRegister struct {
	reg uint8
}

func (decrementRegister) Immediate() uint8 { return 0 }

func (i decrementRegister) Execute(c *CPU, _ Operands) {
	reg := c.registerIndex(i.reg)
	*reg = c.decrement(*reg)
}

func (i decrementRegister) Disassemble(Operands) string {
	return "DEC " + registerName(i.reg)
}

// loadRegisterImmediate loads an 8-bit immediate value into a register.
//
//	LD n, d8
//	n = A, B, C, D, E, H, L
type loadRegisterImmediate struct {
	reg uint8
}

func (loadRegisterImmediate) Immediate() uint8 { return 1 }

func (i loadRegisterImmediate) Execute(c *CPU, ops Operands) {
	*c.registerIndex(i.reg) = ops.d8()
}

func (i loadRegisterImmediate) Disassemble(ops Operands) string {
	return fmt.Sprintf("LD %s, %s", registerName(i.reg), hex8(ops.d8()))
}

// addRegister adds a register, or the memory at HL, to A.
//
//	ADD A, n
//	n = A, B, C, D, E, H, L, (HL)
type addRegister struct {
	src uint8
}

func (addRegister) Immediate() uint8 { return 0 }

func (i addRegister) Execute(c *CPU, _ Operands) {
	c.A = c.add(c.A, c.readRegister(i.src))
}

func (i addRegister) Disassemble(Operands) string {
	return "ADD A, " + registerName(i.src)
}

// subtractRegister subtracts a register, or the memory at HL, from A.
//
//	SUB A, n
//	n = A, B, C, D, E, H, L, (HL)
type subtractRegister struct {
	src uint8
}

func (subtractRegister) Immediate() uint8 { return 0 }

func (i subtractRegister) Execute(c *CPU, _ Operands) {
	c.A = c.subtract(c.A, c.readRegister(i.src))
}

func (i subtractRegister) Disassemble(Operands) string {
	return "SUB A, " + registerName(i.src)
}

// xorA clears A.
//
//	XOR A
type xorA struct{}

func (xorA) Immediate() uint8 { return 0 }

func (xorA) Execute(c *CPU, _ Operands) {
	c.xor(c.A)
}

func (xorA) Disassemble(Operands) string { return "XOR A" }

// jumpAbsolute jumps to a 16-bit address.
//
//	JP nn
type jumpAbsolute struct{}

func (jumpAbsolute) Immediate() uint8 { return 2 }

func (jumpAbsolute) Execute(c *CPU, ops Operands) {
	c.PC = ops.d16()
	c.tickCycle() // internal delay
}

func (jumpAbsolute) Disassemble(ops Operands) string {
	return "JP " + hex16(ops.d16())
}

// storeHLRegister stores a register at the memory address in HL.
//
//	LD (HL), n
//	n = A, B, C, D, E, H, L
type storeHLRegister struct {
	src uint8
}

func (storeHLRegister) Immediate() uint8 { return 0 }

func (i storeHLRegister) Execute(c *CPU, _ Operands) {
	c.writeByte(c.HL.Uint16(), *c.registerIndex(i.src))
}

func (i storeHLRegister) Disassemble(Operands) string {
	return "LD (HL), " + registerName(i.src)
}

// incrementHL increments the memory at the address in HL.
//
//	INC (HL)
type incrementHL struct{}

func (incrementHL) Immediate() uint8 { return 0 }

func (incrementHL) Execute(c *CPU, _ Operands) {
	address := c.HL.Uint16()
	c.writeByte(address, c.increment(c.readByte(address)))
}

func (incrementHL) Disassemble(Operands) string { return "INC (HL)" }

// storeHLImmediate stores an 8-bit immediate value at the memory
// address in HL.
//
//	LD (HL), d8
type storeHLImmediate struct{}

func (storeHLImmediate) Immediate() uint8 { return 1 }

func (storeHLImmediate) Execute(c *CPU, ops Operands) {
	c.writeByte(c.HL.Uint16(), ops.d8())
}

func (storeHLImmediate) Disassemble(ops Operands) string {
	return "LD (HL), " + hex8(ops.d8())
}

// loadRegisterRegister copies a register, or the memory at HL, into
// another register.
//
//	LD n, m
//	n = A, B, C, D, E, H, L
//	m = A, B, C, D, E, H, L, (HL)
type loadRegisterRegister struct {
	dst, src uint8
}

func (loadRegisterRegister) Immediate() uint8 { return 0 }

func (i loadRegisterRegister) Execute(c *CPU, _ Operands) {
	// stores into (HL) have their own opcodes
	if i.dst == indexHL {
		c.Log.Warnf("LD r, r' with (HL) destination at %s", hex16(c.instructionPC))
		return
	}
	*c.registerIndex(i.dst) = c.readRegister(i.src)
}

func (i loadRegisterRegister) Disassemble(Operands) string {
	return fmt.Sprintf("LD %s, %s", registerName(i.dst), registerName(i.src))
}

// loadAIndirect loads A from the memory address in a register pair.
//
//	LD A, (nn)
//	nn = BC, DE
type loadAIndirect struct {
	pair uint8
}

func (loadAIndirect) Immediate() uint8 { return 0 }

func (i loadAIndirect) Execute(c *CPU, _ Operands) {
	c.A = c.readByte(c.registerPair(i.pair))
}

func (i loadAIndirect) Disassemble(Operands) string {
	return fmt.Sprintf("LD A, (%s)", pairName(i.pair))
}

// storeAIndirect stores A at the memory address in a register pair.
//
//	LD (nn), A
//	nn = BC, DE
type storeAIndirect struct {
	pair uint8
}

func (storeAIndirect) Immediate() uint8 { return 0 }

func (i storeAIndirect) Execute(c *CPU, _ Operands) {
	c.writeByte(c.registerPair(i.pair), c.A)
}

func (i storeAIndirect) Disassemble(Operands) string {
	return fmt.Sprintf("LD (%s), A", pairName(i.pair))
}

// loadAAbsolute loads A from a 16-bit address.
//
//	LD A, (a16)
type loadAAbsolute struct{}

func (loadAAbsolute) Immediate() uint8 { return 2 }

func (loadAAbsolute) Execute(c *CPU, ops Operands) {
	c.A = c.readByte(ops.d16())
}

func (loadAAbsolute) Disassemble(ops Operands) string {
	return fmt.Sprintf("LD A, (%s)", hex16(ops.d16()))
}

// storeAAbsolute stores A at a 16-bit address.
//
//	LD (a16), A
type storeAAbsolute struct{}

func (storeAAbsolute) Immediate() uint8 { return 2 }

func (storeAAbsolute) Execute(c *CPU, ops Operands) {
	c.writeByte(ops.d16(), c.A)
}

func (storeAAbsolute) Disassemble(ops Operands) string {
	return fmt.Sprintf("LD (%s), A", hex16(ops.d16()))
}
