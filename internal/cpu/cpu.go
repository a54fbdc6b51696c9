// Package cpu implements the SM83 core used by the Game Boy. It fetches,
// decodes and executes instructions through a pair of 256 entry tables,
// and disassembles from the same decode so the two never disagree.
package cpu

import (
	"github.com/thelolagemann/sm83core/internal/mmu"
	"github.com/thelolagemann/sm83core/pkg/log"
)

// cyclesPerAccess is the number of T-cycles a single bus access takes.
const cyclesPerAccess = 4

// power on register values
const (
	initialAF uint16 = 0x01B0
	initialBC uint16 = 0x0013
	initialDE uint16 = 0x00D8
	initialHL uint16 = 0x014D
	initialSP uint16 = 0xFFFE
	initialPC uint16 = 0x0100
)

// CPU represents the Gameboy CPU. It is responsible for executing instructions.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers

	bus mmu.IOBus

	instructions   *[256]Instruction
	instructionsCB *[256]Instruction

	// instructionPC is the address of the instruction being executed
	instructionPC uint16
	currentTick   uint8
	totalCycles   uint64

	trace Trace

	Log log.Logger
}

// NewCPU creates a new CPU connected to bus. bus may be nil, in which
// case the CPU refuses to step until one is connected.
func NewCPU(bus mmu.IOBus, logger log.Logger) *CPU {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	c := &CPU{
		bus: bus,
		Log: logger,
	}
	c.Registers = Registers{}
	c.BC = newRegisterPair(&c.Registers.B, &c.Registers.C, 0xFF)
	c.DE = newRegisterPair(&c.Registers.D, &c.Registers.E, 0xFF)
	c.HL = newRegisterPair(&c.Registers.H, &c.Registers.L, 0xFF)
	c.AF = newRegisterPair(&c.Registers.A, &c.Registers.F, flagMask)
	c.instructions, c.instructionsCB = newInstructionSets()

	c.Reset()
	return c
}

// ConnectBus replaces the bus the CPU reads from and writes to.
func (c *CPU) ConnectBus(bus mmu.IOBus) {
	c.bus = bus
}

// Reset sets the registers to their post boot values and clears the
// cycle counters and the trace.
func (c *CPU) Reset() {
	c.ResetTo(initialPC)
}

// ResetTo is Reset with execution starting at pc instead of 0x0100.
func (c *CPU) ResetTo(pc uint16) {
	c.AF.SetUint16(initialAF)
	c.BC.SetUint16(initialBC)
	c.DE.SetUint16(initialDE)
	c.HL.SetUint16(initialHL)
	c.SP = initialSP
	c.PC = pc

	c.instructionPC = pc
	c.currentTick = 0
	c.totalCycles = 0
	c.trace = resetTrace(pc)
}

// Step executes a single instruction and returns the number of
// T-cycles it took.
func (c *CPU) Step() uint8 {
	if c.bus == nil {
		c.Log.Errorf("cpu: step with no bus connected at %s", hex16(c.PC))
		return 0
	}

	// reset tick counter
	c.currentTick = 0
	c.instructionPC = c.PC

	instruction, ops := decode(c.instructions, c.readOperand)
	instruction.Execute(c, ops)

	c.totalCycles += uint64(c.currentTick)
	c.trace = Trace{
		PC:          c.instructionPC,
		Opcode:      ops.Bytes[0],
		Operand:     ops.Value(),
		Length:      ops.Length(),
		Bytes:       ops.Bytes,
		Disassembly: instruction.Disassemble(ops),
		Cycles:      c.currentTick,
	}

	return c.currentTick
}

// DisassembleAt decodes the instruction at address without executing it
// and returns its mnemonic, length and raw bytes. It does not tick.
func (c *CPU) DisassembleAt(address uint16) (string, uint8, []uint8) {
	if c.bus == nil {
		c.Log.Errorf("cpu: disassemble with no bus connected at %s", hex16(address))
		return "ERR:NO_BUS", 0, nil
	}

	instruction, ops := decode(c.instructions, func() uint8 {
		value := c.bus.Read(address)
		address++
		return value
	})
	return instruction.Disassemble(ops), ops.Length(), ops.Bytes
}

// Instruction returns the main table entry for opcode.
func (c *CPU) Instruction(opcode uint8) Instruction {
	return c.instructions[opcode]
}

// InstructionCB returns the CB table entry for opcode.
func (c *CPU) InstructionCB(opcode uint8) Instruction {
	return c.instructionsCB[opcode]
}

// CurrentCycles returns the cycles taken by the last Step.
func (c *CPU) CurrentCycles() uint8 {
	return c.currentTick
}

// TotalCycles returns the cycles taken since the last Reset.
func (c *CPU) TotalCycles() uint64 {
	return c.totalCycles
}

// Trace returns a snapshot of the last executed instruction.
func (c *CPU) Trace() Trace {
	t := c.trace
	t.Bytes = append([]uint8(nil), c.trace.Bytes...)
	return t
}

// readOperand reads the byte at PC and advances it.
func (c *CPU) readOperand() uint8 {
	c.tickCycle()
	value := c.read(c.PC)
	c.PC++
	return value
}

// readByte reads a byte from memory.
func (c *CPU) readByte(addr uint16) uint8 {
	c.tickCycle()
	return c.read(addr)
}

// writeByte writes the given value to the given address.
func (c *CPU) writeByte(addr uint16, val uint8) {
	c.tickCycle()
	if c.bus == nil {
		c.Log.Errorf("cpu: write to %s with no bus connected", hex16(addr))
		return
	}
	c.bus.Write(addr, val)
}

func (c *CPU) read(addr uint16) uint8 {
	if c.bus == nil {
		c.Log.Errorf("cpu: read from %s with no bus connected", hex16(addr))
		return 0xFF
	}
	return c.bus.Read(addr)
}

// tickCycle advances the cycle counter by one machine cycle.
func (c *CPU) tickCycle() {
	c.currentTick += cyclesPerAccess
}
