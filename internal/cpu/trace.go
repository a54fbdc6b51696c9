package cpu

import "fmt"

// resetMnemonic marks a trace that was taken before anything ran.
const resetMnemonic = "RESET"

// Trace describes the last executed instruction.
type Trace struct {
	// PC is the address the instruction was fetched from.
	PC uint16
	// Opcode is the first opcode byte.
	Opcode uint8
	// Operand is 0, the d8 or the d16 depending on Length.
	Operand uint16
	// Length is the number of bytes, between 1 and 3.
	Length      uint8
	Bytes       []uint8
	Disassembly string
	Cycles      uint8
}

func resetTrace(pc uint16) Trace {
	return Trace{PC: pc, Disassembly: resetMnemonic}
}

// IsReset returns true if nothing was executed since the last reset.
func (t Trace) IsReset() bool {
	return t.Disassembly == resetMnemonic && t.Length == 0
}

func (t Trace) String() string {
	if t.IsReset() {
		return resetMnemonic
	}
	return fmt.Sprintf("%04X: %-8s %-20s (%d cycles)", t.PC, Operands{Bytes: t.Bytes}, t.Disassembly, t.Cycles)
}
