package cpu

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/sm83core/pkg/utils"
)

// Instruction is a single entry of an instruction table. Implementations
// are stateless, everything they need arrives through the CPU and the
// bytes that were fetched for them.
type Instruction interface {
	// Immediate returns the number of bytes that follow the opcode.
	Immediate() uint8
	// Execute runs the instruction. ops holds every byte fetched for it,
	// opcode included.
	Execute(c *CPU, ops Operands)
	// Disassemble renders ops as a mnemonic. It never touches the bus.
	Disassemble(ops Operands) string
}

// Operands are the bytes of a single decoded instruction.
type Operands struct {
	// Opcode is the opcode used to select the instruction. For CB
	// prefixed instructions this is the second byte.
	Opcode uint8
	// Bytes holds the raw instruction bytes, starting with the first
	// opcode byte.
	Bytes []uint8
}

// Length returns the number of bytes the instruction occupies.
func (o Operands) Length() uint8 {
	return uint8(len(o.Bytes))
}

// Value returns the operand slot of the instruction. This is zero for
// single byte instructions, the second byte for two byte instructions
// and the little-endian word formed by the second and third byte for
// three byte instructions.
func (o Operands) Value() uint16 {
	switch len(o.Bytes) {
	case 2:
		return uint16(o.Bytes[1])
	case 3:
		return o.d16()
	}
	return 0
}

func (o Operands) d8() uint8 {
	if len(o.Bytes) < 2 {
		return 0
	}
	return o.Bytes[1]
}

func (o Operands) d16() uint16 {
	if len(o.Bytes) < 3 {
		return 0
	}
	return utils.BytesToUint16(o.Bytes[2], o.Bytes[1])
}

// String formats the raw bytes, e.g. "3E AA".
func (o Operands) String() string {
	parts := make([]string, len(o.Bytes))
	for i, b := range o.Bytes {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func hex8(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}

func hex16(v uint16) string {
	return fmt.Sprintf("0x%04X", v)
}

// invalid occupies every table slot without a defined instruction.
type invalid struct{}

func (invalid) Immediate() uint8 { return 0 }

func (invalid) Execute(c *CPU, ops Operands) {
	c.Log.Errorf("invalid opcode %s at %s", ops, hex16(c.instructionPC))
}

func (invalid) Disassemble(ops Operands) string {
	parts := make([]string, len(ops.Bytes))
	for i, b := range ops.Bytes {
		parts[i] = hex8(b)
	}
	return "DB " + strings.Join(parts, ", ") + " (INVALID)"
}

// IsInvalid reports whether i is the placeholder used for undefined
// opcodes.
func IsInvalid(i Instruction) bool {
	_, ok := i.(invalid)
	return ok
}

// prefixCB redispatches through the CB table. The second opcode byte
// is fetched as its immediate.
type prefixCB struct {
	table *[256]Instruction
}

func (prefixCB) Immediate() uint8 { return 1 }

func (p prefixCB) Execute(c *CPU, ops Operands) {
	instruction := p.table[ops.d8()]
	if IsInvalid(instruction) {
		// an undefined sub-opcode costs the same as any invalid opcode
		c.currentTick = cyclesPerAccess
	}
	instruction.Execute(c, Operands{Opcode: ops.d8(), Bytes: ops.Bytes})
}

func (p prefixCB) Disassemble(ops Operands) string {
	if len(ops.Bytes) < 2 {
		return "PREFIX CB"
	}
	return p.table[ops.d8()].Disassemble(Operands{Opcode: ops.d8(), Bytes: ops.Bytes})
}
