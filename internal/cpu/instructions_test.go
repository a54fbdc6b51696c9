package cpu

import (
	"bytes"
	"fmt"
	"testing"
)

// testInstruction runs fn against a CPU with program loaded at 0x0000
// and HL, BC and DE pointing into work RAM.
func testInstruction(t *testing.T, name string, program []uint8, fn func(t *testing.T, c *CPU)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		c := newTestCPU(program...)
		c.HL.SetUint16(0xC000)
		c.BC.SetUint16(0xC001)
		c.DE.SetUint16(0xC002)
		fn(t, c)
	})
}

func TestInstruction_Tables(t *testing.T) {
	c := newTestCPU()

	implemented := 0
	for i := 0; i < 256; i++ {
		if c.Instruction(uint8(i)) == nil {
			t.Fatalf("main table slot 0x%02X is nil", i)
		}
		if c.InstructionCB(uint8(i)) == nil {
			t.Fatalf("CB table slot 0x%02X is nil", i)
		}
		if !IsInvalid(c.InstructionCB(uint8(i))) {
			t.Errorf("expected CB 0x%02X to be invalid", i)
		}
		if !IsInvalid(c.Instruction(uint8(i))) {
			implemented++
		}
	}

	// 4 LD rr, 7 INC, 7 DEC, 7 LD r,d8, 63 LD r,r' and LD (HL),r, 16 ADD/SUB,
	// 6 accumulator loads, INC (HL), LD (HL),d8, NOP, HALT, XOR A, JP, CB
	if implemented != 117 {
		t.Errorf("expected 117 implemented opcodes, got %d", implemented)
	}

	for i := 0; i < 256; i++ {
		if ld, ok := c.Instruction(uint8(i)).(loadRegisterRegister); ok && ld.dst == indexHL {
			t.Errorf("opcode 0x%02X is LD r, r' with a (HL) destination", i)
		}
	}
	if _, ok := c.Instruction(0x76).(halt); !ok {
		t.Errorf("expected 0x76 to be HALT")
	}
}

// timings are in machine cycles, every machine cycle is 4 T-cycles.
var timings = []uint8{
	1, 3, 2, 1, 1, 1, 2, 1, 1, 1, 2, 1, 1, 1, 2, 1,
	1, 3, 2, 1, 1, 1, 2, 1, 1, 1, 2, 1, 1, 1, 2, 1,
	1, 3, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 3, 1, 1, 3, 1, 3, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1,
	2, 2, 2, 2, 2, 2, 1, 2, 1, 1, 1, 1, 1, 1, 2, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 4, 1, 1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 4, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 4, 1, 1, 1, 1, 1,
}

func TestInstruction_Timing(t *testing.T) {
	for i, timing := range timings {
		opcode := uint8(i)
		testInstruction(t, fmt.Sprintf("0x%02X", opcode), []uint8{opcode, 0x80, 0xFF}, func(t *testing.T, c *CPU) {
			if cycles := c.Step(); cycles != timing*4 {
				t.Errorf("expected %d cycles, got %d", timing*4, cycles)
			}
		})
	}

	for i := 0; i < 256; i++ {
		testInstruction(t, fmt.Sprintf("CB 0x%02X", i), []uint8{0xCB, uint8(i)}, func(t *testing.T, c *CPU) {
			// every CB entry is undefined
			if cycles := c.Step(); cycles != 4 {
				t.Errorf("expected 4 cycles, got %d", cycles)
			}
		})
	}
}

// TestInstruction_RoundTrip checks that the disassembler and the CPU agree
// on the bytes of every opcode.
func TestInstruction_RoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		opcode := uint8(i)
		testInstruction(t, fmt.Sprintf("0x%02X", opcode), []uint8{opcode, 0x42, 0xC0}, func(t *testing.T, c *CPU) {
			text, length, raw := c.DisassembleAt(0x0000)
			if c.PC != 0x0000 || c.TotalCycles() != 0 {
				t.Fatalf("DisassembleAt changed the CPU state")
			}

			c.Step()
			tr := c.Trace()

			if tr.Length != length || !bytes.Equal(tr.Bytes, raw) {
				t.Errorf("expected %X (%d), executed %X (%d)", raw, length, tr.Bytes, tr.Length)
			}
			if tr.Disassembly != text {
				t.Errorf("expected %q, executed %q", text, tr.Disassembly)
			}
			if opcode != 0xC3 && c.PC != uint16(length) {
				t.Errorf("expected PC to advance by %d, got 0x%04X", length, c.PC)
			}
			if c.F&0x0F != 0 {
				t.Errorf("expected lower nibble of F to be clear, got 0x%02X", c.F)
			}
		})
	}
}

func TestInstruction_Disassemble(t *testing.T) {
	mnemonics := []struct {
		program  []uint8
		expected string
	}{
		{[]uint8{0x00}, "NOP"},
		{[]uint8{0x01, 0x34, 0x12}, "LD BC, 0x1234"},
		{[]uint8{0x31, 0xFE, 0xFF}, "LD SP, 0xFFFE"},
		{[]uint8{0x04}, "INC B"},
		{[]uint8{0x3D}, "DEC A"},
		{[]uint8{0x06, 0xBB}, "LD B, 0xBB"},
		{[]uint8{0x80}, "ADD A, B"},
		{[]uint8{0x86}, "ADD A, (HL)"},
		{[]uint8{0x90}, "SUB A, B"},
		{[]uint8{0x96}, "SUB A, (HL)"},
		{[]uint8{0xAF}, "XOR A"},
		{[]uint8{0xC3, 0x34, 0x12}, "JP 0x1234"},
		{[]uint8{0x76}, "HALT"},
		{[]uint8{0x70}, "LD (HL), B"},
		{[]uint8{0x34}, "INC (HL)"},
		{[]uint8{0x36, 0xCC}, "LD (HL), 0xCC"},
		{[]uint8{0x41}, "LD B, C"},
		{[]uint8{0x46}, "LD B, (HL)"},
		{[]uint8{0x0A}, "LD A, (BC)"},
		{[]uint8{0x12}, "LD (DE), A"},
		{[]uint8{0xFA, 0x90, 0xFF}, "LD A, (0xFF90)"},
		{[]uint8{0xEA, 0x95, 0xFF}, "LD (0xFF95), A"},
		{[]uint8{0xD3}, "DB 0xD3 (INVALID)"},
		{[]uint8{0xCB, 0x37}, "DB 0xCB, 0x37 (INVALID)"},
	}
	for _, m := range mnemonics {
		testInstruction(t, m.expected, m.program, func(t *testing.T, c *CPU) {
			if text, _, _ := c.DisassembleAt(0x0000); text != m.expected {
				t.Errorf("expected %q, got %q", m.expected, text)
			}
		})
	}
}

func TestInstruction_Arithmetic(t *testing.T) {
	type flags struct{ z, n, h, c bool }
	cases := []struct {
		name     string
		opcode   uint8
		a, b     uint8
		carry    bool
		expected uint8 // A or B depending on the opcode
		flags    flags
	}{
		{"INC B no wrap", 0x04, 0x00, 0x10, false, 0x11, flags{}},
		{"INC B half carry", 0x04, 0x00, 0x0F, false, 0x10, flags{h: true}},
		{"INC B wrap", 0x04, 0x00, 0xFF, false, 0x00, flags{z: true, h: true}},
		{"INC B keeps carry", 0x04, 0x00, 0xFF, true, 0x00, flags{z: true, h: true, c: true}},
		{"DEC B", 0x05, 0x00, 0x11, false, 0x10, flags{n: true}},
		{"DEC B half borrow", 0x05, 0x00, 0x10, false, 0x0F, flags{n: true, h: true}},
		{"DEC B zero", 0x05, 0x00, 0x01, true, 0x00, flags{z: true, n: true, c: true}},
		{"DEC B wrap", 0x05, 0x00, 0x00, false, 0xFF, flags{n: true, h: true}},
		{"ADD A, B", 0x80, 0x12, 0x03, false, 0x15, flags{}},
		{"ADD A, B half carry", 0x80, 0x0F, 0x01, false, 0x10, flags{h: true}},
		{"ADD A, B carry", 0x80, 0xF0, 0x11, false, 0x01, flags{c: true}},
		{"ADD A, B zero", 0x80, 0xFF, 0x01, false, 0x00, flags{z: true, h: true, c: true}},
		{"SUB A, B", 0x90, 0x15, 0x03, false, 0x12, flags{n: true}},
		{"SUB A, B half borrow", 0x90, 0x10, 0x01, false, 0x0F, flags{n: true, h: true}},
		{"SUB A, B borrow", 0x90, 0x10, 0x20, false, 0xF0, flags{n: true, c: true}},
		{"SUB A, B zero", 0x90, 0x42, 0x42, true, 0x00, flags{z: true, n: true}},
		{"XOR A", 0xAF, 0x55, 0x00, true, 0x00, flags{z: true}},
	}
	for _, tc := range cases {
		testInstruction(t, tc.name, []uint8{tc.opcode}, func(t *testing.T, c *CPU) {
			c.A, c.B = tc.a, tc.b
			c.setFlags(false, false, false, tc.carry)
			c.Step()

			got := c.A
			if tc.opcode == 0x04 || tc.opcode == 0x05 {
				got = c.B
			}
			if got != tc.expected {
				t.Errorf("expected 0x%02X, got 0x%02X", tc.expected, got)
			}
			actual := flags{c.Flag(FlagZero), c.Flag(FlagSubtract), c.Flag(FlagHalfCarry), c.Flag(FlagCarry)}
			if actual != tc.flags {
				t.Errorf("expected flags %+v, got %+v", tc.flags, actual)
			}
		})
	}
}

func TestInstruction_Memory(t *testing.T) {
	testInstruction(t, "LD (HL), d8", []uint8{0x36, 0xCC}, func(t *testing.T, c *CPU) {
		c.Step()
		if v := c.bus.Read(0xC000); v != 0xCC {
			t.Errorf("expected 0xCC at 0xC000, got 0x%02X", v)
		}
	})
	testInstruction(t, "INC (HL)", []uint8{0x34, 0x34}, func(t *testing.T, c *CPU) {
		c.bus.Write(0xC000, 0xFE)
		c.Step()
		if v := c.bus.Read(0xC000); v != 0xFF || c.Flag(FlagZero) {
			t.Errorf("expected 0xFF without zero, got 0x%02X", v)
		}
		c.Step()
		if v := c.bus.Read(0xC000); v != 0x00 || !c.isFlagsSet(FlagZero, FlagHalfCarry) {
			t.Errorf("expected 0x00 with zero and half carry, got 0x%02X %08b", v, c.F)
		}
	})
	testInstruction(t, "LD (HL), r", []uint8{0x70, 0x77}, func(t *testing.T, c *CPU) {
		c.B, c.A = 0xAA, 0xBB
		c.Step()
		if v := c.bus.Read(0xC000); v != 0xAA {
			t.Errorf("expected 0xAA at 0xC000, got 0x%02X", v)
		}
		c.Step()
		if v := c.bus.Read(0xC000); v != 0xBB {
			t.Errorf("expected 0xBB at 0xC000, got 0x%02X", v)
		}
	})
	testInstruction(t, "LD r, (HL)", []uint8{0x46, 0x7E}, func(t *testing.T, c *CPU) {
		c.bus.Write(0xC000, 0xAB)
		c.Step()
		c.Step()
		if c.B != 0xAB || c.A != 0xAB {
			t.Errorf("expected B and A to be 0xAB, got 0x%02X 0x%02X", c.B, c.A)
		}
	})
	testInstruction(t, "LD A, (BC/DE)", []uint8{0x0A, 0x1A}, func(t *testing.T, c *CPU) {
		c.bus.Write(0xC001, 0xCC)
		c.bus.Write(0xC002, 0xDD)
		c.Step()
		if c.A != 0xCC {
			t.Errorf("expected A to be 0xCC, got 0x%02X", c.A)
		}
		c.Step()
		if c.A != 0xDD {
			t.Errorf("expected A to be 0xDD, got 0x%02X", c.A)
		}
	})
	testInstruction(t, "LD (BC/DE), A", []uint8{0x02, 0x12}, func(t *testing.T, c *CPU) {
		c.A = 0xEE
		c.Step()
		c.Step()
		if c.bus.Read(0xC001) != 0xEE || c.bus.Read(0xC002) != 0xEE {
			t.Errorf("expected 0xEE at 0xC001 and 0xC002")
		}
	})
	testInstruction(t, "LD (a16), A / LD A, (a16)", []uint8{0xEA, 0x95, 0xFF, 0xAF, 0xFA, 0x95, 0xFF}, func(t *testing.T, c *CPU) {
		c.A = 0xCD
		c.Step()
		if v := c.bus.Read(0xFF95); v != 0xCD {
			t.Errorf("expected 0xCD at 0xFF95, got 0x%02X", v)
		}
		c.Step()
		c.Step()
		if c.A != 0xCD {
			t.Errorf("expected A to be 0xCD, got 0x%02X", c.A)
		}
	})
	testInstruction(t, "ADD A, (HL)", []uint8{0x86}, func(t *testing.T, c *CPU) {
		c.A = 0x0F
		c.bus.Write(0xC000, 0x01)
		c.Step()
		if c.A != 0x10 || !c.Flag(FlagHalfCarry) {
			t.Errorf("expected 0x10 with half carry, got 0x%02X %08b", c.A, c.F)
		}
	})
}

func TestInstruction_LoadRegisterPair(t *testing.T) {
	testInstruction(t, "LD rr, d16", []uint8{0x01, 0x34, 0x12, 0x11, 0x78, 0x56, 0x21, 0xBC, 0x9A, 0x31, 0xFE, 0xFF}, func(t *testing.T, c *CPU) {
		for i := 0; i < 4; i++ {
			c.Step()
		}
		if c.BC.Uint16() != 0x1234 || c.DE.Uint16() != 0x5678 || c.HL.Uint16() != 0x9ABC || c.SP != 0xFFFE {
			t.Errorf("unexpected pairs BC=%04X DE=%04X HL=%04X SP=%04X", c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.SP)
		}
	})
}

func TestInstruction_Invalid(t *testing.T) {
	testInstruction(t, "main", []uint8{0xD3}, func(t *testing.T, c *CPU) {
		af, bc, de, hl, sp := c.AF.Uint16(), c.BC.Uint16(), c.DE.Uint16(), c.HL.Uint16(), c.SP
		c.Step()
		if c.AF.Uint16() != af || c.BC.Uint16() != bc || c.DE.Uint16() != de || c.HL.Uint16() != hl || c.SP != sp {
			t.Errorf("expected registers to be unchanged")
		}
		if c.PC != 0x0001 {
			t.Errorf("expected PC 0x0001, got 0x%04X", c.PC)
		}
	})
	testInstruction(t, "CB", []uint8{0xCB, 0x37}, func(t *testing.T, c *CPU) {
		if cycles := c.Step(); cycles != 4 {
			t.Errorf("expected 4 cycles, got %d", cycles)
		}
		if c.TotalCycles() != 4 {
			t.Errorf("expected 4 total cycles, got %d", c.TotalCycles())
		}
		tr := c.Trace()
		if tr.Cycles != 4 || tr.Disassembly != "DB 0xCB, 0x37 (INVALID)" {
			t.Errorf("unexpected CB trace %+v", tr)
		}
		if tr.Length != 2 || tr.Operand != 0x37 || tr.Opcode != 0xCB {
			t.Errorf("unexpected CB trace %+v", tr)
		}
		if c.PC != 0x0002 {
			t.Errorf("expected PC 0x0002, got 0x%04X", c.PC)
		}
	})
}

func TestInstruction_LoadRegisterRegisterGuard(t *testing.T) {
	testInstruction(t, "LD (HL), B", nil, func(t *testing.T, c *CPU) {
		c.B = 0x42
		loadRegisterRegister{dst: indexHL, src: indexB}.Execute(c, Operands{Opcode: 0x70, Bytes: []uint8{0x70}})
		if v := c.bus.Read(0xC000); v != 0x00 {
			t.Errorf("expected nothing to be written, got 0x%02X", v)
		}
		if c.CurrentCycles() != 0 {
			t.Errorf("expected no bus accesses, got %d cycles", c.CurrentCycles())
		}
	})
}
