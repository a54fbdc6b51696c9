package cpu

// newInstructionSets builds the main and CB tables. Every slot is filled,
// the ones without a defined instruction hold invalid.
func newInstructionSets() (*[256]Instruction, *[256]Instruction) {
	var set, setCB [256]Instruction
	for i := range set {
		set[i] = invalid{}
		setCB[i] = invalid{}
	}

	set[0x00] = nop{}
	set[0x76] = halt{}
	set[0xAF] = xorA{}
	set[0xC3] = jumpAbsolute{}
	set[0xCB] = prefixCB{table: &setCB}

	// 0x01, 0x11, 0x21, 0x31 - LD nn, d16
	for pair := pairBC; pair <= pairSP; pair++ {
		set[0x01|pair<<4] = loadPairImmediate{pair: pair}
	}

	// 0x04 - 0x3C INC n, 0x05 - 0x3D DEC n, 0x06 - 0x3E LD n, d8
	for reg := indexB; reg <= indexA; reg++ {
		if reg == indexHL {
			continue
		}
		set[0x04|reg<<3] = incrementRegister{reg: reg}
		set[0x05|reg<<3] = decrementRegister{reg: reg}
		set[0x06|reg<<3] = loadRegisterImmediate{reg: reg}
	}
	set[0x34] = incrementHL{}
	set[0x36] = storeHLImmediate{}

	// 0x40 - 0x7F - LD n, m (0x70 - 0x77 store to (HL), 0x76 is HALT)
	for dst := indexB; dst <= indexA; dst++ {
		for src := indexB; src <= indexA; src++ {
			opcode := 0x40 | dst<<3 | src
			switch {
			case dst == indexHL && src == indexHL:
				// HALT
			case dst == indexHL:
				set[opcode] = storeHLRegister{src: src}
			default:
				set[opcode] = loadRegisterRegister{dst: dst, src: src}
			}
		}
	}

	// 0x80 - 0x87 ADD A, n, 0x90 - 0x97 SUB A, n
	for src := indexB; src <= indexA; src++ {
		set[0x80|src] = addRegister{src: src}
		set[0x90|src] = subtractRegister{src: src}
	}

	set[0x02] = storeAIndirect{pair: pairBC}
	set[0x12] = storeAIndirect{pair: pairDE}
	set[0x0A] = loadAIndirect{pair: pairBC}
	set[0x1A] = loadAIndirect{pair: pairDE}
	set[0xEA] = storeAAbsolute{}
	set[0xFA] = loadAAbsolute{}

	return &set, &setCB
}

// decode fetches a whole instruction through next, which returns the
// byte at the next address on every call. The opcode selects the
// instruction and its Immediate decides how many more bytes are taken.
// Both execution and disassembly go through here, so the bytes the
// disassembler shows are always the bytes the CPU would run.
func decode(set *[256]Instruction, next func() uint8) (Instruction, Operands) {
	opcode := next()
	instruction := set[opcode]

	ops := Operands{Opcode: opcode, Bytes: make([]uint8, 1, 3)}
	ops.Bytes[0] = opcode
	for i := uint8(0); i < instruction.Immediate(); i++ {
		ops.Bytes = append(ops.Bytes, next())
	}
	return instruction, ops
}
