package cpu

// increment n by 1 and set the flags accordingly.
//
//	INC n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(n uint8) uint8 {
	incremented := n + 0x01
	c.setFlags(incremented == 0, false, n&0xF == 0xF, c.isFlagSet(FlagCarry))
	return incremented
}

// decrement n by 1 and set the flags accordingly.
//
//	DEC n
//	n = B, C, D, E, H, L, A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(n uint8) uint8 {
	decremented := n - 0x01
	c.setFlags(decremented == 0, true, n&0xF == 0x0, c.isFlagSet(FlagCarry))
	return decremented
}

// add is a helper function for adding two bytes together and
// setting the flags accordingly.
//
//	ADD A, n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	c.setFlags(uint8(sum) == 0, false, (a&0xF)+(b&0xF) > 0xF, sum > 0xFF)
	return uint8(sum)
}

// subtract is a helper function for subtracting b from a and
// setting the flags accordingly.
//
//	SUB A, n
//	n = B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) subtract(a, b uint8) uint8 {
	result := a - b
	c.setFlags(result == 0, true, a&0xF < b&0xF, a < b)
	return result
}

// logic sets the flags for the result of a bitwise operation. The
// half carry flag is fixed per operation (set for AND, reset for
// XOR and OR).
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - halfCarry.
//	C - Reset.
func (c *CPU) logic(result uint8, halfCarry bool) uint8 {
	c.setFlags(result == 0, false, halfCarry, false)
	return result
}

// xor performs a bitwise XOR operation on n and the A Register.
//
//	XOR n
//	n = A
func (c *CPU) xor(n uint8) {
	c.A = c.logic(c.A^n, false)
}
