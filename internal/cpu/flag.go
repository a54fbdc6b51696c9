package cpu

import "github.com/thelolagemann/sm83core/pkg/utils"

type Flag = uint8

const (
	FlagZero      Flag = 7
	FlagSubtract  Flag = 6
	FlagHalfCarry Flag = 5
	FlagCarry     Flag = 4
)

// flagMask covers the bits of F that hold flags, the lower
// nibble always reads as zero.
const flagMask = 0xF0

// clearFlag clears a flag from the F register.
func (c *CPU) clearFlag(flag Flag) {
	c.F = utils.ClearBit(c.F, flag) & flagMask
}

// setFlag sets a flag in the F register.
func (c *CPU) setFlag(flag Flag) {
	c.F = utils.SetBit(c.F, flag) & flagMask
}

// isFlagSet returns true if the given flag is set.
func (c *CPU) isFlagSet(flag Flag) bool {
	return utils.TestBit(c.F, flag)
}

// isFlagsSet returns true if all the given flags are set.
func (c *CPU) isFlagsSet(flags ...Flag) bool {
	for _, flag := range flags {
		if !c.isFlagSet(flag) {
			return false
		}
	}
	return true
}

// isFlagsNotSet returns true if none of the given flags are set.
func (c *CPU) isFlagsNotSet(flags ...Flag) bool {
	for _, flag := range flags {
		if c.isFlagSet(flag) {
			return false
		}
	}
	return true
}

// setFlags writes all four flags at once.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	var f uint8
	if zero {
		f = utils.SetBit(f, FlagZero)
	}
	if subtract {
		f = utils.SetBit(f, FlagSubtract)
	}
	if halfCarry {
		f = utils.SetBit(f, FlagHalfCarry)
	}
	if carry {
		f = utils.SetBit(f, FlagCarry)
	}
	c.F = f & flagMask
}

// Flag returns true if the given flag is set.
func (c *CPU) Flag(flag Flag) bool {
	return c.isFlagSet(flag)
}
