package cpu

import "github.com/mkorman/dmgcore/dmg/bit"

// This file implements the flag-precise arithmetic and shift/rotate
// primitives used by the opcode dispatcher. Each function both returns
// the result byte and sets c.r.f to the exact flag state spec.md
// prescribes for that operation.

func (c *CPU) add8(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	result := byte(sum)
	c.setFlags(result == 0, false, (a^b^result)&0x10 != 0, sum > 0xFF)
	return result
}

func (c *CPU) adc8(a, b byte) byte {
	carry := byte(0)
	if c.flag(flagC) {
		carry = 1
	}
	sum := uint16(a) + uint16(b) + uint16(carry)
	result := byte(sum)
	halfCarry := (a&0xF)+(b&0xF)+carry > 0xF
	c.setFlags(result == 0, false, halfCarry, sum > 0xFF)
	return result
}

func (c *CPU) sub8(a, b byte) byte {
	result := a - b
	c.setFlags(result == 0, true, (a^b^result)&0x10 != 0, int(a) < int(b))
	return result
}

func (c *CPU) sbc8(a, b byte) byte {
	carry := byte(0)
	if c.flag(flagC) {
		carry = 1
	}
	result := a - b - carry
	halfCarry := int(a&0xF)-int(b&0xF)-int(carry) < 0
	borrow := int(a) < int(b)+int(carry)
	c.setFlags(result == 0, true, halfCarry, borrow)
	return result
}

func (c *CPU) and8(a, b byte) byte {
	result := a & b
	c.setFlags(result == 0, false, true, false)
	return result
}

func (c *CPU) or8(a, b byte) byte {
	result := a | b
	c.setFlags(result == 0, false, false, false)
	return result
}

func (c *CPU) xor8(a, b byte) byte {
	result := a ^ b
	c.setFlags(result == 0, false, false, false)
	return result
}

func (c *CPU) inc8(v byte) byte {
	result := v + 1
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, v&0x0F == 0x0F)
	return result
}

func (c *CPU) dec8(v byte) byte {
	result := v - 1
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagN, true)
	c.setFlag(flagH, v&0x0F == 0x00)
	return result
}

func (c *CPU) addHL(hl, rr uint16) uint16 {
	sum := uint32(hl) + uint32(rr)
	result := uint16(sum)
	c.setFlag(flagN, false)
	c.setFlag(flagH, (hl^rr^result)&0x1000 != 0)
	c.setFlag(flagC, sum > 0xFFFF)
	return result
}

// addSigned implements both ADD SP,s8 and LD HL,SP+s8: Z=0, N=0, H/C
// from the low-byte addition.
func (c *CPU) addSigned(base uint16, offset int8) uint16 {
	result := uint16(int32(base) + int32(offset))
	lowBase := byte(base)
	lowOffset := byte(offset)
	sum := uint16(lowBase) + uint16(lowOffset)
	c.setFlags(false, false, (lowBase^lowOffset^byte(sum))&0x10 != 0, sum > 0xFF)
	return result
}

func (c *CPU) rlc(v byte) byte {
	carryOut := v&0x80 != 0
	result := v<<1 | v>>7
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

func (c *CPU) rrc(v byte) byte {
	carryOut := v&0x01 != 0
	result := v>>1 | v<<7
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

func (c *CPU) rl(v byte) byte {
	oldCarry := byte(0)
	if c.flag(flagC) {
		oldCarry = 1
	}
	carryOut := v&0x80 != 0
	result := v<<1 | oldCarry
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

func (c *CPU) rr(v byte) byte {
	oldCarry := byte(0)
	if c.flag(flagC) {
		oldCarry = 0x80
	}
	carryOut := v&0x01 != 0
	result := v>>1 | oldCarry
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

func (c *CPU) sla(v byte) byte {
	carryOut := v&0x80 != 0
	result := v << 1
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

func (c *CPU) sra(v byte) byte {
	carryOut := v&0x01 != 0
	result := v&0x80 | v>>1
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

func (c *CPU) swap(v byte) byte {
	result := v<<4 | v>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

func (c *CPU) srl(v byte) byte {
	carryOut := v&0x01 != 0
	result := v >> 1
	c.setFlags(result == 0, false, false, carryOut)
	return result
}

// rlca/rrca/rla/rra are the accumulator-only forms: unlike their
// CB-prefixed cousins they always clear Z.
func (c *CPU) rlca(v byte) byte {
	result := c.rlc(v)
	c.setFlag(flagZ, false)
	return result
}

func (c *CPU) rrca(v byte) byte {
	result := c.rrc(v)
	c.setFlag(flagZ, false)
	return result
}

func (c *CPU) rlaAcc(v byte) byte {
	result := c.rl(v)
	c.setFlag(flagZ, false)
	return result
}

func (c *CPU) rraAcc(v byte) byte {
	result := c.rr(v)
	c.setFlag(flagZ, false)
	return result
}

func (c *CPU) bit(index uint8, v byte) {
	c.setFlag(flagZ, !bit.IsSet(index, v))
	c.setFlag(flagN, false)
	c.setFlag(flagH, true)
}

func (c *CPU) daa() {
	a := c.r.a
	adjust := byte(0)
	carry := c.flag(flagC)

	if c.flag(flagH) || (!c.flag(flagN) && a&0x0F > 9) {
		adjust |= 0x06
	}
	if carry || (!c.flag(flagN) && a > 0x99) {
		adjust |= 0x60
		carry = true
	}

	if c.flag(flagN) {
		a -= adjust
	} else {
		a += adjust
	}

	c.r.a = a
	c.setFlag(flagZ, a == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carry)
}
