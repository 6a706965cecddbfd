package cpu

import "github.com/mkorman/dmgcore/dmg/bit"

// executeCB decodes the 256 CB-prefixed opcodes: x=0 rotate/shift, x=1
// BIT, x=2 RES, x=3 SET, all operating on r8(z) (y is the bit index for
// x=1..3, the rotate/shift selector for x=0). Register operands cost
// nothing extra over the two opcode-byte fetches already charged by the
// caller; (HL) operands cost one read, plus a write-back for every group
// except BIT.
func (c *CPU) executeCB(opcode byte) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	switch x {
	case 0:
		v := c.rotateShift(y, c.getR8(z))
		c.setR8(z, v)
		return 2 * extraHL(z)
	case 1:
		c.bit(y, c.getR8(z))
		return extraHL(z)
	case 2:
		c.setR8(z, bit.Clear(y, c.getR8(z)))
		return 2 * extraHL(z)
	default:
		c.setR8(z, bit.Set(y, c.getR8(z)))
		return 2 * extraHL(z)
	}
}

func (c *CPU) rotateShift(y byte, v byte) byte {
	switch y {
	case 0:
		return c.rlc(v)
	case 1:
		return c.rrc(v)
	case 2:
		return c.rl(v)
	case 3:
		return c.rr(v)
	case 4:
		return c.sla(v)
	case 5:
		return c.sra(v)
	case 6:
		return c.swap(v)
	default:
		return c.srl(v)
	}
}
