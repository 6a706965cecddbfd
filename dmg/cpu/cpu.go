// Package cpu implements the Sharp SM83 instruction set: fetch/decode/
// execute for the 256 primary and 256 CB-prefixed opcodes, flag
// arithmetic, and interrupt dispatch.
package cpu

import (
	"github.com/mkorman/dmgcore/dmg/addr"
	"github.com/mkorman/dmgcore/dmg/bit"
)

// Bus is everything the CPU needs from its memory-mapped world. Read and
// Write each tick the bus by one machine cycle as a side effect (per the
// system's bus-paced timing model); Step ticks it by one machine cycle
// with no memory access, for instructions that do internal-only work.
// PendingInterrupts and AckInterrupt bypass the ticking Read/Write path
// because the hardware interrupt check happens in parallel with
// execution, not as a bus access.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Step()
	PendingInterrupts() byte
	AckInterrupt(bit addr.Interrupt)
}

// CPU is the SM83 interpreter: registers, flags, IME, and halted state.
type CPU struct {
	r registers

	bus    Bus
	ime    bool
	halted bool
}

// New returns a CPU wired to bus, in its zero (pre-reset) state.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset sets the post-boot register and flag state.
func (c *CPU) Reset() {
	c.r = registers{}
	c.r.setAF(0x01B0)
	c.r.setBC(0x0013)
	c.r.setDE(0x00D8)
	c.r.setHL(0x014D)
	c.r.pc = 0x0100
	c.r.sp = 0xFFFE
	c.ime = false
	c.halted = false
}

func (c *CPU) PC() uint16 { return c.r.pc }
func (c *CPU) SP() uint16 { return c.r.sp }
func (c *CPU) IME() bool  { return c.ime }
func (c *CPU) Halted() bool { return c.halted }

// Step runs exactly one interrupt-check-or-instruction cycle and returns
// the number of machine cycles consumed, per the protocol in spec.md
// §4.5:
//  1. compute pending = IE & IF
//  2. if pending != 0: dispatch the highest-priority interrupt if IME is
//     set, otherwise just wake from halt
//  3. if still halted, tick the bus once and return
//  4. otherwise fetch-decode-execute one instruction
func (c *CPU) Step() int {
	cycles := 0

	pending := c.bus.PendingInterrupts()
	if pending != 0 {
		c.halted = false
		if c.ime {
			return c.serviceInterrupt(pending)
		}
	}

	if c.halted {
		c.bus.Step()
		return cycles + 1
	}

	opcode := c.fetch()
	cycles += 1 + c.execute(opcode)
	return cycles
}

// interruptOrder is priority order, V-blank highest.
var interruptOrder = []addr.Interrupt{addr.VBlank, addr.LCDStat, addr.Timer, addr.Serial, addr.Joypad}

func (c *CPU) serviceInterrupt(pending byte) int {
	for _, i := range interruptOrder {
		if pending&byte(i) == 0 {
			continue
		}

		c.ime = false
		c.bus.AckInterrupt(i)

		c.bus.Step()
		c.bus.Step()
		c.push(c.r.pc)
		c.r.pc = addr.Vector(i)
		c.bus.Step()

		return 5
	}
	return 0
}

func (c *CPU) fetch() byte {
	b := c.bus.Read(c.r.pc)
	c.r.pc++
	return b
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return bit.Combine(hi, lo)
}

func (c *CPU) push(v uint16) {
	c.r.sp--
	c.bus.Write(c.r.sp, bit.High(v))
	c.r.sp--
	c.bus.Write(c.r.sp, bit.Low(v))
}

func (c *CPU) pop() uint16 {
	lo := c.bus.Read(c.r.sp)
	c.r.sp++
	hi := c.bus.Read(c.r.sp)
	c.r.sp++
	return bit.Combine(hi, lo)
}
