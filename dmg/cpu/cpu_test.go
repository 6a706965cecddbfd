package cpu

import (
	"testing"

	"github.com/mkorman/dmgcore/dmg/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB memory with a software IE/IF pair, enough to
// drive the CPU through a full instruction stream without the rest of
// the system wired up.
type fakeBus struct {
	mem      [0x10000]byte
	ie       byte
	iff      byte
	steps    int
	acked    []addr.Interrupt
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) byte  { return b.mem[address] }
func (b *fakeBus) Write(address uint16, v byte) { b.mem[address] = v }
func (b *fakeBus) Step()                     { b.steps++ }

func (b *fakeBus) PendingInterrupts() byte { return b.ie & b.iff }

func (b *fakeBus) AckInterrupt(bit addr.Interrupt) {
	b.iff &^= byte(bit)
	b.acked = append(b.acked, bit)
}

func (b *fakeBus) load(at uint16, bytes ...byte) {
	for i, v := range bytes {
		b.mem[int(at)+i] = v
	}
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	c := New(bus)
	c.Reset()
	return c, bus
}

func TestReset_PostBootState(t *testing.T) {
	c, _ := newTestCPU()
	assert.Equal(t, uint16(0x0100), c.PC())
	assert.Equal(t, uint16(0xFFFE), c.SP())
	assert.False(t, c.IME())
	assert.Equal(t, byte(0xB0), c.r.f, "F's low nibble must start zero")
}

func TestSetAF_MasksLowNibble(t *testing.T) {
	c, _ := newTestCPU()
	c.r.setAF(0x1234)
	assert.Equal(t, byte(0x30), c.r.f, "low nibble of F is always forced to zero")
}

// S1: a NOP loop at $0100 runs forever without altering any register.
func TestScenario_NOPLoop(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x0100, 0x00, 0x18, 0xFD) // NOP; JR -3 (back to the NOP)

	before := c.r
	for i := 0; i < 20; i++ {
		c.Step()
	}
	assert.Equal(t, before.a, c.r.a)
	assert.Equal(t, before.b, c.r.b)
	assert.Equal(t, uint16(0x0100), c.PC())
}

// S2: XOR A clears A and sets Z, leaving N/H/C clear.
func TestScenario_XorA(t *testing.T) {
	c, bus := newTestCPU()
	c.r.a = 0x42
	bus.load(0x0100, 0xAF) // XOR A
	c.Step()
	assert.Equal(t, byte(0), c.r.a)
	assert.True(t, c.flag(flagZ))
	assert.False(t, c.flag(flagN))
	assert.False(t, c.flag(flagH))
	assert.False(t, c.flag(flagC))
}

func TestLDrr_AllPairsRoundtrip(t *testing.T) {
	for src := byte(0); src < 8; src++ {
		for dst := byte(0); dst < 8; dst++ {
			if src == r8HL && dst == r8HL {
				continue // HALT, not a load
			}
			c, bus := newTestCPU()
			opcode := 0x40 | dst<<3 | src
			bus.load(0x0100, opcode)
			if src == r8HL || dst == r8HL {
				c.r.setHL(0xC000)
			}
			c.setR8(src, 0x5A)
			c.Step()
			assert.Equal(t, byte(0x5A), c.getR8(dst), "opcode %#02x", opcode)
		}
	}
}

func TestHALT_WakesOnPendingInterruptRegardlessOfIME(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x0100, 0x76) // HALT
	c.Step()
	assert.True(t, c.Halted())

	bus.ie = byte(addr.Timer)
	bus.iff = byte(addr.Timer)
	c.Step()
	assert.False(t, c.Halted())
}

// A HALT executed with IME=1 must both wake and service the pending
// interrupt on the very next Step, not one interrupt later.
func TestHALT_WithIMESetWakesAndServicesImmediately(t *testing.T) {
	c, bus := newTestCPU()
	c.ime = true
	bus.load(0x0100, 0x76) // HALT
	c.Step()
	require.True(t, c.Halted())

	bus.ie = byte(addr.Timer)
	bus.iff = byte(addr.Timer)
	c.Step()

	assert.False(t, c.Halted())
	assert.Equal(t, addr.Vector(addr.Timer), c.PC())
	assert.False(t, c.IME())
}

func TestInterrupt_DispatchesHighestPriorityAndPushesPC(t *testing.T) {
	c, bus := newTestCPU()
	c.ime = true
	c.r.pc = 0x1234
	bus.ie = byte(addr.VBlank) | byte(addr.Timer)
	bus.iff = byte(addr.VBlank) | byte(addr.Timer)

	cycles := c.Step()

	assert.Equal(t, addr.Vector(addr.VBlank), c.PC())
	assert.False(t, c.IME())
	require.Len(t, bus.acked, 1)
	assert.Equal(t, addr.VBlank, bus.acked[0])
	assert.Equal(t, byte(0x12), bus.Read(c.SP()+1))
	assert.Equal(t, byte(0x34), bus.Read(c.SP()))
	assert.Equal(t, 5, cycles)
}

func TestInterrupt_NotDispatchedWhenIMEClear(t *testing.T) {
	c, bus := newTestCPU()
	c.r.pc = 0x1234
	bus.load(0x1234, 0x00)
	bus.ie = byte(addr.VBlank)
	bus.iff = byte(addr.VBlank)

	c.Step()

	assert.Equal(t, uint16(0x1235), c.PC(), "instruction at PC still executes")
}

func TestJRConditional_CostsExtraCycleOnlyWhenTaken(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x0100, 0x20, 0x05) // JR NZ,+5
	c.setFlag(flagZ, true)       // not taken
	cycles := c.Step()
	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint16(0x0102), c.PC())

	c, bus = newTestCPU()
	bus.load(0x0100, 0x20, 0x05)
	c.setFlag(flagZ, false) // taken
	cycles = c.Step()
	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x0107), c.PC())
}

func TestCALLandRET_RoundtripPC(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x0100, 0xCD, 0x00, 0x02) // CALL $0200
	bus.load(0x0200, 0xC9)            // RET
	c.Step()
	assert.Equal(t, uint16(0x0200), c.PC())
	c.Step()
	assert.Equal(t, uint16(0x0103), c.PC())
}

func TestCALLcc_TakenJumpsNotTakenFallsThrough(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x0100, 0xC4, 0x00, 0x02) // CALL NZ,$0200
	c.setFlag(flagZ, false)            // taken
	cycles := c.Step()
	assert.Equal(t, uint16(0x0200), c.PC())
	assert.Equal(t, 6, cycles)
	assert.Equal(t, byte(0x01), bus.Read(c.SP()+1))
	assert.Equal(t, byte(0x03), bus.Read(c.SP()))

	c, bus = newTestCPU()
	bus.load(0x0100, 0xC4, 0x00, 0x02) // CALL NZ,$0200
	c.setFlag(flagZ, true)             // not taken
	cycles = c.Step()
	assert.Equal(t, uint16(0x0103), c.PC())
	assert.Equal(t, 3, cycles)
}

func TestDAA_AfterBCDAddition(t *testing.T) {
	c, _ := newTestCPU()
	c.r.a = 0x45
	c.r.a = c.add8(c.r.a, 0x38) // binary 0x7D
	c.daa()
	assert.Equal(t, byte(0x83), c.r.a, "45+38 in BCD is 83")
	assert.False(t, c.flag(flagC))
}

func TestCBBit_ReadsWithoutWritingBack(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setHL(0xC000)
	bus.mem[0xC000] = 0x00
	bus.load(0x0100, 0xCB, 0x46) // BIT 0,(HL)
	cycles := c.Step()
	assert.True(t, c.flag(flagZ))
	assert.Equal(t, byte(0x00), bus.mem[0xC000])
	assert.Equal(t, 3, cycles)
}

func TestCBSet_OnMemoryCostsReadAndWrite(t *testing.T) {
	c, bus := newTestCPU()
	c.r.setHL(0xC000)
	bus.load(0x0100, 0xCB, 0xC6) // SET 0,(HL)
	cycles := c.Step()
	assert.Equal(t, byte(0x01), bus.mem[0xC000])
	assert.Equal(t, 4, cycles)
}
