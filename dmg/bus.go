// Package dmg ties the CPU, cartridge, timer, and PPU together behind a
// single address-mapped bus and exposes the System the host drives.
package dmg

import (
	"log/slog"

	"github.com/mkorman/dmgcore/dmg/addr"
	"github.com/mkorman/dmgcore/dmg/cartridge"
	"github.com/mkorman/dmgcore/dmg/serial"
	"github.com/mkorman/dmgcore/dmg/timer"
	"github.com/mkorman/dmgcore/dmg/video"
)

const (
	wramSize = 0x2000 // $C000-$DFFF
	hramSize = 0x7F   // $FF80-$FFFE
)

// SystemBus decodes the 16-bit address space and routes reads/writes to
// the cartridge, WRAM, HRAM, VRAM, and I/O registers, ticking itself by
// one machine cycle on every access. It implements cpu.Bus.
type SystemBus struct {
	cart cartridge.Cartridge
	boot []byte
	bootDisabled bool

	wram [wramSize]byte
	hram [hramSize]byte

	timer *timer.Timer
	ppu   *video.PPU

	serialSink serial.Sink
	sb, sc     byte

	ie, iff byte
}

// NewSystemBus returns a bus with its subdevices in their post-reset
// state and no cartridge or boot ROM installed.
func NewSystemBus() *SystemBus {
	return &SystemBus{
		timer:      timer.New(),
		ppu:        video.NewPPU(),
		serialSink: serial.NewLogSink(),
	}
}

// Cart installs c as the currently active cartridge, replacing any
// previous one.
func (b *SystemBus) Cart(c cartridge.Cartridge) {
	b.cart = c
}

// BootROM installs up to 256 bytes that shadow $0000-$00FF until the
// emulated program disables it via a write to $FF50.
func (b *SystemBus) BootROM(data []byte) {
	b.boot = data
	b.bootDisabled = false
}

// SetSerialSink overrides the default in-memory trace sink, e.g. to
// forward bytes to stdout from a host front-end.
func (b *SystemBus) SetSerialSink(sink serial.Sink) {
	b.serialSink = sink
}

// PPU exposes the PPU so the host can read its framebuffer.
func (b *SystemBus) PPU() *video.PPU { return b.ppu }

// Reset cascades to the timer and PPU and clears WRAM/HRAM and the
// interrupt registers. It does not touch the installed cartridge or
// boot ROM.
func (b *SystemBus) Reset() {
	b.timer = timer.New()
	b.ppu.Reset()
	b.wram = [wramSize]byte{}
	b.hram = [hramSize]byte{}
	b.ie, b.iff = 0, 0
	b.sb, b.sc = 0, 0
	b.bootDisabled = false
}

// Step unconditionally advances one machine cycle: it ticks the timer
// and PPU, raising their interrupts into IF as needed. Every Read and
// Write calls this first, which is how the bus approximates
// sub-instruction timing.
func (b *SystemBus) Step() {
	if b.timer.Step() {
		b.RequestInterrupt(addr.Timer)
	}
	if b.ppu.Step() {
		b.RequestInterrupt(addr.VBlank)
	}
}

// RequestInterrupt OR-sets the corresponding bit in IF.
func (b *SystemBus) RequestInterrupt(kind addr.Interrupt) {
	b.iff |= byte(kind)
}

// PendingInterrupts returns IE & IF, bypassing Step (the hardware
// interrupt check runs in parallel with execution, not as a bus access).
func (b *SystemBus) PendingInterrupts() byte {
	return b.ie & b.iff
}

// AckInterrupt clears bit's pending flag in IF, called once the CPU has
// begun servicing it.
func (b *SystemBus) AckInterrupt(bit addr.Interrupt) {
	b.iff &^= byte(bit)
}

func (b *SystemBus) Read(address uint16) byte {
	b.Step()

	switch {
	case address <= 0x00FF && b.boot != nil && !b.bootDisabled && int(address) < len(b.boot):
		return b.boot[address]
	case address <= 0x7FFF:
		return b.cart.Read(address)
	case address <= 0x9FFF:
		return b.ppu.ReadVRAM(address)
	case address <= 0xBFFF:
		return b.cart.Read(address)
	case address <= 0xDFFF:
		return b.wram[address-0xC000]
	case address <= 0xFDFF:
		return 0xFF // echo/unused, not modeled
	case address <= 0xFE9F:
		return 0xFF // OAM, not modeled: sprites are not rendered by this core
	case address <= 0xFEFF:
		return 0xFF
	case address == addr.P1:
		return 0xFF // no buttons pressed
	case address == addr.SB:
		return b.sb
	case address == addr.SC:
		return b.sc
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.iff
	case address == addr.LCDC, address == addr.STAT, address == addr.SCY, address == addr.SCX,
		address == addr.LY, address == addr.LYC, address == addr.BGP, address == addr.OBP0,
		address == addr.OBP1, address == addr.WY, address == addr.WX:
		return b.ppu.Read(address)
	case address == addr.DMA:
		return 0xFF
	case address <= 0xFF7F:
		return 0xFF
	case address <= 0xFFFE:
		return b.hram[address-0xFF80]
	default: // $FFFF
		return b.ie
	}
}

func (b *SystemBus) Write(address uint16, value byte) {
	b.Step()

	switch {
	case address <= 0x7FFF:
		b.cart.Write(address, value)
	case address <= 0x9FFF:
		b.ppu.WriteVRAM(address, value)
	case address <= 0xBFFF:
		b.cart.Write(address, value)
	case address <= 0xDFFF:
		b.wram[address-0xC000] = value
	case address <= 0xFDFF:
		// echo/unused, dropped
	case address <= 0xFE9F:
		// OAM, dropped: sprites are not rendered by this core
	case address <= 0xFEFF:
		// unmapped
	case address == addr.P1:
		// joypad input decoding is out of scope; writes dropped
	case address == addr.SB:
		b.sb = value
		b.serialSink.Write(value)
	case address == addr.SC:
		b.sc = value
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		b.timer.Write(address, value)
	case address == addr.IF:
		b.iff = value
	case address == addr.LCDC:
		b.ppu.Write(address, value)
	case address == addr.STAT, address == addr.SCY, address == addr.SCX, address == addr.LYC,
		address == addr.BGP, address == addr.OBP0, address == addr.OBP1, address == addr.WY,
		address == addr.WX:
		b.ppu.Write(address, value)
	case address == addr.LY:
		// read-only in this core
	case address == addr.DMA:
		// OAM DMA not modeled: sprites are not rendered by this core
	case address == addr.BootDisable:
		if !b.bootDisabled {
			slog.Debug("boot ROM disabled")
		}
		b.bootDisabled = true
	case address <= 0xFF7F:
		// unmapped I/O, dropped
	case address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	default: // $FFFF
		b.ie = value
	}
}
