package dmg

import (
	"github.com/mkorman/dmgcore/dmg/cartridge"
	"github.com/mkorman/dmgcore/dmg/cpu"
	"github.com/mkorman/dmgcore/dmg/video"
)

// System owns the bus and CPU for the process lifetime and is the only
// type a host needs to drive an emulated DMG.
type System struct {
	bus *SystemBus
	cpu *cpu.CPU
}

// New returns a System with a fresh bus and CPU, reset to their
// post-boot state.
func New() *System {
	bus := NewSystemBus()
	s := &System{
		bus: bus,
		cpu: cpu.New(bus),
	}
	s.Reset()
	return s
}

// Reset cascades to the CPU, timer, and PPU, per spec.md's described
// post-boot register state.
func (s *System) Reset() {
	s.bus.Reset()
	s.cpu.Reset()
}

// Cart installs c as the active cartridge.
func (s *System) Cart(c cartridge.Cartridge) {
	s.bus.Cart(c)
}

// BootROM installs an optional boot ROM image that shadows $0000-$00FF
// until disabled by the emulated program.
func (s *System) BootROM(data []byte) {
	s.bus.BootROM(data)
}

// Step delegates to the CPU and returns the number of machine cycles
// the step consumed.
func (s *System) Step() int {
	return s.cpu.Step()
}

// FrameBuffer returns the PPU's framebuffer. The host must only read it
// after Step has returned control, and should wait for a full frame
// (LY transitioning 143->144) before treating its contents as stable.
func (s *System) FrameBuffer() *video.FrameBuffer {
	return s.bus.PPU().FrameBuffer()
}

// CPU exposes the CPU for host front-ends that want register/IME/PC
// visibility (e.g. a debugger view).
func (s *System) CPU() *cpu.CPU {
	return s.cpu
}
