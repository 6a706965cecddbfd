package cartridge

// mbc3 implements the MBC3 mapper: a full 7-bit ROM bank, a RAM-bank /
// RTC-register selector, and a latch window for the real-time clock.
//
// Per spec, the $0000-$1FFF RAM/timer-enable window is accepted but has
// no effect in this core (a documented source fidelity bug: real
// hardware gates RAM reads behind the $0A enable, this core does not).
// RTC registers are stored but never ticked or latched.
type mbc3 struct {
	rom   []uint8
	ram   []uint8
	title string

	romBank uint8 // 7 bits, 0 coerced to 1 on read
	ramSel  uint8 // $00-$03 selects a RAM bank, $08-$0C selects an RTC register
	rtc     [5]uint8
}

func newMBC3(data []byte, header Header) *mbc3 {
	rom := make([]byte, len(data))
	copy(rom, data)

	return &mbc3{
		rom:     rom,
		ram:     make([]byte, ramBankCount(header.RAMSize)*0x2000),
		title:   header.Title,
		romBank: 1,
	}
}

func (m *mbc3) effectiveBank() int {
	if m.romBank == 0 {
		return 1
	}
	return int(m.romBank)
}

func (m *mbc3) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[int(addr)%len(m.rom)]
	case addr <= 0x7FFF:
		offset := m.effectiveBank()*0x4000 + int(addr-0x4000)
		return m.rom[offset%len(m.rom)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramSel <= 0x03 {
			if len(m.ram) == 0 {
				return 0xFF
			}
			offset := int(m.ramSel)*0x2000 + int(addr-0xA000)
			return m.ram[offset%len(m.ram)]
		}
		if m.ramSel >= 0x08 && m.ramSel <= 0x0C {
			return m.rtc[m.ramSel-0x08]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *mbc3) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		// RAM/timer enable: accepted, no effect (see type doc comment).
	case addr <= 0x3FFF:
		m.romBank = value & 0x7F
	case addr <= 0x5FFF:
		m.ramSel = value
	case addr <= 0x7FFF:
		// RTC latch: accepted, no-op in this core.
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramSel <= 0x03 {
			if len(m.ram) == 0 {
				return
			}
			offset := int(m.ramSel)*0x2000 + int(addr-0xA000)
			m.ram[offset%len(m.ram)] = value
		} else if m.ramSel >= 0x08 && m.ramSel <= 0x0C {
			m.rtc[m.ramSel-0x08] = value
		}
	}
}

func (m *mbc3) Title() string { return m.title }
