package cartridge

// bankingMode selects what the $4000-$5FFF register means.
type bankingMode uint8

const (
	modeROM bankingMode = 0
	modeRAM bankingMode = 1
)

// mbc1 implements the MBC1 mapper: a 5-bit low ROM-bank field plus a
// 2-bit register that is either the high ROM-bank bits or the RAM bank,
// depending on the banking mode latch.
type mbc1 struct {
	rom   []uint8
	ram   []uint8
	title string

	ramEnabled bool
	romBankLo  uint8 // 5 bits, written via $2000-$3FFF
	bank2      uint8 // 2 bits, written via $4000-$5FFF
	mode       bankingMode
}

func newMBC1(data []byte, header Header) *mbc1 {
	rom := make([]byte, len(data))
	copy(rom, data)

	return &mbc1{
		rom:       rom,
		ram:       make([]byte, ramBankCount(header.RAMSize)*0x2000),
		title:     header.Title,
		romBankLo: 1,
	}
}

// romBank computes the effective upper-ROM-window bank. Per spec, a low
// field of 0 is coerced to 1 so the $4000-$7FFF window never maps to
// bank 0.
func (m *mbc1) romBank() int {
	lo := m.romBankLo
	if lo == 0 {
		lo = 1
	}

	bank := int(lo)
	if m.mode == modeROM {
		bank |= int(m.bank2) << 5
	}
	return bank
}

func (m *mbc1) ramBank() int {
	if m.mode == modeRAM {
		return int(m.bank2)
	}
	return 0
}

func (m *mbc1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[int(addr)%len(m.rom)]
	case addr <= 0x7FFF:
		offset := m.romBank()*0x4000 + int(addr-0x4000)
		return m.rom[offset%len(m.rom)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := m.ramBank()*0x2000 + int(addr-0xA000)
		return m.ram[offset%len(m.ram)]
	default:
		return 0xFF
	}
}

func (m *mbc1) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case addr <= 0x3FFF:
		m.romBankLo = value & 0x1F
	case addr <= 0x5FFF:
		m.bank2 = value & 0x03
	case addr <= 0x7FFF:
		if value&0x01 != 0 {
			m.mode = modeRAM
		} else {
			m.mode = modeROM
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := m.ramBank()*0x2000 + int(addr-0xA000)
		m.ram[offset%len(m.ram)] = value
	}
}

func (m *mbc1) Title() string { return m.title }
