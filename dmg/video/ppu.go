// Package video implements the PPU's scanline state machine, background
// tile fetch/render, and the framebuffer it writes to. Window and sprite
// layers are modeled as registers only; they are not rendered by this
// core (spec non-goal).
package video

import (
	"github.com/mkorman/dmgcore/dmg/addr"
)

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank  Mode = 0
	ModeVBlank  Mode = 1
	ModeOAM     Mode = 2
	ModeDrawing Mode = 3
)

// T-cycle thresholds for each mode, per spec.
const (
	oamCycles     = 80
	drawingCycles = 172
	hblankCycles  = 204
	lineCycles    = oamCycles + drawingCycles + hblankCycles // 456
)

const vramSize = 0x2000 // $8000-$9FFF

// PPU holds the LCD registers, VRAM, the scanline state machine, and the
// decoded framebuffer.
type PPU struct {
	vram [vramSize]byte
	fb   *FrameBuffer

	lcdc byte
	stat byte
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	mode      Mode
	dotCycles int // cycles elapsed within the current mode

	tileMapBase   uint16
	tileDataBase  uint16
	signedTileIDs bool
}

// NewPPU returns a PPU in its post-reset state: LCD enabled, mode
// OAM-Search, LY 0, the default (unsigned, $8000) tile-data addressing.
func NewPPU() *PPU {
	p := &PPU{
		fb:   NewFrameBuffer(),
		lcdc: 0x91,
		bgp:  0xFC,
		mode: ModeOAM,
	}
	p.applyLCDC(p.lcdc)
	return p
}

// FrameBuffer returns the buffer the PPU renders into. The host must not
// read it concurrently with Step.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.fb
}

// Step advances the PPU by one machine cycle (4 T-cycles). It reports
// whether the V-blank interrupt should be raised this step, which
// happens exactly once per frame at the HBlank->VBlank transition.
func (p *PPU) Step() (raiseVBlank bool) {
	if p.lcdc&0x80 == 0 {
		p.ly = 0
		p.mode = ModeVBlank
		p.dotCycles = 0
		p.fb.Clear()
		return false
	}

	p.dotCycles += 4

	switch p.mode {
	case ModeOAM:
		if p.dotCycles >= oamCycles {
			p.dotCycles -= oamCycles
			p.mode = ModeDrawing
		}
	case ModeDrawing:
		if p.dotCycles >= drawingCycles {
			p.dotCycles -= drawingCycles
			p.renderScanline()
			p.mode = ModeHBlank
		}
	case ModeHBlank:
		if p.dotCycles >= hblankCycles {
			p.dotCycles -= hblankCycles
			p.ly++
			if p.ly == 144 {
				p.mode = ModeVBlank
				raiseVBlank = true
			} else {
				p.mode = ModeOAM
			}
		}
	case ModeVBlank:
		if p.dotCycles >= lineCycles {
			p.dotCycles -= lineCycles
			p.ly++
			if p.ly >= 154 {
				p.ly = 0
				p.mode = ModeOAM
			}
		}
	}

	return raiseVBlank
}

func (p *PPU) renderScanline() {
	if p.lcdc&0x01 == 0 {
		return
	}

	line := p.ly
	for x := 0; x < Width; x++ {
		ox := p.scx + byte(x)
		oy := p.scy + line

		tileIndex := uint16(oy/8)*32 + uint16(ox/8)
		tileID := p.vram[p.tileMapBase-0x8000+tileIndex]

		var tileAddr uint16
		if p.signedTileIDs {
			tileAddr = p.tileDataBase + uint16(int16(int8(tileID))+128)*16
		} else {
			tileAddr = p.tileDataBase + uint16(tileID)*16
		}

		rowOffset := uint16(oy%8) * 2
		lowByte := p.vram[tileAddr-0x8000+rowOffset]
		highByte := p.vram[tileAddr-0x8000+rowOffset+1]

		bitIndex := 7 - (ox % 8)
		lowBit := (lowByte >> bitIndex) & 1
		highBit := (highByte >> bitIndex) & 1
		colorNumber := (highBit << 1) | lowBit

		shade := (p.bgp >> (colorNumber * 2)) & 0x03
		p.fb.Set(x, int(line), shadeToColor[shade])
	}
}

// applyLCDC recomputes the tile-map and tile-data base addresses and the
// signed/unsigned tile-ID mode from an LCDC value, instead of a blind
// store.
func (p *PPU) applyLCDC(v byte) {
	p.lcdc = v

	if v&0x08 != 0 {
		p.tileMapBase = 0x9C00
	} else {
		p.tileMapBase = 0x9800
	}

	if v&0x10 != 0 {
		p.tileDataBase = 0x8000
		p.signedTileIDs = false
	} else {
		p.tileDataBase = 0x8800
		p.signedTileIDs = true
	}
}

// ReadVRAM/WriteVRAM serve the $8000-$9FFF window; the bus forwards
// directly, no bus.step() beyond the one already charged for the access.
func (p *PPU) ReadVRAM(addr uint16) byte {
	return p.vram[addr-0x8000]
}

func (p *PPU) WriteVRAM(addr uint16, value byte) {
	p.vram[addr-0x8000] = value
}

// Read serves one of the PPU's memory-mapped registers.
func (p *PPU) Read(a uint16) byte {
	switch a {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return (p.stat &^ 0x03) | byte(p.mode)
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

// Write updates one of the PPU's memory-mapped registers. LY is
// read-only in this core (writes are dropped); LCDC goes through
// applyLCDC instead of a blind store.
func (p *PPU) Write(a uint16, value byte) {
	switch a {
	case addr.LCDC:
		p.applyLCDC(value)
	case addr.STAT:
		p.stat = value
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LYC:
		p.lyc = value
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

// Reset restores post-boot PPU state.
func (p *PPU) Reset() {
	p.vram = [vramSize]byte{}
	p.scy, p.scx, p.ly, p.lyc = 0, 0, 0, 0
	p.obp0, p.obp1, p.wy, p.wx = 0, 0, 0, 0
	p.bgp = 0xFC
	p.mode = ModeOAM
	p.dotCycles = 0
	p.applyLCDC(0x91)
	p.fb.Clear()
}
