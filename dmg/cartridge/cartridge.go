// Package cartridge implements the ROM-only, MBC1, and MBC3 cartridge
// variants: header parsing, checksum validation, and the bank-switching
// state machines triggered by writes into the normally-read-only ROM
// window.
package cartridge

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidCartridge is returned when the header checksum does not
// match, or the cartridge type byte names an unsupported MBC.
var ErrInvalidCartridge = errors.New("invalid cartridge")

// ErrOutOfRange is returned when the ROM image is too small to contain a
// valid header. The host surfaces it identically to ErrInvalidCartridge.
var ErrOutOfRange = errors.New("cartridge image out of range")

// cartridge type byte values, see Pan Docs $0147.
const (
	typeROMOnly = 0x00
	typeMBC1Lo  = 0x01
	typeMBC1Hi  = 0x03
	typeMBC3Lo  = 0x0F
	typeMBC3Hi  = 0x13
)

// Cartridge is the closed set of mapper variants this core supports.
// Dispatch is by concrete type, not open inheritance, per spec.
type Cartridge interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	Title() string
}

// New validates data's header checksum and constructs the Cartridge
// variant named by the type byte at $0147.
func New(data []byte) (Cartridge, error) {
	if len(data) < minImageSize {
		return nil, fmt.Errorf("%w: image is %d bytes, need at least %d", ErrOutOfRange, len(data), minImageSize)
	}

	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	if err := verifyChecksum(data); err != nil {
		return nil, err
	}

	slog.Debug("cartridge loaded", "title", header.Title, "type", fmt.Sprintf("0x%02X", header.Type), "romSize", header.ROMSize, "ramSize", header.RAMSize)

	switch {
	case header.Type == typeROMOnly:
		return newROMOnly(data, header), nil
	case header.Type >= typeMBC1Lo && header.Type <= typeMBC1Hi:
		return newMBC1(data, header), nil
	case header.Type >= typeMBC3Lo && header.Type <= typeMBC3Hi:
		return newMBC3(data, header), nil
	default:
		return nil, fmt.Errorf("%w: unsupported cartridge type 0x%02X", ErrInvalidCartridge, header.Type)
	}
}
