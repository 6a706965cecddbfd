package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildImage returns a minimal 32 KiB image with a correct header
// checksum and the given cartridge type byte.
func buildImage(cartType byte) []byte {
	data := make([]byte, minImageSize)
	copy(data[titleStart:], []byte("TESTROM"))
	data[typeAddress] = cartType
	data[romSizeAddr] = 0x00
	data[ramSizeAddr] = 0x00
	fixChecksum(data)
	return data
}

func fixChecksum(data []byte) {
	var x uint8
	for i := checksumRangeStart; i <= checksumRangeEnd; i++ {
		x = x - data[i] - 1
	}
	data[checksumAddr] = x
}

func TestNew_HeaderChecksum(t *testing.T) {
	data := buildImage(typeROMOnly)

	_, err := New(data)
	require.NoError(t, err)

	data[checksumAddr] ^= 0xFF
	_, err = New(data)
	assert.ErrorIs(t, err, ErrInvalidCartridge)
}

func TestNew_TooSmall(t *testing.T) {
	_, err := New(make([]byte, 100))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNew_UnsupportedType(t *testing.T) {
	data := buildImage(0x20)
	_, err := New(data)
	assert.ErrorIs(t, err, ErrInvalidCartridge)
}

func TestNew_DispatchesVariant(t *testing.T) {
	rom, err := New(buildImage(typeROMOnly))
	require.NoError(t, err)
	_, ok := rom.(*romOnly)
	assert.True(t, ok)

	mbc1c, err := New(buildImage(typeMBC1Lo))
	require.NoError(t, err)
	_, ok = mbc1c.(*mbc1)
	assert.True(t, ok)

	mbc3c, err := New(buildImage(typeMBC3Lo))
	require.NoError(t, err)
	_, ok = mbc3c.(*mbc3)
	assert.True(t, ok)
}

func TestROMOnly_WriteIsNoop(t *testing.T) {
	data := buildImage(typeROMOnly)
	data[0x0100] = 0xAB
	cart, err := New(data)
	require.NoError(t, err)

	cart.Write(0x0100, 0xFF)
	assert.Equal(t, uint8(0xAB), cart.Read(0x0100))
}
