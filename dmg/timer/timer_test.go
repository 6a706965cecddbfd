package timer

import (
	"testing"

	"github.com/mkorman/dmgcore/dmg/addr"
	"github.com/stretchr/testify/assert"
)

func TestTimer_OverflowReloadsFromTMAAndSignals(t *testing.T) {
	tm := New()
	tm.Write(addr.TAC, 0x04) // enabled, clock select 0 -> threshold 1024
	tm.Write(addr.TMA, 0xAB)
	tm.Write(addr.TIMA, 0xFF)

	var raised bool
	for i := 0; i < 1024/4; i++ {
		if tm.Step() {
			raised = true
		}
	}

	assert.True(t, raised)
	assert.Equal(t, byte(0xAB), tm.Read(addr.TIMA))
}

func TestTimer_NoOverflowBeforeThreshold(t *testing.T) {
	tm := New()
	tm.Write(addr.TAC, 0x04)
	tm.Write(addr.TIMA, 0xFF)

	for i := 0; i < 1024/4-1; i++ {
		assert.False(t, tm.Step())
	}
	assert.Equal(t, byte(0xFF), tm.Read(addr.TIMA))
}

func TestTimer_DIVResetOnAnyWrite(t *testing.T) {
	tm := New()
	for i := 0; i < 256; i++ {
		tm.Step()
	}
	assert.NotEqual(t, byte(0), tm.Read(addr.DIV))

	tm.Write(addr.DIV, 0x99)
	assert.Equal(t, byte(0), tm.Read(addr.DIV))
}

func TestTimer_DisabledDoesNotCountTIMA(t *testing.T) {
	tm := New()
	tm.Write(addr.TIMA, 0x10)

	for i := 0; i < 10000; i++ {
		tm.Step()
	}

	assert.Equal(t, byte(0x10), tm.Read(addr.TIMA))
}

func TestTimer_CarriesExcessTicks(t *testing.T) {
	tm := New()
	tm.Write(addr.TAC, 0x05) // enabled, clock select 1 -> threshold 16
	tm.Write(addr.TIMA, 0x00)

	// 16 T-cycles = 4 m-cycle steps.
	for i := 0; i < 5; i++ {
		tm.Step()
	}
	assert.Equal(t, byte(1), tm.Read(addr.TIMA))
}
