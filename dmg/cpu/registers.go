package cpu

import "github.com/mkorman/dmgcore/dmg/bit"

// registers holds the eight 8-bit registers plus PC/SP. B,C,D,E,H,L,A,F
// are exposed individually and as the 16-bit pairs BC, DE, HL, AF (high
// byte first).
type registers struct {
	a, f byte
	b, c byte
	d, e byte
	h, l byte

	sp, pc uint16
}

func (r *registers) bc() uint16 { return bit.Combine(r.b, r.c) }
func (r *registers) de() uint16 { return bit.Combine(r.d, r.e) }
func (r *registers) hl() uint16 { return bit.Combine(r.h, r.l) }
func (r *registers) af() uint16 { return bit.Combine(r.a, r.f) }

func (r *registers) setBC(v uint16) { r.b, r.c = bit.High(v), bit.Low(v) }
func (r *registers) setDE(v uint16) { r.d, r.e = bit.High(v), bit.Low(v) }
func (r *registers) setHL(v uint16) { r.h, r.l = bit.High(v), bit.Low(v) }

// setAF loads AF, masking F's low nibble to zero: F's lower nibble is
// permanently zero and must be re-enforced on every pop into AF.
func (r *registers) setAF(v uint16) {
	r.a = bit.High(v)
	r.f = bit.Low(v) & 0xF0
}
