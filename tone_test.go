package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperator_Packing(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		dtml  uint8
		tl    uint8
		ksar  uint8
		amdr  uint8
		sr    uint8
		slrr  uint8
		ssgeg uint8
	}{
		{
			name: "zero",
		},
		{
			name:  "typical",
			op:    Operator{AR: 0x1F, DR: 10, SR: 3, RR: 7, SL: 1, TL: 28, KS: 1, ML: 4, DT: 3, AM: true, SSGEG: 8},
			dtml:  0x34,
			tl:    28,
			ksar:  0x5F,
			amdr:  0x8A,
			sr:    3,
			slrr:  0x17,
			ssgeg: 8,
		},
		{
			name:  "all ones truncated",
			op:    Operator{AR: 0xFF, DR: 0xFF, SR: 0xFF, RR: 0xFF, SL: 0xFF, TL: 0xFF, KS: 0xFF, ML: 0xFF, DT: 0xFF, AM: true, SSGEG: 0xFF},
			dtml:  0x7F,
			tl:    0x3F,
			ksar:  0xDF,
			amdr:  0x9F,
			sr:    0x1F,
			slrr:  0xFF,
			ssgeg: 0x0F,
		},
		{
			name: "overflow bits only",
			op:   Operator{AR: 0x20, DR: 0x20, SR: 0x20, RR: 0x10, SL: 0x10, TL: 0x40, KS: 0x04, ML: 0x10, DT: 0x08, SSGEG: 0x10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dtml, tt.op.DTML(), "DTML")
			assert.Equal(t, tt.tl, tt.op.TLValue(), "TL")
			assert.Equal(t, tt.ksar, tt.op.KSAR(), "KSAR")
			assert.Equal(t, tt.amdr, tt.op.AMDR(), "AMDR")
			assert.Equal(t, tt.sr, tt.op.SRValue(), "SR")
			assert.Equal(t, tt.slrr, tt.op.SLRR(), "SLRR")
			assert.Equal(t, tt.ssgeg, tt.op.SSGEGValue(), "SSGEG")
		})
	}
}

func TestTone_Packing(t *testing.T) {
	tests := []struct {
		name   string
		tone   Tone
		fbal   uint8
		lfo    uint8
		amspms uint8
	}{
		{"zero", Tone{}, 0, 0, 0},
		{"typical", Tone{AL: 4, FB: 7, LFOFreq: 0x0B, AMS: 2, PMS: 5}, 0x3C, 0x0B, 0x25},
		{"truncated", Tone{AL: 0xFF, FB: 0xFF, LFOFreq: 0xFF, AMS: 0xFF, PMS: 0xFF}, 0x3F, 0x0F, 0x37},
		{"overflow bits only", Tone{AL: 0x08, FB: 0x08, LFOFreq: 0x10, AMS: 0x04, PMS: 0x08}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fbal, tt.tone.FBAL())
			assert.Equal(t, tt.lfo, tt.tone.LFOFreqValue())
			assert.Equal(t, tt.amspms, tt.tone.AMSPMS())
		})
	}
}

// Packing a value, unpacking it into the same fields and packing again
// must reproduce the byte for every input.
func TestCodec_Idempotent(t *testing.T) {
	for v := range 256 {
		b := uint8(v)
		op := Operator{AR: b, DR: b, SR: b, RR: b, SL: b, TL: b, KS: b, ML: b, DT: b, AM: b&1 == 1, SSGEG: b}

		again := Operator{
			DT:    op.DTML() >> 4,
			ML:    op.DTML() & 0x0F,
			TL:    op.TLValue(),
			KS:    op.KSAR() >> 6,
			AR:    op.KSAR() & 0x1F,
			AM:    op.AMDR()&0x80 != 0,
			DR:    op.AMDR() & 0x1F,
			SR:    op.SRValue(),
			SL:    op.SLRR() >> 4,
			RR:    op.SLRR() & 0x0F,
			SSGEG: op.SSGEGValue(),
		}
		assert.Equal(t, op.DTML(), again.DTML())
		assert.Equal(t, op.TLValue(), again.TLValue())
		assert.Equal(t, op.KSAR(), again.KSAR())
		assert.Equal(t, op.AMDR(), again.AMDR())
		assert.Equal(t, op.SRValue(), again.SRValue())
		assert.Equal(t, op.SLRR(), again.SLRR())
		assert.Equal(t, op.SSGEGValue(), again.SSGEGValue())

		tone := Tone{AL: b, FB: b, LFOFreq: b, AMS: b, PMS: b}
		toneAgain := Tone{
			FB:      tone.FBAL() >> 3,
			AL:      tone.FBAL() & 0x07,
			LFOFreq: tone.LFOFreqValue(),
			AMS:     tone.AMSPMS() >> 4,
			PMS:     tone.AMSPMS() & 0x07,
		}
		assert.Equal(t, tone.FBAL(), toneAgain.FBAL())
		assert.Equal(t, tone.LFOFreqValue(), toneAgain.LFOFreqValue())
		assert.Equal(t, tone.AMSPMS(), toneAgain.AMSPMS())
	}
}
