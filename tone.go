package synth

// Operator is one of the four operators of an FM tone. Fields wider than
// their register field are truncated when packed.
type Operator struct {
	AR    uint8 // attack rate, 5 bits
	DR    uint8 // decay rate, 5 bits
	SR    uint8 // sustain rate, 5 bits
	RR    uint8 // release rate, 4 bits
	SL    uint8 // sustain level, 4 bits
	TL    uint8 // total level, 6 bits
	KS    uint8 // key scale, 2 bits
	ML    uint8 // multiple, 4 bits
	DT    uint8 // detune, 3 bits
	AM    bool  // amplitude modulation enable
	SSGEG uint8 // SSG-type envelope, 4 bits
}

// DTML packs detune and multiple.
func (op *Operator) DTML() uint8 {
	return (op.DT&mask3Bits)<<4 | op.ML&mask4Bits
}

// TLValue packs total level.
func (op *Operator) TLValue() uint8 {
	return op.TL & mask6Bits
}

// KSAR packs key scale and attack rate.
func (op *Operator) KSAR() uint8 {
	return (op.KS&mask2Bits)<<6 | op.AR&mask5Bits
}

// AMDR packs the AM enable bit and decay rate.
func (op *Operator) AMDR() uint8 {
	var am uint8
	if op.AM {
		am = mask1Bit
	}
	return am<<7 | op.DR&mask5Bits
}

// SRValue packs sustain rate.
func (op *Operator) SRValue() uint8 {
	return op.SR & mask5Bits
}

// SLRR packs sustain level and release rate.
func (op *Operator) SLRR() uint8 {
	return (op.SL&mask4Bits)<<4 | op.RR&mask4Bits
}

// SSGEGValue packs the SSG-EG mode.
func (op *Operator) SSGEGValue() uint8 {
	return op.SSGEG & mask4Bits
}

// Tone is a complete FM voice: algorithm, feedback, four operators and the
// global modulation settings.
type Tone struct {
	AL uint8 // algorithm, 3 bits
	FB uint8 // operator 1 feedback, 3 bits
	Op [numOperators]Operator

	LFOFreq uint8 // LFO enable and frequency, 4 bits
	AMS     uint8 // amplitude modulation sensitivity, 2 bits
	PMS     uint8 // phase modulation sensitivity, 3 bits
}

// FBAL packs feedback and algorithm.
func (t *Tone) FBAL() uint8 {
	return (t.FB&mask3Bits)<<3 | t.AL&mask3Bits
}

// LFOFreqValue packs the LFO register.
func (t *Tone) LFOFreqValue() uint8 {
	return t.LFOFreq & mask4Bits
}

// AMSPMS packs the modulation sensitivities.
func (t *Tone) AMSPMS() uint8 {
	return (t.AMS&mask2Bits)<<4 | t.PMS&mask3Bits
}
