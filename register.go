package synth

// Bank selects one of the chip's two register address spaces.
type Bank uint8

const (
	// BankLow addresses FM channels 0-2 and the global registers.
	BankLow Bank = iota
	// BankHigh addresses FM channels 3-5.
	BankHigh
)

// String returns "low" or "high".
func (b Bank) String() string {
	if b == BankHigh {
		return "high"
	}
	return "low"
}

// Register is a single register write.
type Register struct {
	Bank Bank
	Addr uint8
	Data uint8
}

// InitWrites returns the writes that put a freshly reset chip into YM2608
// mode with every channel panned to the centre.
func InitWrites() []Register {
	regs := make([]Register, 0, 1+2*channelsPerBank)
	regs = append(regs, Register{Bank: BankLow, Addr: regMode, Data: modeYM2608})
	for ch := range uint8(channelsPerBank) {
		regs = appendBoth(regs, regPanAMSPMS+ch, centerPanning)
	}
	return regs
}

// ToneWrites returns the writes that program t into every channel of both
// banks. A nil tone yields no writes.
func ToneWrites(t *Tone) []Register {
	if t == nil {
		return nil
	}

	operatorRegs := [...]uint8{regDTML, regTL, regKSAR, regAMDR, regSR, regSLRR, regSSGEG}
	regs := make([]Register, 0, 1+2*channelsPerBank*(2+numOperators*len(operatorRegs)))

	regs = append(regs, Register{Bank: BankLow, Addr: regLFO, Data: t.LFOFreqValue()})

	for ch := range uint8(channelsPerBank) {
		regs = appendBoth(regs, regFBAL+ch, t.FBAL())
		regs = appendBoth(regs, regPanAMSPMS+ch, centerPanning|t.AMSPMS())
	}

	for i := range t.Op {
		op := &t.Op[i]
		values := [...]uint8{op.DTML(), op.TLValue(), op.KSAR(), op.AMDR(), op.SRValue(), op.SLRR(), op.SSGEGValue()}
		for ch := range uint8(channelsPerBank) {
			slot := ch + operatorOffsets[i]
			for j, base := range operatorRegs {
				regs = appendBoth(regs, base+slot, values[j])
			}
		}
	}

	return regs
}

// NoteOnWrites returns the writes that set the frequency of channel ch to n
// and key on all four operators. Channels at or above NumChannels yield no
// writes.
func NoteOnWrites(ch uint8, n Note) []Register {
	bank, slot, key, ok := channelLayout(ch)
	if !ok {
		return nil
	}

	return []Register{
		{Bank: bank, Addr: regFNumBlock + slot, Data: n.FNumberHighBlock()},
		{Bank: bank, Addr: regFNumLow + slot, Data: n.FNumberLow()},
		{Bank: BankLow, Addr: regKeyOnOff, Data: slotFlags | key},
	}
}

// NoteOffWrites returns the write that keys off channel ch. The slot bits
// are cleared and the channel select bits kept. Channels at or above
// NumChannels yield no writes.
func NoteOffWrites(ch uint8) []Register {
	_, _, key, ok := channelLayout(ch)
	if !ok {
		return nil
	}

	return []Register{
		{Bank: BankLow, Addr: regKeyOnOff, Data: ^uint8(slotFlags) & key},
	}
}

// channelLayout maps a channel index to its register bank, the channel slot
// within that bank and the channel select bits of the key-on register.
func channelLayout(ch uint8) (bank Bank, slot, key uint8, ok bool) {
	switch {
	case ch < channelsPerBank:
		return BankLow, ch, ch, true
	case ch < NumChannels:
		slot = ch - channelsPerBank
		return BankHigh, slot, highChFlag | slot, true
	default:
		return BankLow, 0, 0, false
	}
}

func appendBoth(regs []Register, addr, data uint8) []Register {
	return append(regs,
		Register{Bank: BankLow, Addr: addr, Data: data},
		Register{Bank: BankHigh, Addr: addr, Data: data},
	)
}

// applyWrites sends regs to the chip in order.
func applyWrites(chip Chip, regs []Register) {
	for _, r := range regs {
		if r.Bank == BankHigh {
			chip.WriteHigh(r.Addr, r.Data)
		} else {
			chip.WriteLow(r.Addr, r.Data)
		}
	}
}
