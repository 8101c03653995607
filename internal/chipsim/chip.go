// Package chipsim is a register-driven stand-in for a YM2608 engine.
//
// It keeps both register files, records every write and renders each keyed
// channel as a square wave at the pitch its F-number and block registers
// select. There is no FM synthesis; the output exists to exercise the
// session and resampling paths with audio whose pitch and level are known.
package chipsim

import (
	"errors"
	"slices"

	synth "github.com/ymsynth/ymsynth"
)

const (
	// Clock is the YM2608 master clock in Hz.
	Clock = 7987200

	// Prescaler is the number of master clocks per native output sample.
	Prescaler = 48

	// SampleRate is the native output rate.
	SampleRate = Clock / Prescaler

	// ChannelAmplitude is the square wave peak of one channel at TL 0.
	ChannelAmplitude = 4096

	numChannels     = synth.NumChannels
	channelsPerBank = 3
	registerCount   = 256

	regKeyOnOff  = 0x28
	regTLCarrier = 0x4C // operator 4 total level, slot 0
	regFNumLow   = 0xA0
	regFNumBlock = 0xA4
	regPan       = 0xB4

	panLeft    = 0x80
	panRight   = 0x40
	slotMask   = 0xF0
	highBankCh = 0x04
	tlMask     = 0x3F

	// TL attenuates 0.75 dB per step, so 8 steps halve the amplitude.
	tlStepsPerHalving = 8

	// Phase increment per tick is fnum * 2^(11+block) / 3 in 2^32 units,
	// from f = fnum * Clock / (144 * 2^(21-block)) at Clock/48 ticks per second.
	phaseShiftBase = 11
	phaseDivisor   = 3
	halfCycle      = 1 << 31
)

var (
	// ErrAlreadyCreated is returned by Create on a created chip.
	ErrAlreadyCreated = errors.New("chip already created")

	// ErrNotCreated is returned by Destroy on a chip that was never created.
	ErrNotCreated = errors.New("chip not created")
)

// Chip implements synth.Chip.
type Chip struct {
	created bool
	regs    [2][registerCount]uint8
	keyed   [numChannels]bool
	phase   [numChannels]uint32

	writes []synth.Register
	ticks  int64

	// CreateErr and DestroyErr, when set, are returned by the next Create or
	// Destroy call instead of performing it.
	CreateErr  error
	DestroyErr error
}

var _ synth.Chip = (*Chip)(nil)

// New returns an uncreated chip.
func New() *Chip {
	return &Chip{}
}

func (c *Chip) Create() error {
	if c.CreateErr != nil {
		return c.CreateErr
	}
	if c.created {
		return ErrAlreadyCreated
	}
	c.created = true
	return nil
}

func (c *Chip) Destroy() error {
	if c.DestroyErr != nil {
		return c.DestroyErr
	}
	if !c.created {
		return ErrNotCreated
	}
	c.created = false
	return nil
}

// Reset clears the registers, key state and oscillator phases. The write
// log is kept.
func (c *Chip) Reset() {
	c.regs = [2][registerCount]uint8{}
	c.keyed = [numChannels]bool{}
	c.phase = [numChannels]uint32{}
}

func (c *Chip) SampleRate() uint32 { return SampleRate }
func (c *Chip) Clock() uint32      { return Clock }

func (c *Chip) ReadLow(addr uint8) uint8  { return c.regs[synth.BankLow][addr] }
func (c *Chip) ReadHigh(addr uint8) uint8 { return c.regs[synth.BankHigh][addr] }

func (c *Chip) WriteLow(addr, data uint8) {
	c.write(synth.BankLow, addr, data)
}

func (c *Chip) WriteHigh(addr, data uint8) {
	c.write(synth.BankHigh, addr, data)
}

func (c *Chip) write(bank synth.Bank, addr, data uint8) {
	c.writes = append(c.writes, synth.Register{Bank: bank, Addr: addr, Data: data})
	c.regs[bank][addr] = data

	if bank == synth.BankLow && addr == regKeyOnOff {
		c.keyOnOff(data)
	}
}

func (c *Chip) keyOnOff(data uint8) {
	slot := int(data & 0x03)
	if slot >= channelsPerBank {
		return
	}

	ch := slot
	if data&highBankCh != 0 {
		ch += channelsPerBank
	}

	on := data&slotMask != 0
	if on && !c.keyed[ch] {
		c.phase[ch] = 0
	}
	c.keyed[ch] = on
}

// Generate pushes ticks samples of the summed square waves of every keyed
// channel.
func (c *Chip) Generate(dst synth.SampleSink, ticks int) {
	var inc [numChannels]uint32
	var amp [numChannels]int32
	var pan [numChannels]uint8
	for ch := range numChannels {
		if !c.keyed[ch] {
			continue
		}
		inc[ch] = c.phaseIncrement(ch)
		amp[ch] = c.amplitude(ch)
		pan[ch] = c.bankRegs(ch)[regPan+ch%channelsPerBank]
	}

	for range ticks {
		var left, right int32
		for ch := range numChannels {
			if amp[ch] == 0 {
				continue
			}
			v := amp[ch]
			if c.phase[ch] >= halfCycle {
				v = -v
			}
			c.phase[ch] += inc[ch]

			if pan[ch]&panLeft != 0 {
				left += v
			}
			if pan[ch]&panRight != 0 {
				right += v
			}
		}
		dst.Push(left, right)
	}
	c.ticks += int64(ticks)
}

// Frequency returns the pitch of channel ch in Hz as its registers select.
func (c *Chip) Frequency(ch int) float64 {
	fnum, block := c.fnumBlock(ch)
	return float64(fnum) * Clock / (144 * float64(uint32(1)<<(21-block)))
}

// Keyed reports whether channel ch is keyed on.
func (c *Chip) Keyed(ch int) bool {
	return ch >= 0 && ch < numChannels && c.keyed[ch]
}

// Created reports whether Create has succeeded without a matching Destroy.
func (c *Chip) Created() bool {
	return c.created
}

// Writes returns a copy of the write log.
func (c *Chip) Writes() []synth.Register {
	return slices.Clone(c.writes)
}

// ClearWrites empties the write log.
func (c *Chip) ClearWrites() {
	c.writes = c.writes[:0]
}

// Ticks returns the total number of native ticks generated.
func (c *Chip) Ticks() int64 {
	return c.ticks
}

func (c *Chip) bankRegs(ch int) *[registerCount]uint8 {
	if ch >= channelsPerBank {
		return &c.regs[synth.BankHigh]
	}
	return &c.regs[synth.BankLow]
}

func (c *Chip) fnumBlock(ch int) (fnum uint32, block uint32) {
	regs := c.bankRegs(ch)
	slot := uint8(ch % channelsPerBank)
	hi := regs[regFNumBlock+slot]
	lo := regs[regFNumLow+slot]
	return uint32(hi&0x07)<<8 | uint32(lo), uint32(hi>>3) & 0x07
}

func (c *Chip) phaseIncrement(ch int) uint32 {
	fnum, block := c.fnumBlock(ch)
	return uint32((uint64(fnum) << (phaseShiftBase + block)) / phaseDivisor)
}

func (c *Chip) amplitude(ch int) int32 {
	tl := c.bankRegs(ch)[regTLCarrier+ch%channelsPerBank] & tlMask
	return ChannelAmplitude >> (tl / tlStepsPerHalving)
}
