// Package blip implements band-limited sample rate conversion by delta
// accumulation.
//
// Instead of storing input samples, a Buffer stores the difference between
// successive samples as band-limited impulses placed at their exact sub-sample
// output position. Reading integrates the impulses back into a waveform, so a
// square wave at any input clock comes out free of aliasing above the output
// Nyquist frequency.
package blip

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/ymsynth/ymsynth/internal/filter"
)

// ErrInvalidRates indicates a clock/sample rate pair the buffer cannot represent.
var ErrInvalidRates = errors.New("invalid clock or sample rate")

var stepTable = sync.OnceValue(func() *filter.StepTable {
	st, err := filter.DesignStepTable(filter.DefaultStepParams())
	if err != nil {
		panic(fmt.Sprintf("blip: default step table: %v", err))
	}
	return st
})

// Buffer is a single channel of band-limited delta accumulation.
// It is not safe for concurrent use.
type Buffer struct {
	factor     uint64
	offset     uint64
	avail      int
	size       int
	integrator int64
	samples    []int64
	table      *filter.StepTable
}

// New creates a buffer that can hold size output samples. Rates default to
// the maximum ratio until SetRates is called.
func New(size int) *Buffer {
	size = max(size, 1)
	size = min(size, MaxCapacity)

	b := &Buffer{
		factor:  timeUnit / MaxRatio,
		size:    size,
		samples: make([]int64, size+bufExtra),
		table:   stepTable(),
	}
	b.Clear()

	return b
}

// SetRates sets the input clock rate and the output sample rate.
// The factor is rounded up so that ClocksNeeded never undershoots.
func (b *Buffer) SetRates(clockRate, sampleRate float64) error {
	if clockRate <= 0 || sampleRate <= 0 {
		return fmt.Errorf("%w: rates must be positive (clock=%v, sample=%v)", ErrInvalidRates, clockRate, sampleRate)
	}

	if clockRate/sampleRate > MaxRatio {
		return fmt.Errorf("%w: clock/sample ratio %v exceeds %d", ErrInvalidRates, clockRate/sampleRate, MaxRatio)
	}

	if sampleRate/clockRate >= maxUpsampleRatio {
		return fmt.Errorf("%w: sample/clock ratio %v exceeds %d", ErrInvalidRates, sampleRate/clockRate, maxUpsampleRatio)
	}

	factor := float64(timeUnit) * sampleRate / clockRate
	b.factor = uint64(factor)
	if float64(b.factor) < factor {
		b.factor++
	}

	return nil
}

// Clear discards all samples and resets the integrator and time offset.
func (b *Buffer) Clear() {
	b.offset = b.factor / 2
	b.avail = 0
	b.integrator = 0
	clear(b.samples)
}

// Size returns the output sample capacity.
func (b *Buffer) Size() int {
	return b.size
}

// SamplesAvail returns the number of samples ready to be read.
func (b *Buffer) SamplesAvail() int {
	return b.avail
}

// ClocksNeeded returns how many clocks must be added in the next frame so
// that at least samples more samples are available after EndFrame.
// Requests beyond the free capacity are clamped to it.
func (b *Buffer) ClocksNeeded(samples int) int {
	if samples <= 0 {
		return 0
	}
	samples = min(samples, b.size-b.avail)

	hi := uint64(samples) >> (64 - timeBits)
	lo := uint64(samples) << timeBits
	if hi == 0 && lo < b.offset {
		return 0
	}

	var borrow, carry uint64
	lo, borrow = bits.Sub64(lo, b.offset, 0)
	hi -= borrow
	lo, carry = bits.Add64(lo, b.factor-1, 0)
	hi += carry

	clocks, _ := bits.Div64(hi, lo, b.factor)
	return int(clocks)
}

// EndFrame makes the samples covered by the first clocks of the current frame
// available for reading and starts a new frame at that point.
func (b *Buffer) EndFrame(clocks int) {
	if clocks <= 0 {
		return
	}

	hi, lo := b.timeAt(clocks)
	b.avail += int(hi<<(64-timeBits) | lo>>timeBits)
	b.offset = lo & (timeUnit - 1)

	b.avail = min(b.avail, b.size)
}

// AddDelta adds a step of height delta at the given clock time within the
// current frame. Deltas that land past the end of the buffer are dropped.
func (b *Buffer) AddDelta(time int, delta int32) {
	if delta == 0 || time < 0 {
		return
	}

	hi, lo := b.timeAt(time)
	fixed := hi<<(64-preShift) | lo>>preShift

	width := b.table.Width()
	pos := b.avail + int(fixed>>fracBits)
	if pos < 0 || pos+width > len(b.samples) {
		return
	}

	phase := int(fixed>>phaseShift) & (b.table.Phases - 1)
	interp := int64(fixed>>(phaseShift-deltaBits)) & (deltaUnit - 1)

	d := int64(delta)
	d2 := (d * interp) >> deltaBits
	d -= d2

	cur, next := b.table.Rows[phase], b.table.Rows[phase+1]
	out := b.samples[pos : pos+width]
	for i := range out {
		out[i] += int64(cur[i])*d + int64(next[i])*d2
	}
}

// ReadSamples integrates up to len(dst) available samples into dst and
// removes them from the buffer. It returns the number of samples read.
func (b *Buffer) ReadSamples(dst []int16) int {
	count := min(len(dst), b.avail)
	if count == 0 {
		return 0
	}

	sum := b.integrator
	for i := range count {
		s := sum >> deltaBits
		sum += b.samples[i]
		s = clamp16(s)
		dst[i] = int16(s)
		sum -= s << (deltaBits - bassShift)
	}
	b.integrator = sum
	b.removeSamples(count)

	return count
}

func (b *Buffer) removeSamples(count int) {
	remain := b.avail + bufExtra - count
	b.avail -= count

	copy(b.samples, b.samples[count:count+remain])
	clear(b.samples[remain : remain+count])
}

// timeAt returns clocks*factor + offset as a 128-bit value.
func (b *Buffer) timeAt(clocks int) (hi, lo uint64) {
	hi, lo = bits.Mul64(uint64(clocks), b.factor)
	var carry uint64
	lo, carry = bits.Add64(lo, b.offset, 0)
	hi += carry
	return hi, lo
}

func clamp16(s int64) int64 {
	const (
		maxInt16 = 1<<15 - 1
		minInt16 = -1 << 15
	)
	if s > maxInt16 {
		return maxInt16
	}
	if s < minInt16 {
		return minInt16
	}
	return s
}
