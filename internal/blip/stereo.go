package blip

import "fmt"

// Channel feeds one sample per input clock into a Buffer, converting
// absolute samples into deltas.
type Channel struct {
	buf        *Buffer
	prevSample int32
	frameSize  int
}

// NewChannel creates a channel converting from clockRate to sampleRate.
func NewChannel(clockRate, sampleRate float64, capacity int) (*Channel, error) {
	buf := New(capacity)
	if err := buf.SetRates(clockRate, sampleRate); err != nil {
		return nil, err
	}
	buf.Clear()

	return &Channel{buf: buf}, nil
}

// Push appends the sample for the next input clock of the current frame.
func (c *Channel) Push(sample int32) {
	c.buf.AddDelta(c.frameSize, sample-c.prevSample)
	c.prevSample = sample
	c.frameSize++
}

// EndFrame closes the current frame at the number of samples pushed so far.
func (c *Channel) EndFrame() {
	c.buf.EndFrame(c.frameSize)
	c.frameSize = 0
}

// Clear drops all buffered output and resets the delta history.
func (c *Channel) Clear() {
	c.buf.Clear()
	c.prevSample = 0
	c.frameSize = 0
}

// Buffer returns the underlying delta buffer.
func (c *Channel) Buffer() *Buffer {
	return c.buf
}

// StereoBuffer is a lock-step pair of channels sharing one timing.
type StereoBuffer struct {
	channels   [StereoChannels]*Channel
	clockRate  float64
	sampleRate float64
	capacity   int
}

// NewStereoBuffer creates a stereo buffer converting from the chip clock
// rate to the host output rate with room for capacity output samples.
func NewStereoBuffer(clockRate, sampleRate float64, capacity int) (*StereoBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be positive", ErrInvalidRates, capacity)
	}

	sb := &StereoBuffer{
		clockRate:  clockRate,
		sampleRate: sampleRate,
		capacity:   min(capacity, MaxCapacity),
	}
	for i := range sb.channels {
		ch, err := NewChannel(clockRate, sampleRate, sb.capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		sb.channels[i] = ch
	}

	return sb, nil
}

// Push appends one stereo sample for the next input clock.
func (sb *StereoBuffer) Push(left, right int32) {
	sb.channels[0].Push(left)
	sb.channels[1].Push(right)
}

// EndFrame closes the current frame on both channels.
func (sb *StereoBuffer) EndFrame() {
	for _, ch := range sb.channels {
		ch.EndFrame()
	}
}

// NeededFrameSize returns how many input clocks must be pushed for count
// more output samples to become available.
func (sb *StereoBuffer) NeededFrameSize(count int) int {
	return sb.channels[0].buf.ClocksNeeded(count)
}

// AvailableSampleCount returns the number of stereo samples ready to Pop.
func (sb *StereoBuffer) AvailableSampleCount() int {
	return min(sb.channels[0].buf.SamplesAvail(), sb.channels[1].buf.SamplesAvail())
}

// Pop reads up to min(len(left), len(right)) samples into the two slices.
func (sb *StereoBuffer) Pop(left, right []int16) int {
	n := min(len(left), len(right))
	l := sb.channels[0].buf.ReadSamples(left[:n])
	r := sb.channels[1].buf.ReadSamples(right[:n])
	return min(l, r)
}

// Clear drops all buffered output on both channels.
func (sb *StereoBuffer) Clear() {
	for _, ch := range sb.channels {
		ch.Clear()
	}
}

// Capacity returns the output sample capacity per channel.
func (sb *StereoBuffer) Capacity() int {
	return sb.capacity
}

// Ratio returns the conversion ratio clockRate/sampleRate.
func (sb *StereoBuffer) Ratio() float64 {
	return sb.clockRate / sb.sampleRate
}

// SampleRate returns the output sample rate.
func (sb *StereoBuffer) SampleRate() float64 {
	return sb.sampleRate
}

// ClockRate returns the input clock rate.
func (sb *StereoBuffer) ClockRate() float64 {
	return sb.clockRate
}
