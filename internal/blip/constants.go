package blip

import "github.com/ymsynth/ymsynth/internal/filter"

// Fixed-point time layout. A clock count multiplied by factor gives output
// sample time with timeBits fractional bits; products are computed in 128 bits.
const (
	preShift = 32
	timeBits = preShift + 20
	timeUnit = uint64(1) << timeBits
	fracBits = timeBits - preShift

	phaseBits  = 5
	phaseShift = fracBits - phaseBits

	deltaBits = 15
	deltaUnit = 1 << deltaBits

	// High-pass shift applied on read; removes DC drift from the integrator.
	bassShift = 9

	endFrameExtra = 2
	halfWidth     = filter.DefaultStepHalfWidth
	bufExtra      = halfWidth*2 + endFrameExtra
)

const (
	// MaxRatio is the largest clockRate/sampleRate ratio a Buffer accepts.
	MaxRatio = 1 << 20

	// maxUpsampleRatio keeps factor within 64 bits.
	maxUpsampleRatio = 1 << (64 - timeBits)

	// DefaultCapacity is the output sample capacity used by the synth session.
	DefaultCapacity = 0x10000

	// MaxCapacity bounds the accumulation line so sample times stay far from
	// the 128-bit intermediate limits.
	MaxCapacity = 1 << 24

	// StereoChannels is the number of lock-step channels in a StereoBuffer.
	StereoChannels = 2
)
