package synth

import (
	"errors"
	"fmt"

	"github.com/ymsynth/ymsynth/internal/blip"
)

// Config holds session parameters.
type Config struct {
	// OutputRate is the host sample rate in Hz. It is set by Session.Start.
	OutputRate float64

	// BufferCapacity is the number of output samples per channel the
	// resampling buffer can hold. Generate pulls audio in chunks of at most
	// this size.
	BufferCapacity int

	// Polyphony is the number of channels the keyboard allocates from
	// (1 to NumChannels).
	Polyphony int
}

// Errors returned by Session.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid synth configuration")

	// ErrAlreadyStarted indicates Start was called on an active session.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted indicates an operation that requires an active session.
	ErrNotStarted = errors.New("session not started")

	// ErrChip indicates a failure reported by the chip engine.
	ErrChip = errors.New("chip engine failure")
)

// DefaultConfig returns the configuration used by NewSession.
func DefaultConfig() Config {
	return Config{
		BufferCapacity: blip.DefaultCapacity,
		Polyphony:      NumChannels,
	}
}

// Validate checks the configuration, including the output rate.
func (c *Config) Validate() error {
	if c.OutputRate <= 0 || c.OutputRate > maxOutputRate {
		return fmt.Errorf("%w: output rate %v must be in (0, %d]", ErrInvalidConfig, c.OutputRate, maxOutputRate)
	}

	return c.validateStatic()
}

func (c *Config) validateStatic() error {
	if c.BufferCapacity < minBufferCapacity || c.BufferCapacity > blip.MaxCapacity {
		return fmt.Errorf("%w: buffer capacity %d must be in [%d, %d]", ErrInvalidConfig,
			c.BufferCapacity, minBufferCapacity, blip.MaxCapacity)
	}

	if c.Polyphony < 1 || c.Polyphony > NumChannels {
		return fmt.Errorf("%w: polyphony %d must be in [1, %d]", ErrInvalidConfig, c.Polyphony, NumChannels)
	}

	return nil
}

// Option configures a Session.
type Option func(*Config)

// WithBufferCapacity sets the resampling buffer capacity in output samples.
func WithBufferCapacity(capacity int) Option {
	return func(c *Config) {
		c.BufferCapacity = capacity
	}
}

// WithPolyphony limits the keyboard to the first n channels.
func WithPolyphony(n int) Option {
	return func(c *Config) {
		c.Polyphony = n
	}
}
