package synth

// SampleSink receives one stereo sample per native chip tick.
type SampleSink interface {
	Push(left, right int32)
}

// Chip is the FM synthesis engine a Session drives. Implementations need not
// be safe for concurrent use; the Session serializes every call.
type Chip interface {
	// Create allocates the engine. It fails if the engine already exists.
	Create() error

	// Destroy releases the engine. It fails if the engine does not exist.
	Destroy() error

	// Reset returns every register and internal state to power-on values.
	Reset()

	// SampleRate returns the native output rate in ticks per second.
	SampleRate() uint32

	// Clock returns the native clock in Hz.
	Clock() uint32

	ReadLow(addr uint8) uint8
	ReadHigh(addr uint8) uint8
	WriteLow(addr, data uint8)
	WriteHigh(addr, data uint8)

	// Generate runs the engine for ticks native ticks, pushing exactly one
	// stereo sample per tick into dst.
	Generate(dst SampleSink, ticks int)
}
