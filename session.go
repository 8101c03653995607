package synth

import (
	"fmt"
	"sync"

	"github.com/ymsynth/ymsynth/internal/blip"
	"github.com/ymsynth/ymsynth/internal/simdops"
)

// Session owns a chip engine and the resampling buffer that converts its
// output to the host rate. A session is either inactive (after NewSession or
// Stop) or active (after Start). Operations on an inactive session are
// no-ops except where an error is documented.
type Session struct {
	mu sync.Mutex

	chip     Chip
	cfg      Config
	buf      *blip.StereoBuffer
	keyboard *Keyboard

	// scratch for float output, sized to the buffer capacity
	scratchL, scratchR []int16
	floatL, floatR     []float32
}

// NewSession creates an inactive session driving chip.
func NewSession(chip Chip, opts ...Option) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{chip: chip, cfg: cfg}
}

// Start creates and resets the chip, allocates the resampling buffer for
// outputRate and programs the chip into YM2608 mode with centre panning.
func (s *Session) Start(outputRate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf != nil {
		return ErrAlreadyStarted
	}

	cfg := s.cfg
	cfg.OutputRate = outputRate
	if err := cfg.Validate(); err != nil {
		return err
	}

	if s.chip == nil {
		return fmt.Errorf("%w: chip is nil", ErrInvalidConfig)
	}

	if err := s.chip.Create(); err != nil {
		return fmt.Errorf("%w: create: %w", ErrChip, err)
	}
	s.chip.Reset()

	buf, err := blip.NewStereoBuffer(float64(s.chip.SampleRate()), outputRate, cfg.BufferCapacity)
	if err != nil {
		// The buffer error is the one worth reporting.
		_ = s.chip.Destroy()
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s.cfg = cfg
	s.buf = buf
	s.keyboard = NewKeyboard(cfg.Polyphony)
	applyWrites(s.chip, InitWrites())

	return nil
}

// Stop destroys the chip and releases the buffer. If the chip fails to
// destroy, the session stays active.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return ErrNotStarted
	}

	if err := s.chip.Destroy(); err != nil {
		return fmt.Errorf("%w: destroy: %w", ErrChip, err)
	}

	s.buf = nil
	s.keyboard = nil
	s.scratchL, s.scratchR = nil, nil
	s.floatL, s.floatR = nil, nil

	return nil
}

// Active reports whether the session has been started and not stopped.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf != nil
}

// OutputRate returns the host sample rate of an active session, or 0.
func (s *Session) OutputRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0
	}
	return s.cfg.OutputRate
}

// Reset resets the chip, drops buffered audio, releases all keyboard notes
// and re-applies the mode and panning registers. The tone must be set again.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return ErrNotStarted
	}

	s.chip.Reset()
	s.buf.Clear()
	s.keyboard.Reset()
	applyWrites(s.chip, InitWrites())

	return nil
}

// SetTone programs t into all six channels.
func (s *Session) SetTone(t *Tone) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return
	}
	applyWrites(s.chip, ToneWrites(t))
}

// NoteOn sets the pitch of channel ch and keys it on. Channels at or above
// NumChannels are ignored.
func (s *Session) NoteOn(ch uint8, n Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return
	}
	applyWrites(s.chip, NoteOnWrites(ch, n))
}

// NoteOff keys off channel ch. Channels at or above NumChannels are ignored.
func (s *Session) NoteOff(ch uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return
	}
	applyWrites(s.chip, NoteOffWrites(ch))
}

// PlayNote keys n on a channel chosen by the session keyboard, stealing the
// oldest note when all channels are busy. It returns false if the session is
// inactive or n is already playing.
func (s *Session) PlayNote(n Note) (Voice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return Voice{}, false
	}

	v, ok := s.keyboard.NoteOn(n)
	if !ok {
		return Voice{}, false
	}
	if v.HasStolen {
		applyWrites(s.chip, NoteOffWrites(v.Channel))
	}
	applyWrites(s.chip, NoteOnWrites(v.Channel, n))

	return v, true
}

// ReleaseNote keys off the channel playing n.
func (s *Session) ReleaseNote(n Note) (uint8, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0, false
	}

	ch, ok := s.keyboard.NoteOff(n)
	if !ok {
		return 0, false
	}
	applyWrites(s.chip, NoteOffWrites(ch))

	return ch, true
}

// ReadRegister reads a chip register. It returns false when the session is
// inactive.
func (s *Session) ReadRegister(bank Bank, addr uint8) (uint8, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0, false
	}
	if bank == BankHigh {
		return s.chip.ReadHigh(addr), true
	}
	return s.chip.ReadLow(addr), true
}

// Generate fills left and right with min(len(left), len(right)) samples at
// the output rate and returns the count written. It returns 0 when the
// session is inactive.
func (s *Session) Generate(left, right []int16) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0
	}
	return s.generate(left, right)
}

// GenerateFloat32 is like Generate with samples scaled to [-1, 1).
func (s *Session) GenerateFloat32(left, right []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0
	}
	return s.generateFloat32(left, right)
}

// GenerateInterleavedFloat32 fills dst with len(dst)/2 interleaved stereo
// frames scaled to [-1, 1) and returns the number of frames written.
func (s *Session) GenerateInterleavedFloat32(dst []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0
	}

	frames := len(dst) / blip.StereoChannels
	capacity := s.buf.Capacity()
	if len(s.floatL) < capacity {
		s.floatL = make([]float32, capacity)
		s.floatR = make([]float32, capacity)
	}

	written := 0
	for written < frames {
		want := min(frames-written, capacity)
		got := s.generateFloat32(s.floatL[:want], s.floatR[:want])
		if got == 0 {
			break
		}
		out := dst[written*blip.StereoChannels : (written+got)*blip.StereoChannels]
		simdops.Interleave2(out, s.floatL[:got], s.floatR[:got])
		written += got
	}

	return written
}

// generate pulls audio through the buffer in chunks of at most its
// capacity. Callers hold s.mu.
func (s *Session) generate(left, right []int16) int {
	count := min(len(left), len(right))
	capacity := s.buf.Capacity()

	written := 0
	for written < count {
		want := min(count-written, capacity)
		if avail := s.buf.AvailableSampleCount(); avail < want {
			ticks := s.buf.NeededFrameSize(want - avail)
			s.chip.Generate(s.buf, ticks)
			s.buf.EndFrame()
		}

		got := s.buf.Pop(left[written:written+want], right[written:written+want])
		if got == 0 {
			break
		}
		written += got
	}

	return written
}

func (s *Session) generateFloat32(left, right []float32) int {
	count := min(len(left), len(right))
	capacity := s.buf.Capacity()
	if len(s.scratchL) < capacity {
		s.scratchL = make([]int16, capacity)
		s.scratchR = make([]int16, capacity)
	}

	written := 0
	for written < count {
		want := min(count-written, capacity)
		got := s.generate(s.scratchL[:want], s.scratchR[:want])
		if got == 0 {
			break
		}
		simdops.Int16ToFloat32(left[written:written+got], s.scratchL[:got])
		simdops.Int16ToFloat32(right[written:written+got], s.scratchR[:got])
		written += got
	}

	return written
}
