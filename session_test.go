package synth

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNativeRate = 166400
	testOutputRate = 44100
)

// fakeChip records register writes and outputs a constant level.
type fakeChip struct {
	created    bool
	createErr  error
	destroyErr error
	resets     int
	level      int32
	ticks      int

	regs   [2][256]uint8
	writes []Register
}

func newFakeChip() *fakeChip {
	return &fakeChip{}
}

func (f *fakeChip) Create() error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.created {
		return errors.New("already created")
	}
	f.created = true
	return nil
}

func (f *fakeChip) Destroy() error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	if !f.created {
		return errors.New("not created")
	}
	f.created = false
	return nil
}

func (f *fakeChip) Reset() {
	f.resets++
	f.regs = [2][256]uint8{}
}

func (f *fakeChip) SampleRate() uint32 { return testNativeRate }
func (f *fakeChip) Clock() uint32      { return testNativeRate * 48 }

func (f *fakeChip) ReadLow(addr uint8) uint8  { return f.regs[BankLow][addr] }
func (f *fakeChip) ReadHigh(addr uint8) uint8 { return f.regs[BankHigh][addr] }

func (f *fakeChip) WriteLow(addr, data uint8) {
	f.regs[BankLow][addr] = data
	f.writes = append(f.writes, Register{BankLow, addr, data})
}

func (f *fakeChip) WriteHigh(addr, data uint8) {
	f.regs[BankHigh][addr] = data
	f.writes = append(f.writes, Register{BankHigh, addr, data})
}

func (f *fakeChip) Generate(dst SampleSink, ticks int) {
	for range ticks {
		dst.Push(f.level, -f.level)
	}
	f.ticks += ticks
}

func startedSession(t *testing.T, opts ...Option) (*Session, *fakeChip) {
	t.Helper()
	chip := newFakeChip()
	s := NewSession(chip, opts...)
	require.NoError(t, s.Start(testOutputRate))
	return s, chip
}

func TestSession_StartStop(t *testing.T) {
	chip := newFakeChip()
	s := NewSession(chip)
	assert.False(t, s.Active())

	require.NoError(t, s.Start(testOutputRate))
	assert.True(t, s.Active())
	assert.True(t, chip.created)
	assert.Equal(t, 1, chip.resets)
	assert.InDelta(t, testOutputRate, s.OutputRate(), 0)
	assert.Equal(t, InitWrites(), chip.writes)

	require.NoError(t, s.Stop())
	assert.False(t, s.Active())
	assert.False(t, chip.created)
	assert.Zero(t, s.OutputRate())
}

func TestSession_DoubleStartStop(t *testing.T) {
	s, _ := startedSession(t)

	require.ErrorIs(t, s.Start(testOutputRate), ErrAlreadyStarted)
	assert.True(t, s.Active())

	require.NoError(t, s.Stop())
	require.ErrorIs(t, s.Stop(), ErrNotStarted)

	// A stopped session can be started again.
	require.NoError(t, s.Start(48000))
	assert.InDelta(t, 48000.0, s.OutputRate(), 0)
	require.NoError(t, s.Stop())
}

func TestSession_StartErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		chip    Chip
		rate    float64
		opts    []Option
		wantErr error
	}{
		{"zero rate", newFakeChip(), 0, nil, ErrInvalidConfig},
		{"nil chip", nil, testOutputRate, nil, ErrInvalidConfig},
		{"bad capacity", newFakeChip(), testOutputRate, []Option{WithBufferCapacity(1)}, ErrInvalidConfig},
		{"bad polyphony", newFakeChip(), testOutputRate, []Option{WithPolyphony(7)}, ErrInvalidConfig},
		{"create fails", &fakeChip{createErr: boom}, testOutputRate, nil, ErrChip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.chip, tt.opts...)
			err := s.Start(tt.rate)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, s.Active())
		})
	}

	s := NewSession(&fakeChip{createErr: boom})
	require.ErrorIs(t, s.Start(testOutputRate), boom)
}

func TestSession_StopChipFailureKeepsActive(t *testing.T) {
	s, chip := startedSession(t)
	boom := errors.New("boom")
	chip.destroyErr = boom

	err := s.Stop()
	require.ErrorIs(t, err, ErrChip)
	require.ErrorIs(t, err, boom)
	assert.True(t, s.Active())

	chip.destroyErr = nil
	require.NoError(t, s.Stop())
}

func TestSession_InactiveIsNoOp(t *testing.T) {
	chip := newFakeChip()
	s := NewSession(chip)

	s.SetTone(&Tone{})
	s.NoteOn(0, Note{C, 4})
	s.NoteOff(0)
	_, ok := s.PlayNote(Note{C, 4})
	assert.False(t, ok)
	_, ok = s.ReleaseNote(Note{C, 4})
	assert.False(t, ok)
	_, ok = s.ReadRegister(BankLow, 0x29)
	assert.False(t, ok)
	require.ErrorIs(t, s.Reset(), ErrNotStarted)

	left := make([]int16, 10)
	right := make([]int16, 10)
	assert.Zero(t, s.Generate(left, right))
	assert.Zero(t, s.GenerateFloat32(make([]float32, 10), make([]float32, 10)))
	assert.Zero(t, s.GenerateInterleavedFloat32(make([]float32, 20)))

	assert.Empty(t, chip.writes)
	assert.Zero(t, chip.ticks)
}

func TestSession_NoteOnOffWrites(t *testing.T) {
	s, chip := startedSession(t)

	for ch := range uint8(8) {
		chip.writes = nil
		s.NoteOn(ch, Note{A, 4})
		assert.Equal(t, NoteOnWrites(ch, Note{A, 4}), chip.writes, "note on channel %d", ch)

		chip.writes = nil
		s.NoteOff(ch)
		assert.Equal(t, NoteOffWrites(ch), chip.writes, "note off channel %d", ch)
	}

	chip.writes = nil
	s.NoteOn(6, Note{C, 4})
	s.NoteOn(7, Note{C, 4})
	s.NoteOff(6)
	s.NoteOff(7)
	assert.Empty(t, chip.writes, "channels 6 and 7 must not touch the chip")
}

func TestSession_SetTone(t *testing.T) {
	s, chip := startedSession(t)
	tone := &Tone{AL: 2, FB: 5}

	chip.writes = nil
	s.SetTone(tone)
	assert.Equal(t, ToneWrites(tone), chip.writes)

	v, ok := s.ReadRegister(BankHigh, 0xB1)
	require.True(t, ok)
	assert.Equal(t, tone.FBAL(), v)

	chip.writes = nil
	s.SetTone(nil)
	assert.Empty(t, chip.writes)
}

func TestSession_Generate(t *testing.T) {
	s, chip := startedSession(t)
	chip.level = 1000

	left := make([]int16, 2000)
	right := make([]int16, 2000)
	for i := range 10 {
		require.Equal(t, 2000, s.Generate(left, right), "call %d", i)
	}

	// 20000 samples at 44.1 kHz from 166.4 kHz.
	assert.InDelta(t, 20000*float64(testNativeRate)/testOutputRate, chip.ticks, 20)
}

func TestSession_GenerateUnevenSlices(t *testing.T) {
	s, _ := startedSession(t)
	assert.Equal(t, 300, s.Generate(make([]int16, 500), make([]int16, 300)))
	assert.Zero(t, s.Generate(nil, make([]int16, 10)))
}

func TestSession_GenerateLargerThanCapacity(t *testing.T) {
	s, chip := startedSession(t, WithBufferCapacity(256))
	chip.level = 1000

	left := make([]int16, 5000)
	right := make([]int16, 5000)
	require.Equal(t, 5000, s.Generate(left, right))

	// The step settles and decays; the tail must still be continuous output.
	assert.NotZero(t, left[100])
	assert.InDelta(t, left[100], -right[100], 2)
}

func TestSession_GenerateFloat32(t *testing.T) {
	s, chip := startedSession(t)
	chip.level = 16384

	left := make([]float32, 500)
	right := make([]float32, 500)
	require.Equal(t, 500, s.GenerateFloat32(left, right))

	for i := range left {
		assert.GreaterOrEqual(t, left[i], float32(-1))
		assert.Less(t, left[i], float32(1))
	}
	assert.InDelta(t, 0.5, left[20], 0.05)
	assert.InDelta(t, -0.5, right[20], 0.05)
}

func TestSession_GenerateInterleavedFloat32(t *testing.T) {
	s, chip := startedSession(t, WithBufferCapacity(128))
	chip.level = 16384

	dst := make([]float32, 2*300+1)
	require.Equal(t, 300, s.GenerateInterleavedFloat32(dst))
	assert.InDelta(t, 0.5, dst[2*20], 0.05)
	assert.InDelta(t, -0.5, dst[2*20+1], 0.05)
	assert.Zero(t, dst[600])
}

func TestSession_PlayReleaseNote(t *testing.T) {
	s, chip := startedSession(t, WithPolyphony(2))

	chip.writes = nil
	v, ok := s.PlayNote(Note{C, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(0), v.Channel)
	assert.Equal(t, NoteOnWrites(0, Note{C, 4}), chip.writes)

	_, ok = s.PlayNote(Note{C, 4})
	assert.False(t, ok)

	s.PlayNote(Note{E, 4})

	chip.writes = nil
	v, ok = s.PlayNote(Note{G, 4})
	require.True(t, ok)
	assert.True(t, v.HasStolen)
	want := append(NoteOffWrites(0), NoteOnWrites(0, Note{G, 4})...)
	assert.Equal(t, want, chip.writes, "stolen note is keyed off first")

	chip.writes = nil
	ch, ok := s.ReleaseNote(Note{E, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(1), ch)
	assert.Equal(t, NoteOffWrites(1), chip.writes)

	_, ok = s.ReleaseNote(Note{E, 4})
	assert.False(t, ok)
}

func TestSession_Reset(t *testing.T) {
	s, chip := startedSession(t)
	chip.level = 1000
	s.SetTone(&Tone{AL: 7})
	s.PlayNote(Note{C, 4})
	s.Generate(make([]int16, 100), make([]int16, 100))

	chip.writes = nil
	require.NoError(t, s.Reset())
	assert.Equal(t, 2, chip.resets)
	assert.Equal(t, InitWrites(), chip.writes)

	v, _ := s.ReadRegister(BankLow, 0xB0)
	assert.Zero(t, v, "tone registers are cleared by reset")
	v, _ = s.ReadRegister(BankLow, 0x29)
	assert.Equal(t, uint8(0x80), v)

	// The keyboard is released too, so the same note starts on channel 0.
	voice, ok := s.PlayNote(Note{C, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(0), voice.Channel)
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s, chip := startedSession(t)
	chip.level = 100

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		left := make([]int16, 256)
		right := make([]int16, 256)
		for range 50 {
			s.Generate(left, right)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 50 {
			s.NoteOn(uint8(i%NumChannels), Note{C, 4})
			s.NoteOff(uint8(i % NumChannels))
		}
	}()
	wg.Wait()

	assert.True(t, s.Active())
}

func BenchmarkSession_Generate(b *testing.B) {
	chip := newFakeChip()
	chip.level = 1000
	s := NewSession(chip)
	if err := s.Start(testOutputRate); err != nil {
		b.Fatal(err)
	}
	left := make([]int16, 2000)
	right := make([]int16, 2000)

	b.ReportAllocs()
	for b.Loop() {
		s.Generate(left, right)
	}
}
