// Package synth drives a YM2608 (OPNA) FM synthesis chip engine and converts
// its native-rate output to a host sample rate.
//
// The package has three layers:
//
//   - A register codec that packs a [Tone], its [Operator]s and [Note]s into
//     the byte values of the chip's register protocol. The codec is total: out
//     of range fields are masked to their bit width, never rejected.
//   - A band-limited stereo resampling buffer (internal/blip) that accepts one
//     sample per native chip tick and produces alias-free output at any rate.
//   - A [Session] that owns a [Chip] and the buffer, sequences configuration
//     and note events, and pulls audio on demand.
//
// # Quick Start
//
//	s := synth.NewSession(chip)
//	if err := s.Start(44100); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Stop()
//
//	s.SetTone(&tone)
//	s.NoteOn(0, synth.Note{Name: synth.C, Octave: 4})
//
//	left := make([]int16, 2000)
//	right := make([]int16, 2000)
//	n := s.Generate(left, right)
//
// # Channels
//
// The chip exposes six FM channels split over two register banks. Channels
// 0-2 live in the low bank and 3-5 in the high bank; both banks share the
// key-on register 0x28 in the low bank. Note events for channel 6 or higher
// are ignored.
//
// # Concurrency
//
// Every Session method holds the session mutex for its whole duration, so a
// Session may be shared between a control goroutine and an audio goroutine.
// Chip implementations are called with the lock held and need no locking of
// their own.
package synth
