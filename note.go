package synth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NoteName is a pitch class. Values beyond B wrap modulo 12.
type NoteName uint8

// Pitch classes in semitone order.
const (
	C NoteName = iota
	Cs
	D
	Eb
	E
	F
	Fs
	G
	Gs
	A
	Bb
	B
)

const (
	numNoteNames = 12

	// MaxOctave is the highest octave the block field can address.
	MaxOctave = 7
)

// fNumbers holds the 11-bit F-number of each pitch class at the chip's
// native clock.
var fNumbers = [numNoteNames]uint16{
	0x0266, 0x028B, 0x02B2, 0x02DB, 0x0307, 0x0334,
	0x0365, 0x0398, 0x03CE, 0x0406, 0x0442, 0x0480,
}

var noteNames = [numNoteNames]string{
	"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B",
}

// Accidentals accepted by ParseNote in addition to the canonical spelling.
var enharmonics = map[string]NoteName{
	"Db": Cs,
	"D#": Eb,
	"Gb": Fs,
	"Ab": Gs,
	"A#": Bb,
}

// ErrInvalidNote indicates a note string that could not be parsed.
var ErrInvalidNote = errors.New("invalid note")

// String returns the canonical spelling of the pitch class.
func (n NoteName) String() string {
	return noteNames[n%numNoteNames]
}

// Note is a pitch class and an octave.
type Note struct {
	Name   NoteName
	Octave uint8
}

// FNumber returns the 11-bit frequency divider of the note's pitch class.
func (n Note) FNumber() uint16 {
	return fNumbers[n.Name%numNoteNames]
}

// FNumberLow returns the value for the F-number low register (0xA0+ch).
func (n Note) FNumberLow() uint8 {
	return uint8(n.FNumber() & maskByte)
}

// FNumberHighBlock returns the value for the block/F-number high register
// (0xA4+ch): the octave in bits 3-5 and the top three F-number bits in 0-2.
func (n Note) FNumberHighBlock() uint8 {
	return (n.Octave&mask3Bits)<<3 | uint8(n.FNumber()>>8)&mask3Bits
}

// String renders the note as name and octave, e.g. "C#4".
func (n Note) String() string {
	return n.Name.String() + strconv.Itoa(int(n.Octave))
}

// ParseNote parses notes written as by Note.String. Sharps and flats are
// both accepted ("D#3" and "Eb3" parse to the same note).
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Note{}, fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}

	nameEnd := 1
	if s[1] == '#' || s[1] == 'b' {
		nameEnd = 2
	}

	name, ok := lookupNoteName(strings.ToUpper(s[:1]) + s[1:nameEnd])
	if !ok {
		return Note{}, fmt.Errorf("%w: unknown pitch class in %q", ErrInvalidNote, s)
	}

	octave, err := strconv.ParseUint(s[nameEnd:], 10, 8)
	if err != nil || octave > MaxOctave {
		return Note{}, fmt.Errorf("%w: octave in %q must be 0-%d", ErrInvalidNote, s, MaxOctave)
	}

	return Note{Name: name, Octave: uint8(octave)}, nil
}

func lookupNoteName(s string) (NoteName, bool) {
	for i, name := range noteNames {
		if name == s {
			return NoteName(i), true
		}
	}
	name, ok := enharmonics[s]
	return name, ok
}
