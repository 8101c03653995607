package synth

import "slices"

// Voice is the result of allocating a channel for a note.
type Voice struct {
	// Channel is the channel the note should be keyed on.
	Channel uint8

	// Stolen is the note that previously held Channel, valid when HasStolen
	// is set. It must be keyed off before the new note is keyed on.
	Stolen    Note
	HasStolen bool
}

// Keyboard allocates a fixed pool of channels to held notes. When every
// channel is busy the oldest held note is stolen.
type Keyboard struct {
	free     []uint8
	held     []Note // oldest first
	channels map[Note]uint8
	size     int
}

// NewKeyboard creates a keyboard with polyphony channels numbered from 0.
func NewKeyboard(polyphony int) *Keyboard {
	polyphony = max(polyphony, 0)
	polyphony = min(polyphony, maskByte+1)

	k := &Keyboard{
		free:     make([]uint8, 0, polyphony),
		held:     make([]Note, 0, polyphony),
		channels: make(map[Note]uint8, polyphony),
		size:     polyphony,
	}
	k.Reset()

	return k
}

// NoteOn allocates a channel for n. It returns false if n is already held
// or the keyboard has no channels.
func (k *Keyboard) NoteOn(n Note) (Voice, bool) {
	n = normalizeNote(n)
	if _, held := k.channels[n]; held {
		return Voice{}, false
	}

	var v Voice
	if len(k.free) == 0 {
		if len(k.held) == 0 {
			return Voice{}, false
		}
		oldest := k.held[0]
		k.held = k.held[1:]
		k.free = append(k.free, k.channels[oldest])
		delete(k.channels, oldest)

		v.Stolen = oldest
		v.HasStolen = true
	}

	v.Channel = k.free[0]
	k.free = k.free[1:]
	k.held = append(k.held, n)
	k.channels[n] = v.Channel

	return v, true
}

// NoteOff releases the channel held by n. It returns false if n is not held.
func (k *Keyboard) NoteOff(n Note) (uint8, bool) {
	n = normalizeNote(n)
	ch, held := k.channels[n]
	if !held {
		return 0, false
	}

	if i := slices.Index(k.held, n); i >= 0 {
		k.held = slices.Delete(k.held, i, i+1)
	}
	k.free = append(k.free, ch)
	delete(k.channels, n)

	return ch, true
}

// Channel returns the channel held by n.
func (k *Keyboard) Channel(n Note) (uint8, bool) {
	ch, held := k.channels[normalizeNote(n)]
	return ch, held
}

// Held returns the held notes, oldest first.
func (k *Keyboard) Held() []Note {
	return slices.Clone(k.held)
}

// Polyphony returns the number of channels in the pool.
func (k *Keyboard) Polyphony() int {
	return k.size
}

// Reset releases every note.
func (k *Keyboard) Reset() {
	k.free = k.free[:0]
	for ch := range k.size {
		k.free = append(k.free, uint8(ch))
	}
	k.held = k.held[:0]
	clear(k.channels)
}

func normalizeNote(n Note) Note {
	n.Name %= numNoteNames
	return n
}
