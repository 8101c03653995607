package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboard_AllocatesInOrder(t *testing.T) {
	k := NewKeyboard(3)
	notes := []Note{{C, 4}, {E, 4}, {G, 4}}

	for i, n := range notes {
		v, ok := k.NoteOn(n)
		require.True(t, ok)
		assert.Equal(t, uint8(i), v.Channel)
		assert.False(t, v.HasStolen)
	}
	assert.Equal(t, notes, k.Held())
}

func TestKeyboard_RejectsHeldNote(t *testing.T) {
	k := NewKeyboard(2)
	_, ok := k.NoteOn(Note{C, 4})
	require.True(t, ok)

	_, ok = k.NoteOn(Note{C, 4})
	assert.False(t, ok)

	_, ok = k.NoteOn(Note{NoteName(12), 4})
	assert.False(t, ok, "pitch classes wrap before lookup")
}

func TestKeyboard_StealsOldest(t *testing.T) {
	k := NewKeyboard(2)
	k.NoteOn(Note{C, 4})
	k.NoteOn(Note{D, 4})

	v, ok := k.NoteOn(Note{E, 4})
	require.True(t, ok)
	assert.True(t, v.HasStolen)
	assert.Equal(t, Note{C, 4}, v.Stolen)
	assert.Equal(t, uint8(0), v.Channel)

	v, ok = k.NoteOn(Note{F, 4})
	require.True(t, ok)
	assert.Equal(t, Note{D, 4}, v.Stolen)
	assert.Equal(t, uint8(1), v.Channel)

	assert.Equal(t, []Note{{E, 4}, {F, 4}}, k.Held())
	_, held := k.Channel(Note{C, 4})
	assert.False(t, held)
}

func TestKeyboard_NoteOffFreesChannel(t *testing.T) {
	k := NewKeyboard(3)
	k.NoteOn(Note{C, 4})
	k.NoteOn(Note{D, 4})
	k.NoteOn(Note{E, 4})

	ch, ok := k.NoteOff(Note{D, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(1), ch)

	_, ok = k.NoteOff(Note{D, 4})
	assert.False(t, ok)

	// The freed channel is reused before anything is stolen.
	v, ok := k.NoteOn(Note{A, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(1), v.Channel)
	assert.False(t, v.HasStolen)

	assert.Equal(t, []Note{{C, 4}, {E, 4}, {A, 4}}, k.Held())

	// Now full again: the oldest is C4 on channel 0.
	v, _ = k.NoteOn(Note{B, 4})
	assert.Equal(t, Note{C, 4}, v.Stolen)
	assert.Equal(t, uint8(0), v.Channel)
}

func TestKeyboard_FreedChannelsQueue(t *testing.T) {
	k := NewKeyboard(3)
	k.NoteOn(Note{C, 4})
	k.NoteOn(Note{D, 4})

	// Channel 2 was never used, so it comes before the just-freed channel 0.
	k.NoteOff(Note{C, 4})
	v, _ := k.NoteOn(Note{E, 4})
	assert.Equal(t, uint8(2), v.Channel)
	v, _ = k.NoteOn(Note{F, 4})
	assert.Equal(t, uint8(0), v.Channel)
}

func TestKeyboard_ZeroPolyphony(t *testing.T) {
	k := NewKeyboard(0)
	_, ok := k.NoteOn(Note{C, 4})
	assert.False(t, ok)
	assert.Zero(t, k.Polyphony())

	assert.Equal(t, 256, NewKeyboard(1000).Polyphony())
}

func TestKeyboard_Reset(t *testing.T) {
	k := NewKeyboard(2)
	k.NoteOn(Note{C, 4})
	k.NoteOn(Note{D, 4})

	k.Reset()
	assert.Empty(t, k.Held())

	v, ok := k.NoteOn(Note{C, 4})
	require.True(t, ok)
	assert.Equal(t, uint8(0), v.Channel)
	assert.False(t, v.HasStolen)
}
