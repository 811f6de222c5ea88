// Package tuning maps notes to frequencies for the selected major key.
package tuning

import (
	"fmt"
	"math"
	"strings"
)

type (
	// Key is one of the twelve major keys the instrument can be tuned to.
	Key int

	// Note is one of the base notes the instrument's buttons are bound to.
	// Frequencies are given for the key of C and shifted by Table.Retune.
	Note int

	// Table holds the frequency of every Note for the current key.
	Table struct {
		key   Key
		freqs [NumNotes]float64
	}
)

const (
	C Key = iota
	Db
	D
	Eb
	E
	F
	Gb
	G
	Ab
	A
	Bb
	B

	NumKeys = 12
)

const (
	G3 Note = iota
	A3
	B3
	C4
	D4
	E4
	F4
	G4
	A4
	B4
	C5
	D5
	E5
	F5

	NumNotes = 14
)

var keyNames = [NumKeys]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Semitone shift applied to the C table to reach each key. Keys past Gb go
// down instead of up so pitches stay within an octave of the C table.
var keyShifts = [NumKeys]int{0, 1, 2, 3, 4, 5, 6, -5, -4, -3, -2, -1}

var notes = [NumNotes]struct {
	name string
	midi int
	hz   float64
}{
	{"G3", 55, 196.00},
	{"A3", 57, 220.00},
	{"B3", 59, 246.94},
	{"C4", 60, 261.63},
	{"D4", 62, 293.66},
	{"E4", 64, 329.63},
	{"F4", 65, 349.23},
	{"G4", 67, 392.00},
	{"A4", 69, 440.00},
	{"B4", 71, 493.88},
	{"C5", 72, 523.25},
	{"D5", 74, 587.33},
	{"E5", 76, 659.25},
	{"F5", 77, 698.46},
}

func (k Key) String() string {
	if k < 0 || k >= NumKeys {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Shift returns the number of semitones between C and k.
func (k Key) Shift() int {
	return keyShifts[k]
}

// Next returns the following key, wrapping from B to C.
func (k Key) Next() Key {
	return (k + 1) % NumKeys
}

// Prev returns the preceding key, wrapping from C to B.
func (k Key) Prev() Key {
	return (k + NumKeys - 1) % NumKeys
}

// ParseKey looks up a key by name, ex: "Eb". Matching ignores case.
func ParseKey(s string) (Key, error) {
	for i, name := range keyNames {
		if strings.EqualFold(name, s) {
			return Key(i), nil
		}
	}
	return C, fmt.Errorf("unknown key: %q", s)
}

func (n Note) String() string {
	if n < 0 || n >= NumNotes {
		return fmt.Sprintf("Note(%d)", int(n))
	}
	return notes[n].name
}

// MIDI returns the note number in the C4=60 convention.
func (n Note) MIDI() int {
	return notes[n].midi
}

// ParseNote looks up a note by name, ex: "C4".
func ParseNote(s string) (Note, error) {
	for i, n := range notes {
		if strings.EqualFold(n.name, s) {
			return Note(i), nil
		}
	}
	return C4, fmt.Errorf("unknown note: %q", s)
}

// BaseFrequency returns the frequency of n in the key of C.
func BaseFrequency(n Note) float64 {
	return notes[n].hz
}

// Transpose shifts hz by the given number of equal-tempered semitones.
func Transpose(hz float64, semitones int) float64 {
	return hz * math.Pow(2, float64(semitones)/12)
}

// EqualTempered returns the A440 equal-tempered frequency of a MIDI note.
func EqualTempered(midi int) float64 {
	return 440 * math.Pow(2, float64(midi-69)/12)
}

// MIDINumber returns the nearest MIDI note number to hz.
func MIDINumber(hz float64) int {
	return int(math.Round(69 + 12*math.Log2(hz/440)))
}

func NewTable(k Key) *Table {
	t := &Table{}
	t.Retune(k)
	return t
}

// Retune recomputes every note's frequency for key k.
func (t *Table) Retune(k Key) {
	t.key = k
	shift := k.Shift()
	for i := range t.freqs {
		t.freqs[i] = Transpose(notes[i].hz, shift)
	}
}

func (t *Table) Key() Key {
	return t.key
}

func (t *Table) Frequency(n Note) float64 {
	return t.freqs[n]
}

// MIDI returns the note number n sounds at in the table's key.
func (t *Table) MIDI(n Note) int {
	return n.MIDI() + t.key.Shift()
}
