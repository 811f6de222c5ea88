package vpiano

import (
	"strings"

	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/tuning"
)

// Letter names of each degree, per major key.
var letterNames = [tuning.NumKeys][NumDegrees]string{
	tuning.C:  {"C", "D", "E", "F", "G", "A", "B"},
	tuning.Db: {"Db", "Eb", "F", "Gb", "Ab", "Bb", "C"},
	tuning.D:  {"D", "E", "F#", "G", "A", "B", "C#"},
	tuning.Eb: {"Eb", "F", "G", "Ab", "Bb", "C", "D"},
	tuning.E:  {"E", "F#", "G#", "A", "B", "C#", "D#"},
	tuning.F:  {"F", "G", "A", "Bb", "C", "D", "E"},
	tuning.Gb: {"Gb", "Ab", "Bb", "Cb", "Db", "Eb", "F"},
	tuning.G:  {"G", "A", "B", "C", "D", "E", "F#"},
	tuning.Ab: {"Ab", "Bb", "C", "Db", "Eb", "F", "G"},
	tuning.A:  {"A", "B", "C#", "D", "E", "F#", "G#"},
	tuning.Bb: {"Bb", "C", "D", "Eb", "F", "G", "A"},
	tuning.B:  {"B", "C#", "D#", "E", "F#", "G#", "A#"},
}

// Rainbow colours of the degrees, Do through Ti, in the key of C. Other keys
// rotate the palette so a colour stays with its pitch class.
var palette = [NumDegrees]string{"#FF3B30", "#FF9500", "#FFCC00", "#34C759", "#5af5fa", "#007AFF", "#AF52DE"}

// Palette rotation per key. Enharmonic neighbours share a rotation.
var paletteShift = [tuning.NumKeys]int{0, 1, 1, 2, 2, 3, 4, 4, 5, 5, 6, 6}

// LetterName returns the note name degree d has in key k, ex: "F#".
func LetterName(k tuning.Key, d Degree) string {
	return letterNames[k][d]
}

// Spelling reports whether a letter name is sharp, flat or natural.
func Spelling(name string) accidental.Offset {
	switch {
	case strings.HasSuffix(name, "#"):
		return accidental.Sharp
	case len(name) > 1 && strings.HasSuffix(name, "b"):
		return accidental.Flat
	}
	return accidental.Natural
}

// Color returns the hex colour of degree d in key k.
func Color(k tuning.Key, d Degree) string {
	return palette[(int(d)+paletteShift[k])%NumDegrees]
}

// Label is the text shown on a button: the solfège name, or the letter name
// with the held accidental applied, ex: "F#".
func Label(k tuning.Key, d Degree, letters bool, held accidental.Offset) string {
	if !letters {
		return d.String() + held.String()
	}
	return LetterName(k, d) + held.String()
}
