// Package vpiano describes the instrument's buttons: which solfège degree
// and note each one plays, and which keys trigger it.
package vpiano

import (
	"github.com/rapidmidiex/solfege/tuning"
)

type (
	// LogicalKey identifies one input that can play a note: a qwerty key
	// like "j", or a button's pointer target like "pointer:Do".
	LogicalKey string

	// Degree is a solfège scale degree.
	Degree int

	// Register places a button's degree within the instrument's range.
	Register int

	Button struct {
		// Solfège degree the button sounds.
		Degree Degree
		// Position of the button in the instrument's range.
		Register Register
		// Note played in the key of C.
		Note tuning.Note
		// qwerty keyboard key bindings. The first one is shown on the button.
		Keys []LogicalKey
	}

	// Binding is what a LogicalKey plays.
	Binding struct {
		Note tuning.Note
		// Display name of the button, ex: "Do".
		Name string
		// Index of the button in the layout.
		Button int
	}

	Layout []Button

	BindingMap map[LogicalKey]Binding
)

const (
	Do Degree = iota
	Re
	Mi
	Fa
	So
	La
	Ti

	NumDegrees = 7
)

const (
	Low Register = iota
	Mid
	High
	Higher
	Highest
)

var degreeNames = [NumDegrees]string{"Do", "Re", "Mi", "Fa", "So", "La", "Ti"}

var registerNames = [...]string{"low", "mid", "high", "higher", "highest"}

func (d Degree) String() string {
	return degreeNames[d]
}

func (r Register) String() string {
	return registerNames[r]
}

// DefaultLayout is the fourteen button instrument, lowest note first. Home
// row keys play the middle register on both hands.
var DefaultLayout = Layout{
	{Degree: So, Register: Low, Note: tuning.G3, Keys: []LogicalKey{"z", "m"}},
	{Degree: La, Register: Low, Note: tuning.A3, Keys: []LogicalKey{"x", ","}},
	{Degree: Ti, Register: Low, Note: tuning.B3, Keys: []LogicalKey{"c", ".", "h"}},
	{Degree: Do, Register: Mid, Note: tuning.C4, Keys: []LogicalKey{"a", "j", "/"}},
	{Degree: Re, Register: Mid, Note: tuning.D4, Keys: []LogicalKey{"s", "k"}},
	{Degree: Mi, Register: Mid, Note: tuning.E4, Keys: []LogicalKey{"d", "l"}},
	{Degree: Fa, Register: Mid, Note: tuning.F4, Keys: []LogicalKey{"f", ";", "y"}},
	{Degree: So, Register: High, Note: tuning.G4, Keys: []LogicalKey{"q", "u"}},
	{Degree: La, Register: High, Note: tuning.A4, Keys: []LogicalKey{"w", "i"}},
	{Degree: Ti, Register: High, Note: tuning.B4, Keys: []LogicalKey{"e", "o", "6"}},
	{Degree: Do, Register: Higher, Note: tuning.C5, Keys: []LogicalKey{"1", "7", "p"}},
	{Degree: Re, Register: Higher, Note: tuning.D5, Keys: []LogicalKey{"2", "8"}},
	{Degree: Mi, Register: Higher, Note: tuning.E5, Keys: []LogicalKey{"3", "9"}},
	{Degree: Fa, Register: Highest, Note: tuning.F5, Keys: []LogicalKey{"0"}},
}

// PointerKey is the LogicalKey a pointer press on button i plays as. It is
// distinct from the button's qwerty keys so a click and a key press on the
// same button are held independently.
func (l Layout) PointerKey(i int) LogicalKey {
	return LogicalKey("pointer:" + l[i].Name())
}

// Name returns the position qualified name, ex: "mid Do".
func (b Button) Name() string {
	return b.Register.String() + " " + b.Degree.String()
}

// ToBindingMap maps every qwerty key and the pointer key of each button to
// what it plays.
func (l Layout) ToBindingMap() BindingMap {
	m := make(BindingMap, 0)
	for i, b := range l {
		binding := Binding{Note: b.Note, Name: b.Degree.String(), Button: i}
		for _, k := range b.Keys {
			m[k] = binding
		}
		m[l.PointerKey(i)] = binding
	}
	return m
}
