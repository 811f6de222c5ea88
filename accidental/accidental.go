// Package accidental tracks the sharp and flat modifiers and resolves them
// to a semitone offset.
package accidental

type (
	// Offset is the semitone shift applied to a note: Flat, Natural or Sharp.
	Offset int

	// Channel is one input source's view of the accidental modifiers.
	Channel struct {
		Sharp bool
		Flat  bool
	}

	// State holds the keyboard and pointer channels. Every change to a flag
	// is reported to the OnChange callback before the setter returns.
	State struct {
		keyboard Channel
		pointer  Channel
		onChange func(Offset)
	}
)

const (
	Flat    Offset = -1
	Natural Offset = 0
	Sharp   Offset = 1
)

// Offsets lists every offset a voice can be started with.
var Offsets = [3]Offset{Flat, Natural, Sharp}

func (o Offset) String() string {
	switch o {
	case Sharp:
		return "♯"
	case Flat:
		return "♭"
	default:
		return ""
	}
}

func (c Channel) both() bool { return c.Sharp && c.Flat }

// Resolve combines both channels into one offset. Sharp and flat held
// together on either channel cancel out; otherwise sharp wins over flat.
func Resolve(keyboard, pointer Channel) Offset {
	switch {
	case keyboard.both() || pointer.both():
		return Natural
	case keyboard.Sharp || pointer.Sharp:
		return Sharp
	case keyboard.Flat || pointer.Flat:
		return Flat
	}
	return Natural
}

func NewState() *State {
	return &State{}
}

// OnChange registers the function called after any flag changes.
func (s *State) OnChange(fn func(Offset)) {
	s.onChange = fn
}

func (s *State) Offset() Offset {
	return Resolve(s.keyboard, s.pointer)
}

func (s *State) Keyboard() Channel { return s.keyboard }
func (s *State) Pointer() Channel  { return s.pointer }

func (s *State) SetKeyboardSharp(v bool) { s.set(&s.keyboard.Sharp, v) }
func (s *State) SetKeyboardFlat(v bool)  { s.set(&s.keyboard.Flat, v) }
func (s *State) SetPointerSharp(v bool)  { s.set(&s.pointer.Sharp, v) }
func (s *State) SetPointerFlat(v bool)   { s.set(&s.pointer.Flat, v) }

// Clear releases every modifier on both channels, notifying at most once.
func (s *State) Clear() {
	if s.keyboard == (Channel{}) && s.pointer == (Channel{}) {
		return
	}
	s.keyboard = Channel{}
	s.pointer = Channel{}
	s.notify()
}

func (s *State) set(flag *bool, v bool) {
	if *flag == v {
		return
	}
	*flag = v
	s.notify()
}

func (s *State) notify() {
	if s.onChange != nil {
		s.onChange(s.Offset())
	}
}
