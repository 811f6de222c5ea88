package synth

import (
	"fmt"
	"strings"
)

// Timbre selects the signal chain a Voice is built with.
type Timbre int

const (
	Sine Timbre = iota
	Triangle
	Square
	Sawtooth
	// VoiceTimbre is the composite patch: harmonic wave, vibrato and a slower envelope.
	VoiceTimbre

	NumTimbres = 5
)

var timbreNames = [NumTimbres]string{"sine", "triangle", "square", "sawtooth", "voice"}

func (t Timbre) String() string {
	if t < 0 || t >= NumTimbres {
		return fmt.Sprintf("Timbre(%d)", int(t))
	}
	return timbreNames[t]
}

func (t Timbre) Next() Timbre {
	return (t + 1) % NumTimbres
}

func (t Timbre) Prev() Timbre {
	return (t + NumTimbres - 1) % NumTimbres
}

// ParseTimbre looks up a timbre by name, ex: "sawtooth".
func ParseTimbre(s string) (Timbre, error) {
	for i, name := range timbreNames {
		if strings.EqualFold(name, s) {
			return Timbre(i), nil
		}
	}
	return Sine, fmt.Errorf("unknown timbre: %q", s)
}

func (t Timbre) waveform() Waveform {
	switch t {
	case Sine:
		return SineWave
	case Square:
		return SquareWave
	case Sawtooth:
		return SawtoothWave
	case VoiceTimbre:
		return voiceWave
	default:
		return TriangleWave
	}
}
