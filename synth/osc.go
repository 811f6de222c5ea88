package synth

import "math"

type (
	// Waveform returns one period of a signal for phase in [0, 1).
	Waveform func(phase float64) float64

	// Oscillator is a phase accumulator over a Waveform. Its frequency may be
	// modulated by another oscillator scaled by a depth in Hz.
	Oscillator struct {
		Frequency *Param

		wave   Waveform
		mod    *Oscillator
		depth  *Param
		phase  float64
		hz     float64
		stopAt float64
	}
)

func SineWave(p float64) float64 {
	return math.Sin(2 * math.Pi * p)
}

func TriangleWave(p float64) float64 {
	switch {
	case p < .25:
		return 4 * p
	case p < .75:
		return 2 - 4*p
	default:
		return 4*p - 4
	}
}

func SquareWave(p float64) float64 {
	if p < .5 {
		return 1
	}
	return -1
}

func SawtoothWave(p float64) float64 {
	if p < .5 {
		return 2 * p
	}
	return 2*p - 2
}

// HarmonicWave builds a waveform from partial amplitudes, where amps[n] is
// the amplitude of the nth harmonic and amps[0] is ignored. The result is
// normalised so its peak does not exceed 1.
func HarmonicWave(amps []float64) Waveform {
	var norm float64
	for _, a := range amps[1:] {
		norm += math.Abs(a)
	}
	if norm == 0 {
		norm = 1
	}
	partials := append([]float64(nil), amps...)
	return func(p float64) float64 {
		var y float64
		for n := 1; n < len(partials); n++ {
			if partials[n] != 0 {
				y += partials[n] * math.Sin(2*math.Pi*float64(n)*p)
			}
		}
		return y / norm
	}
}

var voiceWave = HarmonicWave([]float64{0, 1, .15, .10, .05})

func NewOscillator(wave Waveform, hz float64) *Oscillator {
	return &Oscillator{
		Frequency: NewParam(hz),
		wave:      wave,
		stopAt:    math.Inf(1),
	}
}

// Modulate adds lfo's output, scaled by depth, to the oscillator's frequency.
func (o *Oscillator) Modulate(lfo *Oscillator, depth *Param) {
	o.mod = lfo
	o.depth = depth
}

// Stop schedules the oscillator to go silent at t. An earlier stop wins.
func (o *Oscillator) Stop(t float64) {
	o.stopAt = math.Min(o.stopAt, t)
}

func (o *Oscillator) Stopped(t float64) bool {
	return t >= o.stopAt
}

// Hz returns the frequency of the last sample, modulation included.
func (o *Oscillator) Hz() float64 {
	return o.hz
}

// Next returns the sample at time t and advances the phase by dt seconds.
func (o *Oscillator) Next(t, dt float64) float64 {
	if o.Stopped(t) {
		return 0
	}
	hz := o.Frequency.ValueAt(t)
	if o.mod != nil {
		hz += o.mod.Next(t, dt) * o.depth.ValueAt(t)
	}
	o.hz = hz
	y := o.wave(o.phase)
	_, o.phase = math.Modf(o.phase + hz*dt)
	if o.phase < 0 {
		o.phase++
	}
	return y
}
