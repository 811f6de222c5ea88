package synth

const (
	filterCutoff = 1200
	filterQ      = 1

	// Standard timbres.
	attackTime   = .015
	releaseTime  = .2
	releaseFloor = .001

	// Voice timbre.
	voiceAttackTime  = .08
	voiceDecayTime   = .18
	voicePeak        = .85
	voiceSustain     = .5
	voiceReleaseTime = .6
	voiceFloor       = .0001

	vibratoStartHz  = 1.5
	vibratoEndHz    = 5
	vibratoRampTime = 1
	vibratoDepthHz  = 2

	// Oscillators keep running this long after the release ramp ends so the
	// tail is not cut off.
	stopBuffer = .1
)

// Voice is one sounding note: an oscillator (plus vibrato LFO for the voice
// timbre) through a lowpass filter and a gain envelope. A Voice streams
// itself into its Context's mixer until its oscillator stops.
type Voice struct {
	ctx    *Context
	timbre Timbre
	freq   float64

	osc      *Oscillator
	lfo      *Oscillator
	lfoDepth *Param
	filter   *Biquad
	gain     *Param

	startedAt float64
	frame     int64
	releasing bool
}

// newVoice builds the signal chain and schedules the attack at now.
func newVoice(ctx *Context, freq float64, timbre Timbre, volume float64, now float64) *Voice {
	sr := float64(ctx.sr)
	v := &Voice{
		ctx:       ctx,
		timbre:    timbre,
		freq:      freq,
		osc:       NewOscillator(timbre.waveform(), freq),
		filter:    NewLowpass(sr, filterCutoff, filterQ),
		gain:      NewParam(0),
		startedAt: now,
		frame:     ctx.frame,
	}
	v.gain.SetValueAtTime(0, now)

	if timbre == VoiceTimbre {
		v.lfo = NewOscillator(SineWave, vibratoStartHz)
		v.lfo.Frequency.SetValueAtTime(vibratoStartHz, now)
		v.lfo.Frequency.LinearRampToValueAtTime(vibratoEndHz, now+vibratoRampTime)
		v.lfoDepth = NewParam(vibratoDepthHz)
		v.osc.Modulate(v.lfo, v.lfoDepth)

		v.gain.LinearRampToValueAtTime(volume*voicePeak, now+voiceAttackTime)
		v.gain.LinearRampToValueAtTime(volume*voiceSustain, now+voiceAttackTime+voiceDecayTime)
		return v
	}

	v.gain.LinearRampToValueAtTime(volume, now+attackTime)
	return v
}

func (v *Voice) Timbre() Timbre     { return v.timbre }
func (v *Voice) Frequency() float64 { return v.freq }
func (v *Voice) StartedAt() float64 { return v.startedAt }

func (v *Voice) Releasing() bool {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()
	return v.releasing
}

// Done reports whether the voice has stopped producing sound.
func (v *Voice) Done() bool {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()
	return v.osc.Stopped(v.ctx.now())
}

// Gain returns the envelope level at the context's current time.
func (v *Voice) Gain() float64 {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()
	return v.gain.ValueAt(v.ctx.now())
}

// Vibrato returns the LFO rate and depth in Hz at the context's current
// time. Both are zero for timbres without vibrato.
func (v *Voice) Vibrato() (rate, depth float64) {
	if v.lfo == nil {
		return 0, 0
	}
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()
	now := v.ctx.now()
	return v.lfo.Frequency.ValueAt(now), v.lfoDepth.ValueAt(now)
}

// Sounding returns the oscillator frequency of the last rendered sample,
// vibrato included.
func (v *Voice) Sounding() float64 {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()
	return v.osc.Hz()
}

// Release fades the voice out with its timbre's release envelope and
// schedules the oscillators to stop once the fade is over. Releasing twice
// is a no-op.
func (v *Voice) Release() {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()

	now := v.ctx.now()
	if v.releasing || v.osc.Stopped(now) {
		return
	}
	v.releasing = true

	level := v.gain.ValueAt(now)
	v.gain.CancelScheduledValues(now)
	v.gain.SetValueAtTime(level, now)
	if v.lfo != nil {
		rate := v.lfo.Frequency.ValueAt(now)
		v.lfo.Frequency.CancelScheduledValues(now)
		v.lfo.Frequency.SetValueAtTime(rate, now)
	}

	if v.timbre == VoiceTimbre {
		v.gain.LinearRampToValueAtTime(voiceFloor, now+voiceReleaseTime)
		v.stop(now + voiceReleaseTime + stopBuffer)
		return
	}
	v.gain.ExponentialRampToValueAtTime(releaseFloor, now+releaseTime)
	v.stop(now + releaseTime + stopBuffer)
}

// Halt silences the voice immediately, dropping every scheduled change,
// including a release already in progress.
func (v *Voice) Halt() {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()

	now := v.ctx.now()
	for _, p := range v.params() {
		p.CancelScheduledValues(now)
	}
	v.gain.SetValueAtTime(0, now)
	v.releasing = true
	v.stop(now)
}

// Pending returns the number of parameter changes still scheduled.
func (v *Voice) Pending() int {
	v.ctx.mu.Lock()
	defer v.ctx.mu.Unlock()

	now := v.ctx.now()
	n := 0
	for _, p := range v.params() {
		n += p.Pending(now)
	}
	return n
}

func (v *Voice) params() []*Param {
	ps := []*Param{v.gain, v.osc.Frequency}
	if v.lfo != nil {
		ps = append(ps, v.lfo.Frequency, v.lfoDepth)
	}
	return ps
}

func (v *Voice) stop(t float64) {
	v.osc.Stop(t)
	if v.lfo != nil {
		v.lfo.Stop(t)
	}
}

// Stream implements beep.Streamer. It is called by the Context's mixer with
// the Context lock held.
func (v *Voice) Stream(samples [][2]float64) (n int, ok bool) {
	sr := float64(v.ctx.sr)
	dt := 1 / sr
	for i := range samples {
		t := float64(v.frame) / sr
		if v.osc.Stopped(t) {
			return i, i > 0
		}
		y := v.gain.ValueAt(t) * v.filter.Filter(v.osc.Next(t, dt))
		samples[i][0] = y
		samples[i][1] = y
		v.frame++
	}
	v.gain.Prune(float64(v.frame) / sr)
	return len(samples), true
}

func (v *Voice) Err() error {
	return nil
}
