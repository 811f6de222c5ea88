package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/engine"
	"github.com/rapidmidiex/solfege/synth"
	"github.com/rapidmidiex/solfege/tuning"
	"github.com/stretchr/testify/require"
)

type (
	fakeVoice struct {
		freq     float64
		timbre   synth.Timbre
		released bool
		halted   bool
	}

	fakeBackend struct {
		voices []*fakeVoice
		fail   bool
	}

	event struct {
		kind string
		id   engine.Identity
		freq float64
	}

	recorder struct {
		events  []event
		offsets []accidental.Offset
	}
)

func (v *fakeVoice) Release()   { v.released = true }
func (v *fakeVoice) Halt()      { v.halted = true }
func (v *fakeVoice) Done() bool { return v.halted }

func (b *fakeBackend) StartVoice(freq float64, timbre synth.Timbre, volume float64) (engine.Voice, error) {
	if b.fail {
		return nil, errors.New("no device")
	}
	v := &fakeVoice{freq: freq, timbre: timbre}
	b.voices = append(b.voices, v)
	return v, nil
}

// live returns the voices neither released nor halted.
func (b *fakeBackend) live() []*fakeVoice {
	var vs []*fakeVoice
	for _, v := range b.voices {
		if !v.released && !v.halted {
			vs = append(vs, v)
		}
	}
	return vs
}

func (r *recorder) VoiceStarted(id engine.Identity, freq float64) {
	r.events = append(r.events, event{"start", id, freq})
}

func (r *recorder) VoiceStopped(id engine.Identity) {
	r.events = append(r.events, event{"stop", id, 0})
}

func (r *recorder) OffsetChanged(o accidental.Offset) {
	r.offsets = append(r.offsets, o)
}

func newEngine(t *testing.T) (*engine.Engine, *fakeBackend, *recorder) {
	t.Helper()
	b := &fakeBackend{}
	r := &recorder{}
	e := engine.New(engine.Options{Backend: b, Key: tuning.C, Timbre: synth.Triangle})
	e.AddListener(r)
	return e, b, r
}

func TestPressRelease(t *testing.T) {
	t.Run("ignores keys without a binding", func(t *testing.T) {
		e, b, r := newEngine(t)
		e.Press("=")
		e.Release("=")
		require.Empty(t, b.voices)
		require.Empty(t, r.events)
		require.Empty(t, e.Held())
	})

	t.Run("plays C4 at its base frequency", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.Press("a")
		require.Len(t, b.voices, 1)
		require.InDelta(t, 261.63, b.voices[0].freq, 1e-9)
		require.Equal(t, synth.Triangle, b.voices[0].timbre)
		require.Equal(t, []engine.Identity{{Key: "a", Offset: accidental.Natural}}, e.Sounding())
	})

	t.Run("repeat presses are no-ops", func(t *testing.T) {
		e, b, _ := newEngine(t)
		for i := 0; i < 5; i++ {
			e.Press("a")
			require.LessOrEqual(t, e.Registry().Len(), 1)
		}
		require.Len(t, b.voices, 1)
		require.Equal(t, 1, len(e.Held()))

		e.Release("a")
		require.Empty(t, b.live())
		require.Zero(t, e.Registry().Len())
		require.False(t, e.IsHeld("a"))
	})

	t.Run("aliases are independent keys", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.Press("a")
		e.Press("j")
		require.Len(t, b.live(), 2)

		e.Release("a")
		require.Len(t, b.live(), 1)
		require.True(t, e.IsHeld("j"))
	})

	t.Run("press after release starts a fresh voice", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.Press("a")
		e.Release("a")
		e.Press("a")
		require.Len(t, b.voices, 2)
		require.True(t, b.voices[0].released)
		require.True(t, b.voices[0].halted, "fading tail at the same identity is cut")
		require.Len(t, b.live(), 1)
	})

	t.Run("failed start leaves no registry entry", func(t *testing.T) {
		e, b, r := newEngine(t)
		b.fail = true
		e.Press("a")
		require.True(t, e.IsHeld("a"))
		require.Zero(t, e.Registry().Len())
		require.Empty(t, r.events)

		b.fail = false
		e.Release("a")
		require.Empty(t, r.events)
	})
}

func TestRetrigger(t *testing.T) {
	t.Run("sharp retriggers a held note a semitone up", func(t *testing.T) {
		e, b, r := newEngine(t)
		e.Press("a")

		e.Modifiers().SetKeyboardSharp(true)
		require.Len(t, b.voices, 2)
		require.True(t, b.voices[0].released)
		require.InDelta(t, 277.18, b.voices[1].freq, .01)
		require.Equal(t, []engine.Identity{{Key: "a", Offset: accidental.Sharp}}, e.Sounding())
		require.Equal(t, []accidental.Offset{accidental.Sharp}, r.offsets)

		e.Release("a")
		require.Empty(t, b.live())
		require.Equal(t, []event{
			{"start", engine.Identity{Key: "a", Offset: accidental.Natural}, b.voices[0].freq},
			{"stop", engine.Identity{Key: "a", Offset: accidental.Natural}, 0},
			{"start", engine.Identity{Key: "a", Offset: accidental.Sharp}, b.voices[1].freq},
			{"stop", engine.Identity{Key: "a", Offset: accidental.Sharp}, 0},
		}, r.events)
	})

	t.Run("stops the old voice before starting the new one", func(t *testing.T) {
		e, _, r := newEngine(t)
		e.Press("s")
		r.events = nil

		e.Modifiers().SetPointerFlat(true)
		require.Len(t, r.events, 2)
		require.Equal(t, "stop", r.events[0].kind)
		require.Equal(t, "start", r.events[1].kind)
		require.Equal(t, accidental.Flat, r.events[1].id.Offset)
	})

	t.Run("keeps held membership", func(t *testing.T) {
		e, _, _ := newEngine(t)
		e.Press("a")
		e.Press("s")
		e.Press("d")

		e.Modifiers().SetKeyboardFlat(true)
		require.ElementsMatch(t, []string{"a", "s", "d"}, keysOf(e))
		for _, id := range e.Sounding() {
			require.Equal(t, accidental.Flat, id.Offset)
		}
	})

	t.Run("sharp and flat together cancel", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.Press("a")
		e.Modifiers().SetKeyboardSharp(true)
		e.Modifiers().SetPointerFlat(true)
		require.Equal(t, accidental.Sharp, e.Offset())

		e.Modifiers().SetPointerSharp(true)
		require.Equal(t, accidental.Natural, e.Offset())
		last := b.voices[len(b.voices)-1]
		require.InDelta(t, 261.63, last.freq, 1e-9)
		require.Len(t, b.live(), 1)
	})

	t.Run("no held keys means no voices", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.Modifiers().SetKeyboardSharp(true)
		require.Empty(t, b.voices)
	})
}

func TestStopAll(t *testing.T) {
	e, b, r := newEngine(t)
	e.Press("a")
	e.Press("s")
	e.Press("d")
	e.Modifiers().SetKeyboardSharp(true)
	e.Modifiers().SetPointerFlat(true)
	require.Len(t, b.live(), 3)

	r.offsets = nil
	e.StopAll()
	require.Empty(t, b.live())
	require.Empty(t, e.Held())
	require.Zero(t, e.Registry().Len())
	require.Equal(t, accidental.Channel{}, e.Modifiers().Keyboard())
	require.Equal(t, accidental.Channel{}, e.Modifiers().Pointer())
	require.Equal(t, []accidental.Offset{accidental.Natural}, r.offsets)
	require.Len(t, b.voices, 9, "clearing modifiers with nothing held starts nothing")
}

func TestSettings(t *testing.T) {
	t.Run("key D transposes C4 onto D4", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.SetKey(tuning.D)
		e.Press("a")
		require.InDelta(t, 293.66, b.voices[0].freq, .02)

		midi, ok := e.MIDI("a")
		require.True(t, ok)
		require.Equal(t, 62, midi)
	})

	t.Run("timbre applies to the next voice", func(t *testing.T) {
		e, b, _ := newEngine(t)
		e.Press("a")
		e.SetTimbre(synth.VoiceTimbre)
		e.Press("s")
		require.Equal(t, synth.Triangle, b.voices[0].timbre)
		require.Equal(t, synth.VoiceTimbre, b.voices[1].timbre)
	})

	t.Run("volume is clamped", func(t *testing.T) {
		e, _, _ := newEngine(t)
		require.Equal(t, engine.DefaultVolume, e.Volume())
		e.SetVolume(1.5)
		require.Equal(t, 1.0, e.Volume())
		e.SetVolume(-1)
		require.Equal(t, 0.0, e.Volume())
	})
}

// The engine driving a real synth context, rendered offline.
func TestSynthBackend(t *testing.T) {
	sr := beep.SampleRate(44100)
	ctx := synth.NewContext(sr)
	e := engine.New(engine.Options{Backend: engine.SynthBackend{Ctx: ctx}})

	e.Press("a")
	e.Press("a")
	require.Equal(t, 1, ctx.Active())

	e.Modifiers().SetKeyboardSharp(true)
	require.Equal(t, 2, ctx.Active(), "old pitch fades while the new one sounds")

	e.Release("a")
	ctx.Stream(make([][2]float64, sr.N(400*time.Millisecond)))
	require.Zero(t, ctx.Active())
	require.Zero(t, e.Registry().Fading())
}

func TestSynthBackendReleaseTimbre(t *testing.T) {
	sr := beep.SampleRate(44100)
	ctx := synth.NewContext(sr)
	e := engine.New(engine.Options{Backend: engine.SynthBackend{Ctx: ctx}, Timbre: synth.VoiceTimbre})

	e.Press("a")
	ctx.Stream(make([][2]float64, sr.N(100*time.Millisecond)))

	// Switching timbre while held does not change how the voice fades.
	e.SetTimbre(synth.Sine)
	e.Release("a")
	ctx.Stream(make([][2]float64, sr.N(350*time.Millisecond)))
	require.Equal(t, 1, ctx.Active(), "the 600ms release is still running")
	require.Equal(t, 1, e.Registry().Fading())

	ctx.Stream(make([][2]float64, sr.N(400*time.Millisecond)))
	require.Zero(t, ctx.Active())
}

func TestSynthBackendPitch(t *testing.T) {
	sr := beep.SampleRate(44100)
	ctx := synth.NewContext(sr)
	e := engine.New(engine.Options{Backend: engine.SynthBackend{Ctx: ctx}, Key: tuning.D})

	e.Modifiers().SetKeyboardSharp(true)
	e.Press("a")
	ctx.Stream(make([][2]float64, sr.N(50*time.Millisecond)))

	buf := make([][2]float64, 8192)
	ctx.Stream(buf)
	mono := make([]float64, len(buf))
	for i, f := range buf {
		mono[i] = f[0]
	}
	hz, err := synth.Pitch(mono, sr)
	require.NoError(t, err)
	// D major, Do sharp: D#4
	require.InDelta(t, 311.13, hz, 1)
}

func keysOf(e *engine.Engine) []string {
	var ks []string
	for _, k := range e.Held() {
		ks = append(ks, string(k))
	}
	return ks
}
