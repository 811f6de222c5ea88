// Package synth renders the instrument's voices. A Context is the shared
// output stage: every Voice mixes into it and passes through one compressor
// on its way to the speaker.
package synth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/rapidmidiex/solfege/rmxerr"
)

var ErrContextClosed = errors.New("synth: context closed")

// Replaced in tests.
var speakerInit = speaker.Init

// Output samples kept for Pitch. A power of two.
const tapSize = 4096

// Context owns the sample clock. Control calls (StartVoice, Voice.Release,
// Voice.Halt) and rendering are serialised by one mutex, so a change made by
// a control call takes effect from the next rendered sample.
type Context struct {
	mu         sync.Mutex
	sr         beep.SampleRate
	frame      int64
	mixer      beep.Mixer
	compressor *Compressor
	closed     bool
	onSpeaker  bool

	// Ring of the latest output, left channel.
	tap    [tapSize]float64
	tapPos int
}

// NewContext returns a Context that renders only when Stream is called.
func NewContext(sr beep.SampleRate) *Context {
	return &Context{
		sr:         sr,
		compressor: NewCompressor(float64(sr)),
	}
}

// Open initialises the speaker and starts playing a new Context on it.
// The error wraps rmxerr.ErrBackendUnavailable if the audio device cannot
// be opened.
func Open(sr beep.SampleRate, bufferSize time.Duration) (*Context, error) {
	if err := speakerInit(sr, sr.N(bufferSize)); err != nil {
		return nil, fmt.Errorf("%w: speaker init: %v", rmxerr.ErrBackendUnavailable, err)
	}
	c := NewContext(sr)
	c.onSpeaker = true
	speaker.Play(c)
	return c, nil
}

func (c *Context) SampleRate() beep.SampleRate {
	return c.sr
}

// Now returns the time of the next sample to be rendered, in seconds.
func (c *Context) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / float64(c.sr)
}

// Active returns the number of voices still streaming.
func (c *Context) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mixer.Len()
}

// StartVoice builds a voice for the given timbre and starts its attack at
// the current time.
func (c *Context) StartVoice(freq float64, timbre Timbre, volume float64) (*Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	v := newVoice(c, freq, timbre, volume, c.now())
	c.mixer.Add(v)
	return v, nil
}

// Stream implements beep.Streamer. It never drains; with no voices it
// renders silence.
func (c *Context) Stream(samples [][2]float64) (n int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mixer.Stream(samples)
	for i := range samples {
		samples[i][0], samples[i][1] = c.compressor.Process(samples[i][0], samples[i][1])
		c.tap[c.tapPos] = samples[i][0]
		c.tapPos = (c.tapPos + 1) % tapSize
	}
	c.frame += int64(len(samples))
	return len(samples), true
}

// Pitch estimates the strongest frequency in the latest output.
func (c *Context) Pitch() (float64, error) {
	buf := make([]float64, tapSize)
	c.mu.Lock()
	n := copy(buf, c.tap[c.tapPos:])
	copy(buf[n:], c.tap[:c.tapPos])
	c.mu.Unlock()
	return Pitch(buf, c.sr)
}

func (c *Context) Err() error {
	return nil
}

// Close drops every voice and refuses new ones. The speaker, if the Context
// was opened on it, stops playing the Context.
func (c *Context) Close() {
	c.mu.Lock()
	c.closed = true
	c.mixer.Clear()
	onSpeaker := c.onSpeaker
	c.mu.Unlock()

	if onSpeaker {
		speaker.Clear()
	}
}
