// Package engine turns key presses, releases and accidental changes into
// started and stopped voices.
package engine

import (
	"io"
	"log"

	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/synth"
	"github.com/rapidmidiex/solfege/tuning"
	"github.com/rapidmidiex/solfege/vpiano"
)

const DefaultVolume = .4

type (
	// Listener is told when voices start and stop, and when the resolved
	// accidental changes. Calls happen synchronously inside the Engine
	// method that caused them.
	Listener interface {
		VoiceStarted(id Identity, freq float64)
		VoiceStopped(id Identity)
		OffsetChanged(o accidental.Offset)
	}

	Options struct {
		Backend  Backend
		Bindings vpiano.BindingMap
		Key      tuning.Key
		Timbre   synth.Timbre
		// Master volume in [0, 1]. Zero means DefaultVolume.
		Volume float64
		Logger *log.Logger
	}

	// Engine is one instrument session. It is not safe for concurrent use;
	// drive it from a single event loop.
	Engine struct {
		bindings  vpiano.BindingMap
		table     *tuning.Table
		mods      *accidental.State
		registry  *Registry
		held      []vpiano.LogicalKey
		timbre    synth.Timbre
		volume    float64
		listeners []Listener
		log       *log.Logger
	}
)

func New(o Options) *Engine {
	if o.Volume == 0 {
		o.Volume = DefaultVolume
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	if o.Bindings == nil {
		o.Bindings = vpiano.DefaultLayout.ToBindingMap()
	}

	e := &Engine{
		bindings: o.Bindings,
		table:    tuning.NewTable(o.Key),
		mods:     accidental.NewState(),
		registry: NewRegistry(o.Backend),
		timbre:   o.Timbre,
		volume:   clamp(o.Volume),
		log:      o.Logger,
	}
	e.mods.OnChange(e.offsetChanged)
	return e
}

func (e *Engine) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Modifiers returns the accidental state. Changing it retriggers every held
// key at the new offset.
func (e *Engine) Modifiers() *accidental.State {
	return e.mods
}

func (e *Engine) Offset() accidental.Offset {
	return e.mods.Offset()
}

// Press starts key at the current offset. Unknown keys and keys already
// held are ignored.
func (e *Engine) Press(key vpiano.LogicalKey) {
	if _, ok := e.bindings[key]; !ok {
		e.log.Printf("press %q: no binding", key)
		return
	}
	if e.IsHeld(key) {
		return
	}
	e.held = append(e.held, key)
	e.sound(key)
}

// Release stops every voice key may have, at any offset.
func (e *Engine) Release(key vpiano.LogicalKey) {
	for i, k := range e.held {
		if k == key {
			e.held = append(e.held[:i], e.held[i+1:]...)
			break
		}
	}
	e.silence(key)
}

// RetriggerAll restarts every held key at the current offset.
func (e *Engine) RetriggerAll() {
	for _, key := range e.held {
		e.silence(key)
		e.sound(key)
	}
}

// StopAll releases every held key and clears both accidental channels.
// Use it whenever input may stop arriving: focus loss, a pointer released
// outside the instrument.
func (e *Engine) StopAll() {
	held := e.held
	e.held = nil
	for _, key := range held {
		e.silence(key)
	}
	for _, id := range e.registry.StopAll() {
		e.stopped(id)
	}
	e.mods.Clear()
}

// Held returns the held keys in the order they were pressed.
func (e *Engine) Held() []vpiano.LogicalKey {
	return append([]vpiano.LogicalKey(nil), e.held...)
}

func (e *Engine) IsHeld(key vpiano.LogicalKey) bool {
	for _, k := range e.held {
		if k == key {
			return true
		}
	}
	return false
}

// Sounding returns the identities with a live voice.
func (e *Engine) Sounding() []Identity {
	return e.registry.Identities()
}

// Registry exposes the voice registry for inspection.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// SetTimbre changes the timbre of voices started from now on.
func (e *Engine) SetTimbre(t synth.Timbre) { e.timbre = t }
func (e *Engine) Timbre() synth.Timbre     { return e.timbre }

// SetKey retunes the instrument. Held voices keep their pitch until they
// are retriggered.
func (e *Engine) SetKey(k tuning.Key) { e.table.Retune(k) }
func (e *Engine) Key() tuning.Key     { return e.table.Key() }

// SetVolume sets the master volume for voices started from now on. It is
// clamped to [0, 1].
func (e *Engine) SetVolume(v float64) { e.volume = clamp(v) }
func (e *Engine) Volume() float64     { return e.volume }

// Frequency returns the pitch key would sound at right now.
func (e *Engine) Frequency(key vpiano.LogicalKey) (float64, bool) {
	b, ok := e.bindings[key]
	if !ok {
		return 0, false
	}
	return tuning.Transpose(e.table.Frequency(b.Note), int(e.mods.Offset())), true
}

// MIDI returns the note number key would sound at right now.
func (e *Engine) MIDI(key vpiano.LogicalKey) (int, bool) {
	b, ok := e.bindings[key]
	if !ok {
		return 0, false
	}
	return e.table.MIDI(b.Note) + int(e.mods.Offset()), true
}

func (e *Engine) sound(key vpiano.LogicalKey) {
	freq, _ := e.Frequency(key)
	id := Identity{Key: key, Offset: e.mods.Offset()}
	if err := e.registry.Start(id, freq, e.timbre, e.volume); err != nil {
		e.log.Printf("press %q: %v", key, err)
		return
	}
	for _, l := range e.listeners {
		l.VoiceStarted(id, freq)
	}
}

func (e *Engine) silence(key vpiano.LogicalKey) {
	for _, o := range accidental.Offsets {
		id := Identity{Key: key, Offset: o}
		if e.registry.Stop(id) {
			e.stopped(id)
		}
	}
}

func (e *Engine) stopped(id Identity) {
	for _, l := range e.listeners {
		l.VoiceStopped(id)
	}
}

func (e *Engine) offsetChanged(o accidental.Offset) {
	for _, l := range e.listeners {
		l.OffsetChanged(o)
	}
	e.RetriggerAll()
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
