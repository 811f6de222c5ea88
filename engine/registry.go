package engine

import (
	"fmt"
	"sort"

	"github.com/rapidmidiex/solfege/accidental"
	"github.com/rapidmidiex/solfege/synth"
	"github.com/rapidmidiex/solfege/vpiano"
)

type (
	// Identity names one sounding voice. The same key at two offsets is two
	// voices, so the old pitch can fade while the new one starts.
	Identity struct {
		Key    vpiano.LogicalKey
		Offset accidental.Offset
	}

	// Voice is a started sound. Release fades it out, Halt cuts it off and
	// drops anything it still had scheduled.
	Voice interface {
		Release()
		Halt()
		Done() bool
	}

	// Backend creates voices.
	Backend interface {
		StartVoice(freq float64, timbre synth.Timbre, volume float64) (Voice, error)
	}

	// Registry maps identities to voices, at most one live voice each.
	// Released voices are remembered until they finish so a new start at
	// the same identity can cut their tail.
	Registry struct {
		backend Backend
		live    map[Identity]Voice
		fading  map[Identity]Voice
	}
)

func (id Identity) String() string {
	return fmt.Sprintf("%s%+d", id.Key, int(id.Offset))
}

func NewRegistry(b Backend) *Registry {
	return &Registry{
		backend: b,
		live:    make(map[Identity]Voice),
		fading:  make(map[Identity]Voice),
	}
}

// Start begins a voice at id. Any voice already at id, live or fading, is
// halted first. If the backend fails, id is left without a voice.
func (r *Registry) Start(id Identity, freq float64, timbre synth.Timbre, volume float64) error {
	r.halt(id)
	v, err := r.backend.StartVoice(freq, timbre, volume)
	if err != nil {
		return fmt.Errorf("start %s: %w", id, err)
	}
	r.live[id] = v
	return nil
}

// Stop releases the live voice at id. It reports whether there was one.
func (r *Registry) Stop(id Identity) bool {
	v, ok := r.live[id]
	if !ok {
		return false
	}
	delete(r.live, id)
	v.Release()
	r.fading[id] = v
	r.sweep()
	return true
}

// StopAll releases every live voice.
func (r *Registry) StopAll() []Identity {
	ids := r.Identities()
	for _, id := range ids {
		r.Stop(id)
	}
	return ids
}

func (r *Registry) Live(id Identity) bool {
	_, ok := r.live[id]
	return ok
}

// Len returns the number of live voices.
func (r *Registry) Len() int {
	return len(r.live)
}

// Fading returns the number of released voices still sounding.
func (r *Registry) Fading() int {
	r.sweep()
	return len(r.fading)
}

// Identities returns the live identities in a stable order.
func (r *Registry) Identities() []Identity {
	ids := make([]Identity, 0, len(r.live))
	for id := range r.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Key != ids[j].Key {
			return ids[i].Key < ids[j].Key
		}
		return ids[i].Offset < ids[j].Offset
	})
	return ids
}

func (r *Registry) halt(id Identity) {
	if v, ok := r.live[id]; ok {
		v.Halt()
		delete(r.live, id)
	}
	if v, ok := r.fading[id]; ok {
		v.Halt()
		delete(r.fading, id)
	}
}

func (r *Registry) sweep() {
	for id, v := range r.fading {
		if v.Done() {
			delete(r.fading, id)
		}
	}
}

// SynthBackend plays voices on a synth.Context.
type SynthBackend struct {
	Ctx *synth.Context
}

func (b SynthBackend) StartVoice(freq float64, timbre synth.Timbre, volume float64) (Voice, error) {
	v, err := b.Ctx.StartVoice(freq, timbre, volume)
	if err != nil {
		return nil, err
	}
	return v, nil
}
