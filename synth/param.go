package synth

import (
	"math"
	"sort"
)

type (
	eventKind int

	event struct {
		kind  eventKind
		time  float64
		value float64
	}

	// Param is a value that changes over time along a schedule of set and
	// ramp events. Times are in seconds on the owning Context's clock.
	//
	// A ramp event describes the value reached at its time; the ramp starts
	// at the previous event, or at the intrinsic value if there is none.
	Param struct {
		value  float64
		events []event
	}
)

const (
	setEvent eventKind = iota
	linearEvent
	exponentialEvent
)

func NewParam(value float64) *Param {
	return &Param{value: value}
}

func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(event{setEvent, t, v})
}

func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(event{linearEvent, t, v})
}

// ExponentialRampToValueAtTime ramps geometrically to v. A ramp between
// values of different sign, or touching zero, holds the previous value
// until t and then jumps.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.insert(event{exponentialEvent, t, v})
}

// CancelScheduledValues removes every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	i := p.firstAtOrAfter(t)
	p.events = p.events[:i]
}

// ValueAt returns the scheduled value at time t.
func (p *Param) ValueAt(t float64) float64 {
	i := p.firstAfter(t)
	prevV, prevT := p.value, 0.0
	if i > 0 {
		prevV, prevT = p.events[i-1].value, p.events[i-1].time
	}
	if i == len(p.events) {
		return prevV
	}

	next := p.events[i]
	span := next.time - prevT
	if span <= 0 {
		return prevV
	}
	x := (t - prevT) / span
	switch next.kind {
	case linearEvent:
		return prevV + (next.value-prevV)*x
	case exponentialEvent:
		if prevV*next.value <= 0 {
			return prevV
		}
		return prevV * math.Pow(next.value/prevV, x)
	}
	return prevV
}

// Pending returns the number of events scheduled after t.
func (p *Param) Pending(t float64) int {
	return len(p.events) - p.firstAfter(t)
}

// Prune forgets events that can no longer affect values at or after t.
func (p *Param) Prune(t float64) {
	i := p.firstAfter(t)
	if i < 2 {
		return
	}
	p.events = append(p.events[:0], p.events[i-1:]...)
}

func (p *Param) insert(e event) {
	i := p.firstAfter(e.time)
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) firstAfter(t float64) int {
	return sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
}

func (p *Param) firstAtOrAfter(t float64) int {
	return sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
}
