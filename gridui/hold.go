package gridui

import (
	"sort"
	"time"

	"github.com/rapidmidiex/solfege/vpiano"
)

// Terminals report key presses but never key releases. A key counts as held
// while its auto-repeat keeps arriving: it is released once no event has
// been seen for the initial delay after the first press, or for the repeat
// interval once repeats have started.
type (
	holds struct {
		initial time.Duration
		repeat  time.Duration
		keys    map[vpiano.LogicalKey]hold
	}

	hold struct {
		last     time.Time
		repeated bool
	}
)

func newHolds(initial, repeat time.Duration) *holds {
	return &holds{
		initial: initial,
		repeat:  repeat,
		keys:    make(map[vpiano.LogicalKey]hold),
	}
}

// touch records an event for k and reports whether it is a new press.
func (h *holds) touch(k vpiano.LogicalKey, now time.Time) bool {
	_, held := h.keys[k]
	h.keys[k] = hold{last: now, repeated: held}
	return !held
}

// expired forgets and returns the keys whose timeout has passed, sorted.
func (h *holds) expired(now time.Time) []vpiano.LogicalKey {
	var out []vpiano.LogicalKey
	for k, v := range h.keys {
		timeout := h.initial
		if v.repeated {
			timeout = h.repeat
		}
		if now.Sub(v.last) > timeout {
			out = append(out, k)
			delete(h.keys, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (h *holds) held(k vpiano.LogicalKey) bool {
	_, ok := h.keys[k]
	return ok
}

func (h *holds) clear() {
	for k := range h.keys {
		delete(h.keys, k)
	}
}
