// Package rtt contains tools for calculating stats on message roundtrip times.
package rtt

import (
	"math"
	"time"
)

type (
	CalcMsg struct {
		Latest time.Duration
		Avg    time.Duration
		Min    time.Duration
		Max    time.Duration
	}

	// Window keeps the most recent roundtrip times.
	Window struct {
		size  int
		times []time.Duration
	}
)

func NewWindow(size int) *Window {
	return &Window{size: size}
}

// Add records a roundtrip time and returns the stats over the window.
func (w *Window) Add(d time.Duration) CalcMsg {
	w.times = append(w.times, d)
	if len(w.times) > w.size {
		w.times = w.times[len(w.times)-w.size:]
	}
	return Calc(d, w.times)
}

func (w *Window) Len() int {
	return len(w.times)
}

// Calc summarises prev, reporting latest as the most recent time. The
// average is rounded to the millisecond.
func Calc(latest time.Duration, prev []time.Duration) CalcMsg {
	roundedAvg := math.Round(float64(Avg(prev)/time.Millisecond)) * float64(time.Millisecond)
	return CalcMsg{
		Latest: latest,
		Avg:    time.Duration(roundedAvg),
		Max:    Max(prev),
		Min:    Min(prev),
	}
}

func Min(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	min := math.Inf(1)
	for _, t := range times {
		min = math.Min(min, float64(t))
	}
	return time.Duration(min)
}

func Max(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	max := math.Inf(-1)
	for _, t := range times {
		max = math.Max(max, float64(t))
	}
	return time.Duration(max)
}

func Avg(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	sum := time.Duration(0)
	for _, t := range times {
		sum = sum + t
	}
	return sum / time.Duration(len(times))
}
