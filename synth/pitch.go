package synth

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/faiface/beep"
	"github.com/ktye/fft"
)

var ErrSilent = errors.New("synth: no signal")

// Pitch estimates the strongest frequency in a mono signal sampled at sr.
// len(samples) must be a power of two.
func Pitch(samples []float64, sr beep.SampleRate) (float64, error) {
	n := len(samples)
	f, err := fft.New(n)
	if err != nil {
		return 0, fmt.Errorf("pitch: %w", err)
	}

	// Hann window
	buf := make([]complex128, n)
	for i, x := range samples {
		w := (1 - math.Cos(2*math.Pi*float64(i)/float64(n))) / 2
		buf[i] = complex(x*w, 0)
	}
	buf = f.Transform(buf)

	mag := make([]float64, n/2+1)
	peak := 1
	for i := range mag {
		mag[i] = cmplx.Abs(buf[i])
		if i > 0 && i < n/2 && mag[i] > mag[peak] {
			peak = i
		}
	}
	if mag[peak] == 0 {
		return 0, ErrSilent
	}

	// Interpolate between bins on a parabola through the log magnitudes.
	bin := float64(peak)
	if a, b, c := mag[peak-1], mag[peak], mag[peak+1]; a > 0 && c > 0 {
		la, lb, lc := math.Log(a), math.Log(b), math.Log(c)
		if den := la - 2*lb + lc; den != 0 {
			bin += .5 * (la - lc) / den
		}
	}
	return bin * float64(sr) / float64(n), nil
}
