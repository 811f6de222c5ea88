package synth

import "math"

// Compressor is a feed-forward soft-knee dynamics compressor with automatic
// makeup gain. All voices share one on the output.
type Compressor struct {
	threshold, knee, ratio float64 // dB, dB, x:1
	attack, release        float64 // smoothing coefficients per sample
	makeup                 float64 // dB
	reduction              float64 // smoothed gain reduction, dB
}

const silenceDB = -180

func NewCompressor(sampleRate float64) *Compressor {
	c := &Compressor{
		threshold: -24,
		knee:      30,
		ratio:     12,
		attack:    math.Exp(-1 / (.003 * sampleRate)),
		release:   math.Exp(-1 / (.25 * sampleRate)),
	}
	c.makeup = .6 * c.curve(0)
	return c
}

// curve returns the static gain reduction in dB for an input level in dB.
func (c *Compressor) curve(level float64) float64 {
	over := level - c.threshold
	switch {
	case 2*over < -c.knee:
		return 0
	case 2*math.Abs(over) <= c.knee:
		x := over + c.knee/2
		return (1 - 1/c.ratio) * x * x / (2 * c.knee)
	default:
		return over - over/c.ratio
	}
}

// Process compresses one stereo frame.
func (c *Compressor) Process(l, r float64) (float64, float64) {
	var level float64 = silenceDB
	if peak := math.Max(math.Abs(l), math.Abs(r)); peak > 1e-9 {
		level = 20 * math.Log10(peak)
	}
	target := c.curve(level)
	coef := c.release
	if target > c.reduction {
		coef = c.attack
	}
	c.reduction = coef*c.reduction + (1-coef)*target
	gain := math.Pow(10, (c.makeup-c.reduction)/20)
	return l * gain, r * gain
}
