package speaker

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Band edges in Hz.
const (
	bassCutoff = 430.0
	midCutoff  = 3960.0
	highCutoff = 19800.0

	// levelSmoothing is how much of the previous level survives a buffer.
	levelSmoothing = 0.9
)

// Levels is the loudness of the output in three bands, each in [0, 1].
type Levels struct {
	Bass, Mid, High float64
}

// Bands measures samples with a Hann-windowed FFT. A full-scale sine lands
// at 1 in its band.
func Bands(samples []float32, sampleRate float64) Levels {
	n := len(samples)
	if n < 2 {
		return Levels{}
	}
	buf := make([]complex128, n)
	for i, v := range samples {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		buf[i] = complex(float64(v)*window, 0)
	}
	spectrum := fft.FFT(buf)

	var bass, mid, high float64
	binHz := sampleRate / float64(n)
	for i := 1; i < n/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		switch f := float64(i) * binHz; {
		case f < bassCutoff:
			bass += mag
		case f < midCutoff:
			mid += mag
		case f < highCutoff:
			high += mag
		}
	}

	// A Hann-windowed sine of amplitude A peaks near A*n/4 and leaks into
	// its neighbours at half that.
	scale := 2.0 / float64(n)
	return Levels{
		Bass: math.Min(bass*scale, 1),
		Mid:  math.Min(mid*scale, 1),
		High: math.Min(high*scale, 1),
	}
}

func (l Levels) smooth(next Levels) Levels {
	k := levelSmoothing
	return Levels{
		Bass: l.Bass*k + next.Bass*(1-k),
		Mid:  l.Mid*k + next.Mid*(1-k),
		High: l.High*k + next.High*(1-k),
	}
}
