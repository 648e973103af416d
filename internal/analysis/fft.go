package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of bins 0..n/2 of the Hann-windowed,
// mean-removed samples. Any length works.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n < 2 {
		return nil
	}

	var mean float64
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// BinFrequency converts a spectrum bin to Hz for n samples taken dt apart.
func BinFrequency(bin, n int, dt float64) float64 {
	return float64(bin) / (float64(n) * dt)
}

// DominantFrequency returns the strongest non-DC frequency in Hz. ok is
// false for flat or too-short signals.
func DominantFrequency(samples []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(samples)
	best, bestPower := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > bestPower {
			best, bestPower = i, ps[i]
		}
	}
	if best == 0 || bestPower < 1e-12 {
		return 0, false
	}
	return BinFrequency(best, len(samples), dt), true
}
