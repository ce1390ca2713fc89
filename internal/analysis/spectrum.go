package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Column extracts one named telemetry channel (see dynamo.StateColumns).
func Column(states []dynamo.State, name string) ([]float64, error) {
	idx := -1
	for i, c := range dynamo.StateColumns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q", dynamo.ErrUnknownComponent, name)
	}

	out := make([]float64, len(states))
	for i := range states {
		out[i] = states[i].Vector()[idx]
	}
	return out, nil
}

// PowerSpectrum returns the magnitude of bins 0..n/2 of the Hann windowed,
// mean removed signal. Any length works.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	w := window.Hann(n)
	x := make([]float64, n)
	for i, v := range data {
		x[i] = (v - mean) * w[i]
	}

	spectrum := fft.FFTReal(x)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency is the frequency in Hz of the strongest non-DC bin for
// samples spaced dt seconds apart, with that bin's magnitude.
func DominantFrequency(data []float64, dt float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(data)) * dt), ps[best]
}
