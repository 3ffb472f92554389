package features

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// spectralFeatures computes frequency-domain summaries of a magnitude series
// and writes them under the prefix's spectral keys. Callers gate on series
// length >= 4; shorter windows omit the spectral group from the schema
// entirely.
//
// The full-length complex DFT is used (not the real-input half spectrum) so
// bin indices cover 0..n-1, matching the layout the model was trained
// against.
func spectralFeatures(vec *Vector, prefix string, series []float64) {
	n := len(series)
	src := make([]complex128, n)
	for i, v := range series {
		src[i] = complex(v, 0)
	}

	fft := fourier.NewCmplxFFT(n)
	coeffs := fft.Coefficients(nil, src)

	magnitude := make([]float64, n)
	power := make([]float64, n)
	var totalPower float64
	for i, c := range coeffs {
		magnitude[i] = cmplx.Abs(c)
		power[i] = magnitude[i] * magnitude[i]
		totalPower += power[i]
	}

	if totalPower == 0 {
		// All-zero window; every spectral key keeps its 0.0 default.
		return
	}

	// Centroid: power-weighted mean bin index.
	var weighted float64
	for i, p := range power {
		weighted += p * float64(i)
	}
	centroid := weighted / totalPower
	vec.set(prefix+"_spectral_centroid", centroid)

	// Rolloff: first bin at which cumulative power reaches 85% of the total.
	target := 0.85 * totalPower
	var cum float64
	rolloff := n - 1
	for i, p := range power {
		cum += p
		if cum >= target {
			rolloff = i
			break
		}
	}
	vec.set(prefix+"_spectral_rolloff", float64(rolloff))

	// Bandwidth: power-weighted std of bin index around the centroid.
	var spread float64
	for i, p := range power {
		d := float64(i) - centroid
		spread += p * d * d
	}
	vec.set(prefix+"_spectral_bandwidth", math.Sqrt(spread/totalPower))

	// Dominant frequency: largest-magnitude bin in the first half of the
	// positive frequencies, excluding DC.
	half := n / 2
	dominant := 1
	for i := 2; i < half; i++ {
		if magnitude[i] > magnitude[dominant] {
			dominant = i
		}
	}
	if half > 1 {
		vec.set(prefix+"_dominant_frequency", float64(dominant))
	}
}
