package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/diapason/internal/analysis/dcoffset"
	"github.com/farcloser/diapason/internal/types"
)

var ErrWindowTooShort = errors.New("sample window must hold at least 2 samples")

// Transform selects the FFT implementation.
type Transform int

const (
	// TransformGonum uses the real-input FFT from gonum, yielding N/2+1 coefficients.
	TransformGonum Transform = iota
	// TransformGoDSP uses the full complex FFT from go-dsp, yielding N coefficients.
	TransformGoDSP
)

func (t Transform) String() string {
	switch t {
	case TransformGonum:
		return "gonum"
	case TransformGoDSP:
		return "godsp"
	}

	return "unknown"
}

type Options struct {
	Transform Transform
}

func DefaultOptions() Options {
	return Options{
		Transform: TransformGonum,
	}
}

// Spectrum is the frequency-domain view of one window.
type Spectrum struct {
	// Coefficients holds at least the first N/2 coefficients; the gonum transform omits the
	// mirrored negative half.
	Coefficients []complex128
	// Frequencies holds the N bin centers in Hz, negative from index N/2 onward.
	Frequencies []float64
}

// Len returns N, the size of the window the spectrum was computed from.
func (s *Spectrum) Len() int {
	return len(s.Frequencies)
}

// Estimate returns the dominant frequency of samples.
// The window is centered first so a DC offset does not win bin 0.
func Estimate(samples []float64, sampleRate float64, opts Options) (*types.Detection, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrWindowTooShort, len(samples))
	}

	centered, mean := dcoffset.Remove(samples)

	spectrum := Compute(centered, sampleRate, opts.Transform)

	half := spectrum.Len() / 2
	magnitudes := Magnitudes(spectrum.Coefficients[:half])
	peak, idx := findMaximum(magnitudes)

	return &types.Detection{
		Frequency:     math.Abs(spectrum.Frequencies[idx]),
		BinIndex:      idx,
		BinWidth:      sampleRate / float64(spectrum.Len()),
		PeakMagnitude: peak,
		Mean:          mean,
		Samples:       spectrum.Len(),
	}, nil
}

// Compute transforms a window without any preprocessing.
func Compute(samples []float64, sampleRate float64, transform Transform) *Spectrum {
	var coeffs []complex128

	switch transform {
	case TransformGoDSP:
		coeffs = dspfft.FFTReal(samples)
	default:
		fft := fourier.NewFFT(len(samples))
		coeffs = fft.Coefficients(nil, samples)
	}

	return &Spectrum{
		Coefficients: coeffs,
		Frequencies:  BinFrequencies(len(samples), sampleRate),
	}
}

// BinFrequencies returns the center frequency of each of the n bins.
// The upper half of the bins represents negative frequencies, as a real input's spectrum is mirrored.
// For even n, bin n/2 is the negative Nyquist bin.
func BinFrequencies(n int, sampleRate float64) []float64 {
	freqs := make([]float64, n)
	binHz := sampleRate / float64(n)

	for i := range freqs {
		k := i
		if i >= (n+1)/2 {
			k = i - n
		}

		freqs[i] = float64(k) * binHz
	}

	return freqs
}

// Magnitudes returns the absolute value of each coefficient.
func Magnitudes(coeffs []complex128) []float64 {
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}

	return mags
}

// findMaximum returns the largest value and the first index holding it.
// A buffer of NaNs yields index 0.
func findMaximum(buf []float64) (float64, int) {
	maxVal := math.Inf(-1)
	maxIdx := 0

	for idx, value := range buf {
		if value > maxVal {
			maxVal = value
			maxIdx = idx
		}
	}

	if math.IsInf(maxVal, -1) {
		maxVal = 0
	}

	return maxVal, maxIdx
}
