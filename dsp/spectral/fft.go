// Package spectral provides the frame-level spectral analysis used to
// build classifier feature tensors: FFT, STFT, mel filtering, MFCC,
// spectral centroid and spectral contrast.
package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT computes Fast Fourier Transforms via mjibson/go-dsp, which
// handles non-power-of-2 sizes.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute transforms a real signal into its complex spectrum.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}
