// Package chroma folds magnitude spectrograms into 12 pitch-class
// energy bins (C through B, octave-folded).
package chroma

import (
	"math"

	"github.com/RyanBlaney/genrebench/dsp/spectral"
)

// Chroma converts magnitude spectrograms into chromagrams. Frequencies
// map to semitone bins relative to the tuning reference (A4), and each
// frame is normalized to unit energy sum.
type Chroma struct {
	tuningFreq float64
	bins       int
	minFreq    float64
	maxFreq    float64
}

// NewChroma creates a chromagram calculator with standard A4=440Hz
// tuning.
func NewChroma() *Chroma {
	return &Chroma{
		tuningFreq: 440.0,
		bins:       12,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// Bins returns the number of chroma bins per frame.
func (c *Chroma) Bins() int {
	return c.bins
}

// FromSpectrogram folds an STFT magnitude spectrogram into a
// time x 12 chromagram.
func (c *Chroma) FromSpectrogram(spec *spectral.Spectrogram) [][]float64 {
	if spec == nil || spec.TimeFrames == 0 {
		return [][]float64{}
	}

	chromagram := make([][]float64, spec.TimeFrames)

	mapping := c.binMapping(spec.FreqBins, spec.FreqResolution)

	for t := 0; t < spec.TimeFrames; t++ {
		chromagram[t] = make([]float64, c.bins)

		for f := 0; f < spec.FreqBins; f++ {
			chromaBin := mapping[f]
			if chromaBin < 0 {
				continue
			}

			// Energy, not magnitude
			magnitude := spec.Magnitude[t][f]
			chromagram[t][chromaBin] += magnitude * magnitude
		}

		normalizeFrame(chromagram[t])
	}

	return chromagram
}

// binMapping maps FFT bins to chroma bins; -1 marks bins outside the
// usable frequency range.
func (c *Chroma) binMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := 0; f < freqBins; f++ {
		frequency := float64(f) * freqResolution

		if frequency < c.minFreq || frequency > c.maxFreq {
			mapping[f] = -1
			continue
		}

		midiNote := c.frequencyToMIDI(frequency)

		bin := int(math.Round(midiNote)) % c.bins
		if bin < 0 {
			bin += c.bins
		}
		mapping[f] = bin
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number; A4 (440 Hz)
// is note 69.
func (c *Chroma) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}

	return 69.0 + 12.0*math.Log2(frequency/c.tuningFreq)
}

func normalizeFrame(chromaFrame []float64) {
	totalEnergy := 0.0
	for _, energy := range chromaFrame {
		totalEnergy += energy
	}

	if totalEnergy > 1e-10 {
		for i := range chromaFrame {
			chromaFrame[i] /= totalEnergy
		}
	}
}
