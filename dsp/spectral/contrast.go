package spectral

import (
	"math"
	"sort"
)

// SpectralContrast measures the level difference between peaks and
// valleys in log-spaced frequency bands.
type SpectralContrast struct {
	sampleRate  int
	numBands    int
	bandEdges   []int
	numBins     int
	initialized bool
}

// NewSpectralContrast creates a new spectral contrast calculator
func NewSpectralContrast(sampleRate, numBands int) *SpectralContrast {
	return &SpectralContrast{
		sampleRate: sampleRate,
		numBands:   numBands,
	}
}

// Compute calculates per-band contrast in dB for a single magnitude
// spectrum.
func (sc *SpectralContrast) Compute(magnitudeSpectrum []float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	if !sc.initialized || sc.numBins != len(magnitudeSpectrum) {
		sc.initializeBands(len(magnitudeSpectrum))
	}

	contrast := make([]float64, sc.numBands)

	for band := 0; band < sc.numBands; band++ {
		startBin := sc.bandEdges[band]
		endBin := min(sc.bandEdges[band+1], len(magnitudeSpectrum))

		if startBin >= endBin {
			contrast[band] = 0.0
			continue
		}

		contrast[band] = bandContrast(magnitudeSpectrum[startBin:endBin])
	}

	return contrast
}

// ComputeFrames processes multiple frames efficiently
func (sc *SpectralContrast) ComputeFrames(spectrogram [][]float64) [][]float64 {
	if len(spectrogram) == 0 {
		return [][]float64{}
	}

	contrasts := make([][]float64, len(spectrogram))

	for t, magnitudeSpectrum := range spectrogram {
		contrasts[t] = sc.Compute(magnitudeSpectrum)
	}

	return contrasts
}

// bandContrast compares the top and bottom 20% of power within a band
func bandContrast(bandSpectrum []float64) float64 {
	if len(bandSpectrum) == 0 {
		return 0.0
	}

	sortedPower := make([]float64, len(bandSpectrum))
	for i, mag := range bandSpectrum {
		sortedPower[i] = mag * mag
	}
	sort.Float64s(sortedPower)

	quantileCount := len(sortedPower) / 5
	if quantileCount == 0 {
		quantileCount = 1
	}

	valleyEnergy := 0.0
	for i := 0; i < quantileCount; i++ {
		valleyEnergy += sortedPower[i]
	}
	valleyEnergy /= float64(quantileCount)

	peakEnergy := 0.0
	for i := len(sortedPower) - quantileCount; i < len(sortedPower); i++ {
		peakEnergy += sortedPower[i]
	}
	peakEnergy /= float64(quantileCount)

	if valleyEnergy <= 0 {
		valleyEnergy = 1e-10
	}
	if peakEnergy <= 0 {
		return 0.0
	}

	return 10.0 * math.Log10(peakEnergy/valleyEnergy)
}

// initializeBands creates log-spaced band boundaries from 200 Hz up
// to Nyquist
func (sc *SpectralContrast) initializeBands(numBins int) {
	sc.numBins = numBins
	sc.bandEdges = make([]int, sc.numBands+1)

	nyquist := float64(sc.sampleRate) / 2.0

	minFreq := 200.0
	maxFreq := nyquist
	if maxFreq <= minFreq {
		maxFreq = minFreq * 2
	}

	logMinFreq := math.Log10(minFreq)
	logStep := (math.Log10(maxFreq) - logMinFreq) / float64(sc.numBands)

	for i := 0; i <= sc.numBands; i++ {
		freq := math.Pow(10.0, logMinFreq+float64(i)*logStep)

		binIdx := int(freq * float64(numBins-1) / nyquist)
		if binIdx >= numBins {
			binIdx = numBins - 1
		}
		if binIdx < 0 {
			binIdx = 0
		}

		sc.bandEdges[i] = binIdx
	}

	// Band edges must strictly increase
	for i := 1; i <= sc.numBands; i++ {
		if sc.bandEdges[i] <= sc.bandEdges[i-1] {
			sc.bandEdges[i] = sc.bandEdges[i-1] + 1
		}
	}

	sc.initialized = true
}
