// Package features assembles the fixed-shape acoustic feature tensors
// consumed by the sequence classifier: per-frame MFCCs, spectral
// centroid, chroma and spectral contrast, frame-synchronized on a
// shared STFT.
package features

import (
	"fmt"

	"github.com/RyanBlaney/genrebench/dsp/chroma"
	"github.com/RyanBlaney/genrebench/dsp/spectral"
	"github.com/RyanBlaney/genrebench/dsp/window"
	"github.com/RyanBlaney/genrebench/logging"
)

// Config holds feature extraction parameters
type Config struct {
	SampleRate       int `json:"sample_rate"`
	WindowSize       int `json:"window_size"`
	HopSize          int `json:"hop_size"`
	Frames           int `json:"frames"`            // Tensor length in frames
	MFCCCoefficients int `json:"mfcc_coefficients"` // Channels 0..12
	ChromaBins       int `json:"chroma_bins"`       // Channels 14..25
	ContrastBands    int `json:"contrast_bands"`    // Channels 26..32
}

// DefaultConfig returns the parameters the pretrained genre model was
// trained with.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:       22050,
		WindowSize:       2048,
		HopSize:          512,
		Frames:           128,
		MFCCCoefficients: 13,
		ChromaBins:       12,
		ContrastBands:    7,
	}
}

// NumChannels returns the per-frame channel count: MFCCs, then one
// spectral centroid channel, then chroma bins, then contrast bands.
func (c *Config) NumChannels() int {
	return c.MFCCCoefficients + 1 + c.ChromaBins + c.ContrastBands
}

// Extractor computes feature tensors from mono PCM.
type Extractor struct {
	config   *Config
	stft     *spectral.STFT
	window   *window.Hann
	mfcc     *spectral.MFCC
	centroid *spectral.SpectralCentroid
	contrast *spectral.SpectralContrast
	chroma   *chroma.Chroma
	logger   logging.Logger
}

// NewExtractor creates an extractor for the given configuration.
// A nil config uses DefaultConfig.
func NewExtractor(config *Config) *Extractor {
	if config == nil {
		config = DefaultConfig()
	}

	return &Extractor{
		config: config,
		stft:   spectral.NewSTFT(),
		window: window.NewHann(config.WindowSize, true),
		mfcc: spectral.NewMFCCWithParams(config.SampleRate, spectral.MFCCParams{
			NumCoefficients: config.MFCCCoefficients,
			NumMelFilters:   26,
			UseLiftering:    false,
		}),
		centroid: spectral.NewSpectralCentroid(config.SampleRate),
		contrast: spectral.NewSpectralContrast(config.SampleRate, config.ContrastBands),
		chroma:   chroma.NewChroma(),
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}
}

// Config returns the extractor configuration.
func (e *Extractor) Config() *Config {
	return e.config
}

// Extract computes a Frames x NumChannels tensor from mono PCM.
// Signals yielding fewer than Frames analysis frames are zero-padded;
// longer signals are truncated to the first Frames frames.
func (e *Extractor) Extract(pcm []float64) ([][]float64, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	// A sub-window clip still produces one frame
	if len(pcm) < e.config.WindowSize {
		padded := make([]float64, e.config.WindowSize)
		copy(padded, pcm)
		pcm = padded
	}

	spec, err := e.stft.Compute(pcm, e.config.WindowSize, e.config.HopSize, e.config.SampleRate, e.window)
	if err != nil {
		return nil, fmt.Errorf("stft failed: %w", err)
	}

	mfccFrames, err := e.mfcc.ComputeFrames(spec.Magnitude)
	if err != nil {
		return nil, fmt.Errorf("mfcc failed: %w", err)
	}
	centroids := e.centroid.ComputeFrames(spec.Magnitude)
	chromagram := e.chroma.FromSpectrogram(spec)
	contrasts := e.contrast.ComputeFrames(spec.Magnitude)

	e.logger.Debug("Computed frame features", logging.Fields{
		"available_frames": spec.TimeFrames,
		"tensor_frames":    e.config.Frames,
	})

	numChannels := e.config.NumChannels()
	tensor := make([][]float64, e.config.Frames)
	for t := range tensor {
		tensor[t] = make([]float64, numChannels)
	}

	frames := min(spec.TimeFrames, e.config.Frames)
	centroidChannel := e.config.MFCCCoefficients
	chromaOffset := centroidChannel + 1
	contrastOffset := chromaOffset + e.config.ChromaBins

	for t := 0; t < frames; t++ {
		copy(tensor[t][:centroidChannel], mfccFrames[t])
		tensor[t][centroidChannel] = centroids[t]
		copy(tensor[t][chromaOffset:contrastOffset], chromagram[t])
		copy(tensor[t][contrastOffset:], contrasts[t])
	}

	return tensor, nil
}
