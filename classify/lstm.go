package classify

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/genrebench/audio"
	"github.com/RyanBlaney/genrebench/features"
	"github.com/RyanBlaney/genrebench/logging"
	"github.com/RyanBlaney/genrebench/model"
)

// Decoder decodes an audio file into PCM.
type Decoder interface {
	DecodeFile(ctx context.Context, filename string) (*audio.Data, error)
}

// LSTMClassifier runs the pretrained sequence model over feature
// tensors extracted from decoded clips.
type LSTMClassifier struct {
	network   *model.Network
	decoder   Decoder
	extractor *features.Extractor
	labels    []string
	logger    logging.Logger
}

// NewLSTMClassifier wires a loaded network to a decoder and feature
// extractor. A nil decoder or extractor gets the default ffmpeg
// decoder and tensor configuration. The network input shape must
// match the extractor's tensor shape.
func NewLSTMClassifier(network *model.Network, decoder Decoder, extractor *features.Extractor) (*LSTMClassifier, error) {
	if network == nil {
		return nil, fmt.Errorf("network must not be nil")
	}
	if decoder == nil {
		decoder = audio.NewDecoder(nil)
	}
	if extractor == nil {
		extractor = features.NewExtractor(nil)
	}

	timesteps, featureDim := network.InputShape()
	config := extractor.Config()
	if timesteps != config.Frames || featureDim != config.NumChannels() {
		return nil, fmt.Errorf("network expects %dx%d input, extractor produces %dx%d",
			timesteps, featureDim, config.Frames, config.NumChannels())
	}

	labels := network.Labels()
	if len(labels) == 0 {
		labels = DefaultGenreLabels()
	}
	if len(labels) != network.OutputUnits() {
		return nil, fmt.Errorf("network has %d outputs but %d labels", network.OutputUnits(), len(labels))
	}

	return &LSTMClassifier{
		network:   network,
		decoder:   decoder,
		extractor: extractor,
		labels:    labels,
		logger: logging.WithFields(logging.Fields{
			"component": "lstm_classifier",
			"model":     network.Name(),
		}),
	}, nil
}

// LoadLSTMClassifier loads the topology and weights from disk and
// wires the default decoder and extractor around them.
func LoadLSTMClassifier(topologyPath, weightsPath string) (*LSTMClassifier, error) {
	network, err := model.Load(topologyPath, weightsPath)
	if err != nil {
		return nil, err
	}
	return NewLSTMClassifier(network, nil, nil)
}

// Name identifies the backend.
func (c *LSTMClassifier) Name() string {
	return "lstm"
}

// Predict decodes the file, extracts its feature tensor and returns
// the arg-max label of the network output, lower-cased.
func (c *LSTMClassifier) Predict(ctx context.Context, filename string) (string, error) {
	data, err := c.decoder.DecodeFile(ctx, filename)
	if err != nil {
		return "", err
	}

	tensor, err := c.extractor.Extract(data.PCM)
	if err != nil {
		return "", err
	}

	probs, err := c.network.Predict(tensor)
	if err != nil {
		return "", err
	}

	best := floats.MaxIdx(probs)
	label := strings.ToLower(c.labels[best])

	c.logger.Debug("Classified clip", logging.Fields{
		"filename":   filename,
		"label":      label,
		"confidence": probs[best],
	})

	return label, nil
}
