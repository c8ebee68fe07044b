// Package model implements the pretrained sequence-classifier
// runtime: a stack of LSTM layers feeding a softmax dense head,
// loaded from a JSON topology descriptor and a raw weight blob.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layer types understood by the runtime.
const (
	LayerLSTM  = "lstm"
	LayerDense = "dense"
)

// InputSpec describes the tensor shape the network consumes.
type InputSpec struct {
	Timesteps int `json:"timesteps"`
	Features  int `json:"features"`
}

// LayerSpec describes one layer of the network.
type LayerSpec struct {
	Type            string `json:"type"`
	Units           int    `json:"units"`
	Activation      string `json:"activation,omitempty"`
	ReturnSequences bool   `json:"return_sequences,omitempty"`
}

// Topology is the JSON model descriptor that accompanies a weight
// blob. Labels map output indices to genre names; they may be omitted
// when the caller supplies its own label set.
type Topology struct {
	Name   string      `json:"name"`
	Input  InputSpec   `json:"input"`
	Labels []string    `json:"labels,omitempty"`
	Layers []LayerSpec `json:"layers"`
}

// LoadTopology reads and validates a topology descriptor.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology: %w", err)
	}

	var topology Topology
	if err := json.Unmarshal(data, &topology); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}

	if err := topology.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology %s: %w", path, err)
	}

	return &topology, nil
}

// Validate checks the structural constraints the runtime relies on:
// positive dimensions, an LSTM stack terminated by a single dense
// softmax head, and sequence returns wired so each layer feeds the
// next.
func (t *Topology) Validate() error {
	if t.Input.Timesteps <= 0 {
		return fmt.Errorf("input timesteps must be positive: %d", t.Input.Timesteps)
	}
	if t.Input.Features <= 0 {
		return fmt.Errorf("input features must be positive: %d", t.Input.Features)
	}
	if len(t.Layers) < 2 {
		return fmt.Errorf("need at least one lstm layer and a dense head, got %d layers", len(t.Layers))
	}

	last := len(t.Layers) - 1
	for i, layer := range t.Layers {
		if layer.Units <= 0 {
			return fmt.Errorf("layer %d units must be positive: %d", i, layer.Units)
		}

		switch layer.Type {
		case LayerLSTM:
			if i == last {
				return fmt.Errorf("layer %d: network must end with a dense layer", i)
			}
			// An LSTM feeding another LSTM must emit the full
			// sequence; the one feeding the dense head must not.
			feedsLSTM := t.Layers[i+1].Type == LayerLSTM
			if feedsLSTM && !layer.ReturnSequences {
				return fmt.Errorf("layer %d: lstm feeding another lstm requires return_sequences", i)
			}
			if !feedsLSTM && layer.ReturnSequences {
				return fmt.Errorf("layer %d: final lstm must not return sequences", i)
			}
		case LayerDense:
			if i != last {
				return fmt.Errorf("layer %d: dense is only supported as the final layer", i)
			}
			if layer.Activation != "" && layer.Activation != "softmax" {
				return fmt.Errorf("layer %d: unsupported activation %q", i, layer.Activation)
			}
		default:
			return fmt.Errorf("layer %d: unknown layer type %q", i, layer.Type)
		}
	}

	if len(t.Labels) > 0 && len(t.Labels) != t.Layers[last].Units {
		return fmt.Errorf("%d labels do not match %d output units", len(t.Labels), t.Layers[last].Units)
	}

	return nil
}

// WeightCount returns the number of float64 values the weight blob
// must contain: per LSTM layer an input kernel (inputDim x 4*units),
// a recurrent kernel (units x 4*units) and a bias (4*units), then the
// dense kernel (inputDim x units) and bias (units).
func (t *Topology) WeightCount() int {
	count := 0
	inputDim := t.Input.Features

	for _, layer := range t.Layers {
		switch layer.Type {
		case LayerLSTM:
			count += inputDim*4*layer.Units + layer.Units*4*layer.Units + 4*layer.Units
		case LayerDense:
			count += inputDim*layer.Units + layer.Units
		}
		inputDim = layer.Units
	}

	return count
}

// OutputUnits returns the size of the final layer.
func (t *Topology) OutputUnits() int {
	if len(t.Layers) == 0 {
		return 0
	}
	return t.Layers[len(t.Layers)-1].Units
}
