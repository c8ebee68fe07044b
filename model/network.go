package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/genrebench/logging"
)

// Network is a loaded sequence classifier: an LSTM stack with a
// softmax dense head. It is immutable after construction and safe for
// concurrent Predict calls.
type Network struct {
	topology *Topology
	lstms    []*lstmLayer
	dense    *denseLayer
}

// lstmLayer holds one LSTM layer's parameters in Keras ordering: the
// 4*units gate columns are [input, forget, cell, output].
type lstmLayer struct {
	inputDim        int
	units           int
	kernel          *mat.Dense    // inputDim x 4*units
	recurrent       *mat.Dense    // units x 4*units
	bias            *mat.VecDense // 4*units
	returnSequences bool
}

type denseLayer struct {
	units   int
	kernel  *mat.Dense    // inputDim x units
	bias    *mat.VecDense // units
	softmax bool
}

// Load reads a topology descriptor and its weight blob and builds the
// network.
func Load(topologyPath, weightsPath string) (*Network, error) {
	topology, err := LoadTopology(topologyPath)
	if err != nil {
		return nil, err
	}

	weights, err := LoadWeights(weightsPath, topology.WeightCount())
	if err != nil {
		return nil, err
	}

	network, err := NewNetwork(topology, weights)
	if err != nil {
		return nil, err
	}

	logging.Info("Loaded sequence classifier", logging.Fields{
		"model":      topology.Name,
		"layers":     len(topology.Layers),
		"parameters": topology.WeightCount(),
	})

	return network, nil
}

// NewNetwork builds a network from a validated topology and a flat
// weight slice laid out in topology order.
func NewNetwork(topology *Topology, weights []float64) (*Network, error) {
	if topology == nil {
		return nil, fmt.Errorf("nil topology")
	}
	if err := topology.Validate(); err != nil {
		return nil, err
	}

	expected := topology.WeightCount()
	if len(weights) != expected {
		return nil, fmt.Errorf("got %d weight values, topology expects %d", len(weights), expected)
	}

	network := &Network{topology: topology}

	offset := 0
	take := func(count int) []float64 {
		chunk := weights[offset : offset+count]
		offset += count
		return chunk
	}

	inputDim := topology.Input.Features
	for _, spec := range topology.Layers {
		switch spec.Type {
		case LayerLSTM:
			units := spec.Units
			network.lstms = append(network.lstms, &lstmLayer{
				inputDim:        inputDim,
				units:           units,
				kernel:          mat.NewDense(inputDim, 4*units, take(inputDim*4*units)),
				recurrent:       mat.NewDense(units, 4*units, take(units*4*units)),
				bias:            mat.NewVecDense(4*units, take(4*units)),
				returnSequences: spec.ReturnSequences,
			})
			inputDim = units
		case LayerDense:
			network.dense = &denseLayer{
				units:   spec.Units,
				kernel:  mat.NewDense(inputDim, spec.Units, take(inputDim*spec.Units)),
				bias:    mat.NewVecDense(spec.Units, take(spec.Units)),
				softmax: spec.Activation == "" || spec.Activation == "softmax",
			}
			inputDim = spec.Units
		}
	}

	return network, nil
}

// Predict runs the forward pass over a timesteps x features tensor
// and returns the output class probabilities.
func (n *Network) Predict(tensor [][]float64) ([]float64, error) {
	if len(tensor) != n.topology.Input.Timesteps {
		return nil, fmt.Errorf("tensor has %d frames, model expects %d", len(tensor), n.topology.Input.Timesteps)
	}
	for t, frame := range tensor {
		if len(frame) != n.topology.Input.Features {
			return nil, fmt.Errorf("frame %d has %d channels, model expects %d", t, len(frame), n.topology.Input.Features)
		}
	}

	sequence := tensor
	for _, layer := range n.lstms {
		sequence = layer.forward(sequence)
	}

	// The final LSTM emits a single hidden state
	return n.dense.forward(sequence[0]), nil
}

// Labels returns a copy of the topology's output labels; it may be
// empty when the descriptor omits them.
func (n *Network) Labels() []string {
	labels := make([]string, len(n.topology.Labels))
	copy(labels, n.topology.Labels)
	return labels
}

// InputShape returns the (timesteps, features) the network consumes.
func (n *Network) InputShape() (int, int) {
	return n.topology.Input.Timesteps, n.topology.Input.Features
}

// OutputUnits returns the width of the final layer.
func (n *Network) OutputUnits() int {
	return n.topology.OutputUnits()
}

// Name returns the topology's model name.
func (n *Network) Name() string {
	return n.topology.Name
}

// forward runs the layer over a sequence. With returnSequences it
// yields one hidden state per timestep, otherwise just the final one.
func (l *lstmLayer) forward(sequence [][]float64) [][]float64 {
	h := make([]float64, l.units)
	c := make([]float64, l.units)

	var outputs [][]float64
	if l.returnSequences {
		outputs = make([][]float64, 0, len(sequence))
	}

	for _, frame := range sequence {
		l.step(frame, h, c)

		if l.returnSequences {
			snapshot := make([]float64, l.units)
			copy(snapshot, h)
			outputs = append(outputs, snapshot)
		}
	}

	if l.returnSequences {
		return outputs
	}
	return [][]float64{h}
}

// step advances one timestep, updating hidden and cell state in
// place.
func (l *lstmLayer) step(frame, h, c []float64) {
	x := mat.NewVecDense(len(frame), frame)
	hVec := mat.NewVecDense(l.units, h)

	var z, r mat.VecDense
	z.MulVec(l.kernel.T(), x)
	r.MulVec(l.recurrent.T(), hVec)
	z.AddVec(&z, &r)
	z.AddVec(&z, l.bias)

	for j := 0; j < l.units; j++ {
		input := sigmoid(z.AtVec(j))
		forget := sigmoid(z.AtVec(l.units + j))
		cell := math.Tanh(z.AtVec(2*l.units + j))
		output := sigmoid(z.AtVec(3*l.units + j))

		c[j] = forget*c[j] + input*cell
		h[j] = output * math.Tanh(c[j])
	}
}

func (l *denseLayer) forward(input []float64) []float64 {
	var z mat.VecDense
	z.MulVec(l.kernel.T(), mat.NewVecDense(len(input), input))
	z.AddVec(&z, l.bias)

	out := make([]float64, l.units)
	for i := range out {
		out[i] = z.AtVec(i)
	}

	if l.softmax {
		softmaxInPlace(out)
	}

	return out
}

// softmaxInPlace applies a numerically stable softmax.
func softmaxInPlace(v []float64) {
	if len(v) == 0 {
		return
	}

	maxVal := floats.Max(v)
	sum := 0.0
	for i := range v {
		v[i] = math.Exp(v[i] - maxVal)
		sum += v[i]
	}

	if sum > 0 {
		floats.Scale(1/sum, v)
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
