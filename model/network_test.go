package model

import (
	"math"
	"testing"
)

// scalarStep is an independent reference for a single-unit LSTM step.
func scalarStep(x, h, c float64, kernel, recurrent, bias [4]float64) (float64, float64) {
	input := 1.0 / (1.0 + math.Exp(-(x*kernel[0] + h*recurrent[0] + bias[0])))
	forget := 1.0 / (1.0 + math.Exp(-(x*kernel[1] + h*recurrent[1] + bias[1])))
	cell := math.Tanh(x*kernel[2] + h*recurrent[2] + bias[2])
	output := 1.0 / (1.0 + math.Exp(-(x*kernel[3] + h*recurrent[3] + bias[3])))

	cNext := forget*c + input*cell
	return output * math.Tanh(cNext), cNext
}

func tinyTopology(timesteps int) *Topology {
	return &Topology{
		Name:  "tiny",
		Input: InputSpec{Timesteps: timesteps, Features: 1},
		Layers: []LayerSpec{
			{Type: LayerLSTM, Units: 1},
			{Type: LayerDense, Units: 2, Activation: "softmax"},
		},
	}
}

var (
	tinyKernel    = [4]float64{1.0, 0.0, 2.0, 0.0}
	tinyRecurrent = [4]float64{0.5, 0.3, -0.2, 0.1}
	tinyBias      = [4]float64{0.1, -0.1, 0.2, 10.0}
)

// tinyWeights lays out the blob in topology order: LSTM kernel,
// recurrent kernel, bias, then dense kernel and bias.
func tinyWeights() []float64 {
	weights := make([]float64, 0, 16)
	weights = append(weights, tinyKernel[:]...)
	weights = append(weights, tinyRecurrent[:]...)
	weights = append(weights, tinyBias[:]...)
	weights = append(weights, 1.0, -1.0) // dense kernel
	weights = append(weights, 0.05, -0.05)
	return weights
}

func TestPredictMatchesScalarReference(t *testing.T) {
	network, err := NewNetwork(tinyTopology(1), tinyWeights())
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	x := 0.5
	got, err := network.Predict([][]float64{{x}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	h, _ := scalarStep(x, 0, 0, tinyKernel, tinyRecurrent, tinyBias)
	logit0 := h + 0.05
	logit1 := -h - 0.05
	e0 := math.Exp(logit0)
	e1 := math.Exp(logit1)
	want := []float64{e0 / (e0 + e1), e1 / (e0 + e1)}

	if len(got) != 2 {
		t.Fatalf("got %d outputs, want 2", len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("output %d = %.15f, want %.15f", i, got[i], want[i])
		}
	}
}

func TestPredictRecurrence(t *testing.T) {
	network, err := NewNetwork(tinyTopology(3), tinyWeights())
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	inputs := []float64{0.5, -0.25, 1.0}
	got, err := network.Predict([][]float64{{inputs[0]}, {inputs[1]}, {inputs[2]}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	h, c := 0.0, 0.0
	for _, x := range inputs {
		h, c = scalarStep(x, h, c, tinyKernel, tinyRecurrent, tinyBias)
	}
	e0 := math.Exp(h + 0.05)
	e1 := math.Exp(-h - 0.05)
	want := []float64{e0 / (e0 + e1), e1 / (e0 + e1)}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("output %d = %.15f, want %.15f", i, got[i], want[i])
		}
	}
}

func TestPredictStackedLayers(t *testing.T) {
	topology := &Topology{
		Name:  "stacked",
		Input: InputSpec{Timesteps: 4, Features: 2},
		Layers: []LayerSpec{
			{Type: LayerLSTM, Units: 2, ReturnSequences: true},
			{Type: LayerLSTM, Units: 1},
			{Type: LayerDense, Units: 3, Activation: "softmax"},
		},
	}

	weights := make([]float64, topology.WeightCount())
	for i := range weights {
		// Deterministic small values across (-0.5, 0.5)
		weights[i] = math.Sin(float64(i)) / 2
	}

	network, err := NewNetwork(topology, weights)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	tensor := [][]float64{{0.1, -0.2}, {0.3, 0.4}, {-0.5, 0.6}, {0.7, -0.8}}
	probs, err := network.Predict(tensor)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if len(probs) != 3 {
		t.Fatalf("got %d outputs, want 3", len(probs))
	}
	sum := 0.0
	for i, p := range probs {
		if p <= 0 || p >= 1 {
			t.Errorf("probability %d = %g outside (0, 1)", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("probabilities sum to %.15f, want 1", sum)
	}

	// A different input must move the output
	other := [][]float64{{-0.9, 0.9}, {0.2, 0.1}, {0.0, 0.0}, {0.4, 0.4}}
	otherProbs, err := network.Predict(other)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	same := true
	for i := range probs {
		if math.Abs(probs[i]-otherProbs[i]) > 1e-12 {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct inputs produced identical outputs")
	}
}

func TestPredictShapeErrors(t *testing.T) {
	network, err := NewNetwork(tinyTopology(2), tinyWeights())
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	if _, err := network.Predict([][]float64{{0.5}}); err == nil {
		t.Error("wrong frame count: expected error")
	}
	if _, err := network.Predict([][]float64{{0.5, 0.1}, {0.2, 0.3}}); err == nil {
		t.Error("wrong channel count: expected error")
	}
}

func TestNewNetworkWeightMismatch(t *testing.T) {
	if _, err := NewNetwork(tinyTopology(1), make([]float64, 7)); err == nil {
		t.Error("short weights: expected error")
	}
	if _, err := NewNetwork(nil, nil); err == nil {
		t.Error("nil topology: expected error")
	}
}

func TestNetworkAccessors(t *testing.T) {
	topology := tinyTopology(1)
	topology.Labels = []string{"a", "b"}

	network, err := NewNetwork(topology, tinyWeights())
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	timesteps, feats := network.InputShape()
	if timesteps != 1 || feats != 1 {
		t.Errorf("InputShape = (%d, %d), want (1, 1)", timesteps, feats)
	}
	if network.Name() != "tiny" {
		t.Errorf("Name = %q", network.Name())
	}

	labels := network.Labels()
	labels[0] = "mutated"
	if network.Labels()[0] != "a" {
		t.Error("Labels leaked internal slice")
	}
}

func TestSoftmaxStability(t *testing.T) {
	v := []float64{1000, 1001, 1002}
	softmaxInPlace(v)

	sum := 0.0
	for _, p := range v {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("softmax produced %v", v)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("softmax sum = %.15f, want 1", sum)
	}
	if !(v[2] > v[1] && v[1] > v[0]) {
		t.Errorf("softmax not monotone: %v", v)
	}
}
