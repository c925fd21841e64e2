// Package neural provides feed-forward network brains evolved by the trainer.
package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"
)

// ErrTopology is returned when two networks (or a network and its input)
// do not have the same shape.
var ErrTopology = errors.New("neural: topology mismatch")

// Topology describes the layer sizes of a network.
type Topology struct {
	Inputs  int
	Hidden  []int
	Outputs int

	// LearningRate is carried with the network for completeness. Brains are
	// trained by evolution, so nothing reads it during training.
	LearningRate float32
}

// Sizes returns every layer width, inputs first.
func (t Topology) Sizes() []int {
	sizes := make([]int, 0, len(t.Hidden)+2)
	sizes = append(sizes, t.Inputs)
	sizes = append(sizes, t.Hidden...)
	return append(sizes, t.Outputs)
}

// Validate reports whether every layer has at least one unit.
func (t Topology) Validate() error {
	for i, n := range t.Sizes() {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has %d units", ErrTopology, i, n)
		}
	}
	return nil
}

// Layer is a dense layer: out = tanh(W·in + b). W has one row per output unit.
type Layer struct {
	Weights blas32.General
	Bias    []float32
}

// In returns the layer's input width.
func (l *Layer) In() int { return l.Weights.Cols }

// Out returns the layer's output width.
func (l *Layer) Out() int { return l.Weights.Rows }

// Network is an ordered stack of dense layers.
type Network struct {
	Layers       []Layer
	LearningRate float32
}

func newLayer(in, out int) Layer {
	return Layer{
		Weights: blas32.General{
			Rows:   out,
			Cols:   in,
			Stride: in,
			Data:   make([]float32, in*out),
		},
		Bias: make([]float32, out),
	}
}

// NewNetwork creates a network with Xavier-initialised weights and zero biases.
func NewNetwork(topo Topology, rng *rand.Rand) (*Network, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	sizes := topo.Sizes()
	n := &Network{
		Layers:       make([]Layer, len(sizes)-1),
		LearningRate: topo.LearningRate,
	}
	for i := range n.Layers {
		n.Layers[i] = newLayer(sizes[i], sizes[i+1])
	}
	n.randomize(rng)
	return n, nil
}

// randomize re-draws every weight (Xavier) and zeroes the biases.
func (n *Network) randomize(rng *rand.Rand) {
	for i := range n.Layers {
		l := &n.Layers[i]
		scale := float32(math.Sqrt(2.0 / float64(l.In())))
		for j := range l.Weights.Data {
			l.Weights.Data[j] = float32(rng.NormFloat64()) * scale
		}
		clear(l.Bias)
	}
}

// Topology reconstructs the shape of the network.
func (n *Network) Topology() Topology {
	t := Topology{LearningRate: n.LearningRate}
	if len(n.Layers) == 0 {
		return t
	}
	t.Inputs = n.Layers[0].In()
	t.Outputs = n.Layers[len(n.Layers)-1].Out()
	for _, l := range n.Layers[:len(n.Layers)-1] {
		t.Hidden = append(t.Hidden, l.Out())
	}
	return t
}

// Forward computes the network output for in. It panics if len(in) does not
// match the input width; callers validate the encoder once at startup.
func (n *Network) Forward(in []float32) []float32 {
	if len(n.Layers) == 0 {
		return nil
	}
	if len(in) != n.Layers[0].In() {
		panic(fmt.Sprintf("neural: input has %d values, network expects %d", len(in), n.Layers[0].In()))
	}

	x := in
	for i := range n.Layers {
		x = n.Layers[i].forward(x)
	}
	return x
}

// Trace is Forward but keeps every layer's activations, input first and
// output last.
func (n *Network) Trace(in []float32) [][]float32 {
	if len(n.Layers) == 0 {
		return nil
	}
	if len(in) != n.Layers[0].In() {
		panic(fmt.Sprintf("neural: input has %d values, network expects %d", len(in), n.Layers[0].In()))
	}

	acts := make([][]float32, 0, len(n.Layers)+1)
	acts = append(acts, append([]float32(nil), in...))
	for i := range n.Layers {
		acts = append(acts, n.Layers[i].forward(acts[i]))
	}
	return acts
}

// forward accumulates each unit in input order so identical inputs give
// bit-identical outputs whatever the alignment of x.
func (l *Layer) forward(x []float32) []float32 {
	y := make([]float32, l.Out())
	w := l.Weights
	for o := range y {
		row := w.Data[o*w.Stride : o*w.Stride+w.Cols]
		sum := l.Bias[o]
		for i, v := range row {
			sum += v * x[i]
		}
		y[o] = tanh(sum)
	}
	return y
}

// Weight returns the weight from input unit in to output unit out.
func (l *Layer) Weight(out, in int) float32 {
	return l.Weights.Data[out*l.Weights.Stride+in]
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	c := &Network{
		Layers:       make([]Layer, len(n.Layers)),
		LearningRate: n.LearningRate,
	}
	for i, l := range n.Layers {
		c.Layers[i] = Layer{
			Weights: blas32.General{
				Rows:   l.Weights.Rows,
				Cols:   l.Weights.Cols,
				Stride: l.Weights.Stride,
				Data:   append([]float32(nil), l.Weights.Data...),
			},
			Bias: append([]float32(nil), l.Bias...),
		}
	}
	return c
}

// NumParams returns the number of weights and biases.
func (n *Network) NumParams() int {
	total := 0
	for _, l := range n.Layers {
		total += len(l.Weights.Data) + len(l.Bias)
	}
	return total
}

// params returns the weight and bias slices of every layer, aliasing the
// network's storage.
func (n *Network) params() [][]float32 {
	out := make([][]float32, 0, 2*len(n.Layers))
	for i := range n.Layers {
		out = append(out, n.Layers[i].Weights.Data, n.Layers[i].Bias)
	}
	return out
}

// Params returns a flattened copy of all weights then biases, layer by layer.
func (n *Network) Params() []float32 {
	flat := make([]float32, 0, n.NumParams())
	for _, p := range n.params() {
		flat = append(flat, p...)
	}
	return flat
}

// sameShape reports whether a and b have identical layer sizes.
func sameShape(a, b *Network) bool {
	if len(a.Layers) != len(b.Layers) {
		return false
	}
	for i := range a.Layers {
		if a.Layers[i].In() != b.Layers[i].In() || a.Layers[i].Out() != b.Layers[i].Out() {
			return false
		}
	}
	return true
}

// tanh uses a fast rational approximation avoiding float64 conversion.
func tanh(x float32) float32 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}
