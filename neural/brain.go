package neural

import (
	"math/rand"
	"sync"
)

// Default noise levels for genetic operators.
const (
	DefaultMutationSigma = 0.3
	DefaultNudgeSigma    = 0.02
)

// Brain wraps a Network with genetic operators. All methods are safe for
// concurrent use: inference takes a read lock, anything that rewrites weights
// takes the write lock, so a reader never sees a half-updated network.
type Brain struct {
	mu  sync.RWMutex
	net *Network
	rng *rand.Rand

	mutationSigma float32
	nudgeSigma    float32
}

// NewBrain creates a randomly initialised brain. The brain draws its own RNG
// seed from rng.
func NewBrain(topo Topology, rng *rand.Rand) (*Brain, error) {
	net, err := NewNetwork(topo, rng)
	if err != nil {
		return nil, err
	}
	return wrap(net, rng.Int63()), nil
}

func wrap(net *Network, seed int64) *Brain {
	return &Brain{
		net:           net,
		rng:           rand.New(rand.NewSource(seed)),
		mutationSigma: DefaultMutationSigma,
		nudgeSigma:    DefaultNudgeSigma,
	}
}

// SetNoise sets the standard deviation of mutation and nudge perturbations.
// Clones and offspring inherit the values.
func (b *Brain) SetNoise(mutationSigma, nudgeSigma float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutationSigma = mutationSigma
	b.nudgeSigma = nudgeSigma
}

// Topology returns the shape of the network.
func (b *Brain) Topology() Topology {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.net.Topology()
}

// Params returns a flattened copy of the network parameters.
func (b *Brain) Params() []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.net.Params()
}

// Predict runs forward inference.
func (b *Brain) Predict(in []float32) []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.net.Forward(in)
}

// Network returns a deep copy of the underlying network.
func (b *Brain) Network() *Network {
	return b.snapshot()
}

// ChooseHighestOutput returns the index of the largest output for in.
func (b *Brain) ChooseHighestOutput(in []float32) int {
	return Argmax(b.Predict(in))
}

// Argmax returns the index of the largest value; ties go to the first.
// It returns -1 for an empty slice.
func Argmax(values []float32) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// Clone returns an independent deep copy with its own lock and RNG.
func (b *Brain) Clone() *Brain {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cloneLocked()
}

func (b *Brain) cloneLocked() *Brain {
	c := wrap(b.net.Clone(), b.rng.Int63())
	c.mutationSigma = b.mutationSigma
	c.nudgeSigma = b.nudgeSigma
	return c
}

// snapshot copies the network under the read lock so callers never hold two
// brain locks at once.
func (b *Brain) snapshot() *Network {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.net.Clone()
}

// Randomize re-draws every weight.
func (b *Brain) Randomize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.net.randomize(b.rng)
}

// Nudge adds small Gaussian noise to every parameter.
func (b *Brain) Nudge() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nudgeLocked()
}

func (b *Brain) nudgeLocked() {
	if b.nudgeSigma == 0 {
		return
	}
	for _, p := range b.net.params() {
		for i := range p {
			p[i] += float32(b.rng.NormFloat64()) * b.nudgeSigma
		}
	}
}
