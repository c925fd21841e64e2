package neural

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
)

// AverageWith returns a new brain whose parameters are the arithmetic mean of
// b and other, nudged slightly so that identical parents do not yield an
// identical child.
func (b *Brain) AverageWith(other *Brain) (*Brain, error) {
	theirs := other.snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !sameShape(b.net, theirs) {
		return nil, fmt.Errorf("average: %w", ErrTopology)
	}

	child := b.cloneLocked()
	mine := child.net.params()
	for i, p := range theirs.params() {
		x := blas32.Vector{N: len(p), Inc: 1, Data: p}
		y := blas32.Vector{N: len(mine[i]), Inc: 1, Data: mine[i]}
		blas32.Scal(0.5, y)
		blas32.Axpy(0.5, x, y)
	}
	child.nudgeLocked()
	return child, nil
}

// MixWith returns a new brain that takes each parameter from b or other with
// equal probability, then nudges it.
func (b *Brain) MixWith(other *Brain) (*Brain, error) {
	theirs := other.snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !sameShape(b.net, theirs) {
		return nil, fmt.Errorf("mix: %w", ErrTopology)
	}

	child := b.cloneLocked()
	mine := child.net.params()
	for i, p := range theirs.params() {
		for j := range p {
			if b.rng.Intn(2) == 1 {
				mine[i][j] = p[j]
			}
		}
	}
	child.nudgeLocked()
	return child, nil
}

// CrossWith replaces each of b's parameters with other's with probability
// rate. It rewrites b in place; breed from a clone, never from a shared parent.
func (b *Brain) CrossWith(other *Brain, rate float64) error {
	theirs := other.snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !sameShape(b.net, theirs) {
		return fmt.Errorf("cross: %w", ErrTopology)
	}
	if rate <= 0 {
		return nil
	}

	mine := b.net.params()
	for i, p := range theirs.params() {
		for j := range p {
			if b.rng.Float64() < rate {
				mine[i][j] = p[j]
			}
		}
	}
	return nil
}

// Mutate perturbs each parameter with probability rate by Gaussian noise and
// returns how many were changed. Like CrossWith it rewrites b in place.
func (b *Brain) Mutate(rate float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rate <= 0 {
		return 0
	}

	changed := 0
	for _, p := range b.net.params() {
		for j := range p {
			if b.rng.Float64() < rate {
				p[j] += float32(b.rng.NormFloat64()) * b.mutationSigma
				changed++
			}
		}
	}
	return changed
}
