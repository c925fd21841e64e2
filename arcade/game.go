// Package arcade holds the games brains are trained on.
package arcade

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/retroterm/neural"
)

// ErrEncoderSize is returned when a game's encoded state does not fit the
// brain's input or output layer.
var ErrEncoderSize = errors.New("arcade: encoder size does not match brain")

// Game is one instance of a game played by a single brain. Instances own all
// of their mutable state, so different instances may tick concurrently.
type Game interface {
	// Tick advances the game by one step. It is a no-op once Done.
	Tick()
	Done() bool
	// Rating is the fitness of the brain so far; higher is better.
	Rating() float64
	Brain() *neural.Brain
	// Stats returns game-specific counters for reporting.
	Stats() map[string]float64
	Ticks() int
}

// Factory creates game instances.
type Factory interface {
	Name() string
	// New creates an instance driven by brain. Instances built with the same
	// seed start from identical conditions.
	New(brain *neural.Brain, seed int64) Game
	// Probe encodes a synthetic state; its length is the input size brains
	// need.
	Probe() []float32
	// Outputs is the number of actions a brain chooses between.
	Outputs() int
}

// ValidateEncoder checks that brains of shape topo can play games from f.
func ValidateEncoder(f Factory, topo neural.Topology) error {
	if n := len(f.Probe()); n != topo.Inputs {
		return fmt.Errorf("%w: %s encodes %d inputs, brain takes %d", ErrEncoderSize, f.Name(), n, topo.Inputs)
	}
	if f.Outputs() != topo.Outputs {
		return fmt.Errorf("%w: %s has %d actions, brain has %d outputs", ErrEncoderSize, f.Name(), f.Outputs(), topo.Outputs)
	}
	return nil
}

// MustValidateEncoder is ValidateEncoder for startup code. It panics on
// mismatch.
func MustValidateEncoder(f Factory, topo neural.Topology) {
	if err := ValidateEncoder(f, topo); err != nil {
		panic(err)
	}
}

// Play ticks g until it is done or maxTicks steps have run (0 means no limit)
// and returns the number of ticks taken.
func Play(g Game, maxTicks int) int {
	n := 0
	for !g.Done() {
		if maxTicks > 0 && n >= maxTicks {
			break
		}
		g.Tick()
		n++
	}
	return n
}
