package trainer

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/neural"
)

// Options control population size and the genetic operators.
type Options struct {
	Population    int
	MinPopulation int
	// ShrinkStep is removed from the population after each generation that
	// fails to produce a new champion, down to MinPopulation.
	ShrinkStep     int
	EliteFraction  float64
	RandomFraction float64
	MutationRate   float64
	CrossoverRate  float64
	Workers        int // 0 = GOMAXPROCS
	Seed           int64
	MaxGenerations int // 0 = until cancelled
	// PerfWindow is the number of generations phase timings average over.
	PerfWindow int
}

// DefaultOptions returns the options used when no config is loaded.
func DefaultOptions() Options {
	return Options{
		Population:     60,
		MinPopulation:  20,
		ShrinkStep:     2,
		EliteFraction:  0.1,
		RandomFraction: 0.05,
		MutationRate:   0.1,
		CrossoverRate:  0.5,
		Seed:           42,
		PerfWindow:     10,
	}
}

// OptionsFromConfig maps the evolution section of cfg to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	e := cfg.Evolution
	return Options{
		Population:     e.Population,
		MinPopulation:  e.MinPopulation,
		ShrinkStep:     e.ShrinkStep,
		EliteFraction:  e.EliteFraction,
		RandomFraction: e.RandomFraction,
		MutationRate:   e.MutationRate,
		CrossoverRate:  e.CrossoverRate,
		Workers:        e.Workers,
		Seed:           e.Seed,
		MaxGenerations: e.MaxGenerations,
		PerfWindow:     cfg.Telemetry.PerfWindow,
	}
}

func (o Options) validate() error {
	switch {
	case o.Population < 1:
		return fmt.Errorf("trainer: population must be positive, got %d", o.Population)
	case o.MinPopulation < 1 || o.MinPopulation > o.Population:
		return fmt.Errorf("trainer: min population must be in [1, %d], got %d", o.Population, o.MinPopulation)
	case o.ShrinkStep < 0:
		return fmt.Errorf("trainer: shrink step must not be negative, got %d", o.ShrinkStep)
	}
	return nil
}

// NewBrainFunc creates a fresh random brain.
type NewBrainFunc func(rng *rand.Rand) (*neural.Brain, error)

// BrainFactory returns a NewBrainFunc building brains of shape topo with the
// given noise levels.
func BrainFactory(topo neural.Topology, mutationSigma, nudgeSigma float32) NewBrainFunc {
	return func(rng *rand.Rand) (*neural.Brain, error) {
		b, err := neural.NewBrain(topo, rng)
		if err != nil {
			return nil, err
		}
		b.SetNoise(mutationSigma, nudgeSigma)
		return b, nil
	}
}
