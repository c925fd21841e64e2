package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/telemetry"
	"github.com/pthm-cable/retroterm/trainer"
)

// FitnessEvaluator runs short headless training runs and scores them.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastMean       float64 // mean final population rating from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the champions of the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastMean returns the mean final rating from the most recent evaluation.
func (fe *FitnessEvaluator) LastMean() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMean
}

// runResult holds the results from a single training run.
type runResult struct {
	bestEver   float64
	finalMean  float64
	hallOfFame *telemetry.HallOfFame
	err        error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated best-ever rating averaged over seeds, with a small
// bonus for a strong final population so that lucky one-off champions do
// not dominate.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runTraining(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalMean float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		fitness := math.Inf(1)
		if r.err == nil {
			fitness = -(r.bestEver + 0.25*r.finalMean)
		}
		totalFitness += fitness
		totalMean += r.finalMean
		if fitness < bestSeedFitness {
			bestSeedFitness = fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastMean = totalMean / n
	fe.mu.Unlock()

	return avgFitness
}

// runTraining trains a fresh population for the configured number of
// generations.
func (fe *FitnessEvaluator) runTraining(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	opts := trainer.OptionsFromConfig(cfg)
	opts.Seed = seed
	opts.MaxGenerations = fe.generations
	// Seeds already run in parallel.
	opts.Workers = 1

	tr, err := trainer.New(arcade.PongFactory{Config: cfg.Pong}, opts,
		trainer.BrainFactory(cfg.Derived.Topology, cfg.Brain.MutationSigma, cfg.Brain.NudgeSigma))
	if err != nil {
		return runResult{err: err}
	}

	result := runResult{hallOfFame: telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize)}
	tr.OnChampion(func(_ context.Context, c trainer.Champion) error {
		result.hallOfFame.Consider(telemetry.HallEntry{
			Generation: c.Generation,
			Rating:     c.Rating,
			Game:       "pong",
			Stats:      c.Stats,
			SavedAt:    c.Found,
			Brain:      c.Data,
		})
		return nil
	})
	tr.OnReport(func(r trainer.Report) {
		result.bestEver = r.BestEver
		result.finalMean = r.Mean
	})

	result.err = tr.Run(context.Background())
	return result
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Brain.Hidden = append([]int(nil), fe.baseConfig.Brain.Hidden...)
	return &cfg
}
