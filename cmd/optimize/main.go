// Package main tunes the trainer's genetic operator settings for Pong with
// CMA-ES.
//
// Usage: go run ./cmd/optimize -output runs/tune [-generations 40] [-seeds 3]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/retroterm/config"
)

// evalRecord is one row of optimize_log.csv. Parameter columns follow
// NewParamVector's order.
type evalRecord struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	Mean           float64 `csv:"mean_rating"`
	EliteFraction  float64 `csv:"elite_fraction"`
	RandomFraction float64 `csv:"random_fraction"`
	MutationRate   float64 `csv:"mutation_rate"`
	CrossoverRate  float64 `csv:"crossover_rate"`
	MutationSigma  float64 `csv:"mutation_sigma"`
	NudgeSigma     float64 `csv:"nudge_sigma"`
}

func newEvalRecord(eval int, fitness, mean float64, v []float64) evalRecord {
	return evalRecord{
		Eval:           eval,
		Fitness:        fitness,
		Mean:           mean,
		EliteFraction:  v[0],
		RandomFraction: v[1],
		MutationRate:   v[2],
		CrossoverRate:  v[3],
		MutationSigma:  v[4],
		NudgeSigma:     v[5],
	}
}

// tuner is the CMA-ES objective. Evaluations run one at a time; each one
// trains its seeds in parallel.
type tuner struct {
	ctx       context.Context
	params    *ParamVector
	evaluator *FitnessEvaluator
	maxEvals  int

	log       *os.File
	logHeader bool

	evals       int
	bestFitness float64
	bestParams  []float64
	started     time.Time
}

// objective scores a normalised point. After cancellation it returns +Inf
// without training so the optimiser runs out its budget quickly.
func (t *tuner) objective(x []float64) float64 {
	if t.ctx.Err() != nil {
		return math.Inf(1)
	}

	values := t.params.Clamp(t.params.Denormalize(x))
	fitness := t.evaluator.Evaluate(values)
	t.evals++

	if fitness < t.bestFitness {
		t.bestFitness = fitness
		t.bestParams = values
	}
	t.record(newEvalRecord(t.evals, fitness, t.evaluator.LastMean(), values))

	elapsed := time.Since(t.started)
	eta := time.Duration(t.maxEvals-t.evals) * (elapsed / time.Duration(t.evals))
	slog.Info("eval",
		"n", t.evals,
		"of", t.maxEvals,
		"fitness", fitness,
		"mean", t.evaluator.LastMean(),
		"best", t.bestFitness,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(eta),
	)
	return fitness
}

func (t *tuner) record(r evalRecord) {
	rows := []evalRecord{r}
	var err error
	if t.logHeader {
		err = gocsv.MarshalWithoutHeaders(rows, t.log)
	} else {
		err = gocsv.Marshal(rows, t.log)
		t.logHeader = err == nil
	}
	if err != nil {
		slog.Warn("failed to log evaluation", "eval", r.Eval, "error", err)
	}
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 40, "Generations per training run")
	seeds := flag.Int("seeds", 3, "Training runs per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + 3ln(n))")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "-output is required")
		os.Exit(2)
	}
	if err := run(*configPath, *outputDir, *generations, *seeds, *maxEvals, *population); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, generations, seeds, maxEvals, population int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	baseCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logFile, err := os.Create(filepath.Join(outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log: %w", err)
	}
	defer logFile.Close()

	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	params := NewParamVector()
	t := &tuner{
		ctx:         ctx,
		params:      params,
		evaluator:   NewFitnessEvaluator(params, generations, evalSeeds, baseCfg),
		maxEvals:    maxEvals,
		log:         logFile,
		bestFitness: math.Inf(1),
		started:     time.Now(),
	}

	dim := params.Dim()
	if population == 0 {
		population = 4 + int(3*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   population,
	}
	settings := &optimize.Settings{FuncEvaluations: maxEvals}

	slog.Info("starting CMA-ES",
		"params", dim,
		"population", population,
		"max_evals", maxEvals,
		"seeds", seeds,
		"generations", generations,
	)

	problem := optimize.Problem{Func: t.objective}
	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if t.bestParams == nil && result != nil {
		t.bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if t.bestParams == nil {
		return fmt.Errorf("no evaluations completed")
	}

	slog.Info("optimization complete",
		"evals", t.evals,
		"duration", formatDuration(time.Since(t.started)),
		"best_fitness", t.bestFitness,
	)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "value", t.bestParams[i])
	}

	return writeResults(outputDir, baseCfg, params, t.bestParams, t.evaluator)
}

// writeResults saves the tuned config and the hall of fame of the best run.
func writeResults(dir string, base *config.Config, params *ParamVector, best []float64, fe *FitnessEvaluator) error {
	cfg := *base
	params.ApplyToConfig(&cfg, best)
	path := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", path)

	hof := fe.BestHallOfFame()
	if hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	path = filepath.Join(dir, "hall_of_fame.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	slog.Info("hall of fame saved", "path", path)
	return nil
}

// formatDuration renders d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
