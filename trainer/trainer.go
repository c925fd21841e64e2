// Package trainer evolves populations of brains by playing them against a
// game, keeping the best-ever brain as the champion.
package trainer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"math/rand"
	"slices"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/neural"
	"github.com/pthm-cable/retroterm/telemetry"
)

// ErrPersist wraps failures to encode or save a new champion. The champion
// is still adopted; the next improvement will try to save again.
var ErrPersist = errors.New("trainer: champion not persisted")

// Phase is the step of the generation loop currently running.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseEvaluate
	PhaseRank
	PhasePersist
	PhaseBreed
	PhaseReplace
)

func (p Phase) String() string {
	switch p {
	case PhaseEvaluate:
		return telemetry.PhaseEvaluate
	case PhaseRank:
		return telemetry.PhaseRank
	case PhasePersist:
		return telemetry.PhasePersist
	case PhaseBreed:
		return telemetry.PhaseBreed
	case PhaseReplace:
		return telemetry.PhaseReplace
	}
	return "idle"
}

// Champion is the best-ever brain. Its Brain is owned by the trainer and
// must only be read or cloned.
type Champion struct {
	Brain      *neural.Brain
	Rating     float64
	Generation int
	// Data is the serialised brain, nil if encoding failed.
	Data  []byte
	Stats map[string]float64
	Found time.Time
}

// Report summarises one generation.
type Report struct {
	telemetry.GenerationStats
	// Game holds the game-specific stats of this generation's best instance.
	Game map[string]float64
}

// LogValue implements slog.LogValuer for structured logging.
func (r Report) LogValue() slog.Value {
	attrs := r.GenerationStats.LogValue().Group()
	for _, k := range slices.Sorted(maps.Keys(r.Game)) {
		attrs = append(attrs, slog.Float64(k, r.Game[k]))
	}
	return slog.GroupValue(attrs...)
}

// Trainer runs the evolutionary loop. Step, Run and Seed must not be called
// concurrently; Champion, Phase and LastReport are safe from any goroutine.
type Trainer struct {
	factory  arcade.Factory
	opts     Options
	newBrain NewBrainFunc
	rng      *rand.Rand
	eval     *evaluator
	perf     *telemetry.PerfCollector

	games      []arcade.Game
	generation int
	popSize    int
	bestEver   float64
	stagnation int

	champion   atomic.Pointer[Champion]
	lastReport atomic.Pointer[Report]
	phase      atomic.Int32

	onChampion func(context.Context, Champion) error
	onReport   func(Report)

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New creates a trainer with a random initial population. It fails if the
// brains built by newBrain cannot play games from factory.
func New(factory arcade.Factory, opts Options, newBrain NewBrainFunc) (*Trainer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	t := &Trainer{
		factory:  factory,
		opts:     opts,
		newBrain: newBrain,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		eval:     newEvaluator(opts.Workers),
		perf:     telemetry.NewPerfCollector(opts.PerfWindow),
		popSize:  opts.Population,
		bestEver: math.Inf(-1),
	}

	brains := make([]*neural.Brain, opts.Population)
	for i := range brains {
		b, err := newBrain(t.rng)
		if err != nil {
			return nil, fmt.Errorf("initial population: %w", err)
		}
		brains[i] = b
	}
	if err := arcade.ValidateEncoder(factory, brains[0].Topology()); err != nil {
		return nil, err
	}

	t.replace(brains)
	return t, nil
}

// OnChampion registers a callback invoked on the trainer goroutine whenever
// a new champion is found. A returned error is reported as ErrPersist.
func (t *Trainer) OnChampion(fn func(context.Context, Champion) error) {
	t.onChampion = fn
}

// OnReport registers a callback invoked on the trainer goroutine after
// every generation.
func (t *Trainer) OnReport(fn func(Report)) {
	t.onReport = fn
}

// Seed adopts a previously saved champion, typically loaded from storage on
// startup. It replaces the first individual of the current population.
func (t *Trainer) Seed(brain *neural.Brain, rating float64, generation int) error {
	if err := arcade.ValidateEncoder(t.factory, brain.Topology()); err != nil {
		return err
	}
	data, err := brain.Save()
	if err != nil {
		return fmt.Errorf("encode seeded champion: %w", err)
	}

	t.champion.Store(&Champion{
		Brain:      brain.Clone(),
		Rating:     rating,
		Generation: generation,
		Data:       data,
		Found:      time.Now(),
	})
	t.bestEver = rating
	t.games[0] = t.factory.New(brain.Clone(), int64(t.generation))
	return nil
}

// Champion returns a snapshot of the best-ever brain.
func (t *Trainer) Champion() (Champion, bool) {
	c := t.champion.Load()
	if c == nil {
		return Champion{}, false
	}
	return *c, true
}

// LastReport returns the report of the most recent generation.
func (t *Trainer) LastReport() (Report, bool) {
	r := t.lastReport.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

// Phase returns the phase the generation loop is in.
func (t *Trainer) Phase() Phase {
	return Phase(t.phase.Load())
}

func (t *Trainer) setPhase(p Phase) {
	t.phase.Store(int32(p))
	if p != PhaseIdle {
		t.perf.StartPhase(p.String())
	}
}

// Generation returns the index of the next generation to evaluate. Not safe
// while the trainer is running; use LastReport instead.
func (t *Trainer) Generation() int { return t.generation }

// PopulationSize returns the size of the current population. Not safe while
// the trainer is running.
func (t *Trainer) PopulationSize() int { return len(t.games) }

// Perf returns the phase timing collector. Read it from OnReport.
func (t *Trainer) Perf() *telemetry.PerfCollector { return t.perf }

// replace builds one game per brain, all seeded with the generation index.
func (t *Trainer) replace(brains []*neural.Brain) {
	games := make([]arcade.Game, len(brains))
	for i, b := range brains {
		games[i] = t.factory.New(b, int64(t.generation))
	}
	t.games = games
}

// Step runs one full generation. Errors wrapping ErrPersist leave the
// trainer ready for the next Step; other errors are fatal.
func (t *Trainer) Step(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	defer t.setPhase(PhaseIdle)
	t.perf.StartGeneration()
	gen := t.generation

	t.setPhase(PhaseEvaluate)
	t.eval.evaluate(t.games)

	t.setPhase(PhaseRank)
	ranked := slices.Clone(t.games)
	slices.SortStableFunc(ranked, func(a, b arcade.Game) int {
		return cmp.Compare(b.Rating(), a.Rating())
	})
	ratings := make([]float64, len(ranked))
	for i, g := range ranked {
		ratings[i] = g.Rating()
	}
	best := ranked[0]

	t.setPhase(PhasePersist)
	report := Report{
		GenerationStats: telemetry.GenerationStats{
			Generation: gen,
			Population: len(ranked),
			Best:       best.Rating(),
		},
		Game: best.Stats(),
	}
	var persistErr error
	if best.Rating() > t.bestEver {
		t.bestEver = best.Rating()
		t.stagnation = 0
		report.Improved = true
		persistErr = t.persist(ctx, best, gen)
	} else {
		t.stagnation++
		t.popSize = max(t.opts.MinPopulation, t.popSize-t.opts.ShrinkStep)
	}
	report.BestEver = t.bestEver
	report.Stagnation = t.stagnation

	t.setPhase(PhaseBreed)
	next, err := t.breed(ranked, ratings)
	if err != nil {
		return report, fmt.Errorf("breed generation %d: %w", gen, err)
	}

	t.setPhase(PhaseReplace)
	t.generation++
	t.replace(next)

	report.NextPopulation = len(next)
	report.SetRatings(ratings)
	report.ElapsedMS = t.perf.EndGeneration().Milliseconds()

	t.lastReport.Store(&report)
	if t.onReport != nil {
		t.onReport(report)
	}
	return report, persistErr
}

// persist adopts g's brain as champion and hands it to the OnChampion
// callback. The champion is adopted even when saving fails.
func (t *Trainer) persist(ctx context.Context, g arcade.Game, gen int) error {
	brain := g.Brain().Clone()
	data, encErr := brain.Save()

	c := &Champion{
		Brain:      brain,
		Rating:     g.Rating(),
		Generation: gen,
		Data:       data,
		Stats:      g.Stats(),
		Found:      time.Now(),
	}
	t.champion.Store(c)

	if encErr != nil {
		return fmt.Errorf("%w: %w", ErrPersist, encErr)
	}
	if t.onChampion != nil {
		if err := t.onChampion(ctx, *c); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	return nil
}

// Run steps generations until ctx is cancelled or MaxGenerations is
// reached. Cancellation is checked between generations only. Persistence
// failures are logged and training continues.
func (t *Trainer) Run(ctx context.Context) error {
	defer t.eval.stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if t.opts.MaxGenerations > 0 && t.generation >= t.opts.MaxGenerations {
			return nil
		}

		if _, err := t.Step(ctx); err != nil {
			if errors.Is(err, ErrPersist) {
				slog.Warn("champion save failed", "generation", t.generation-1, "error", err)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Start runs the trainer on its own goroutine.
func (t *Trainer) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go func() {
		defer close(t.done)
		t.err = t.Run(ctx)
	}()
}

// Stop asks a started trainer to finish its current generation and exit.
func (t *Trainer) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Wait blocks until a started trainer exits and returns its error.
func (t *Trainer) Wait() error {
	if t.done == nil {
		return nil
	}
	<-t.done
	return t.err
}
