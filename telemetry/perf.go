package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for one trainer generation.
const (
	PhaseEvaluate = "evaluate"
	PhaseRank     = "rank"
	PhasePersist  = "persist"
	PhaseBreed    = "breed"
	PhaseReplace  = "replace"
)

// Phases lists the generation phases in execution order.
var Phases = []string{PhaseEvaluate, PhaseRank, PhasePersist, PhaseBreed, PhaseReplace}

const numPhases = 5

func phaseIndex(name string) int {
	for i, p := range Phases {
		if p == name {
			return i
		}
	}
	return -1
}

// genTiming is one generation's wall time split by phase. Only phases that
// were started have seen set.
type genTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
	seen   [numPhases]bool
}

// PerfCollector keeps a ring of the most recent generation timings. Time
// between StartPhase calls is charged to the phase started last. It is not
// safe for concurrent use; the trainer drives it from its loop goroutine.
type PerfCollector struct {
	ring []genTiming
	next int
	n    int

	cur   genTiming
	start time.Time
	mark  time.Time
	phase int
}

// NewPerfCollector averages over the last window generations (10 if window
// is not positive).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 10
	}
	return &PerfCollector{ring: make([]genTiming, window), phase: -1}
}

// StartGeneration resets the per-generation clock.
func (p *PerfCollector) StartGeneration() {
	p.start = time.Now()
	p.mark = p.start
	p.cur = genTiming{}
	p.phase = -1
}

// StartPhase closes the running phase and opens name. Unknown names stop
// phase accounting until the next known phase.
func (p *PerfCollector) StartPhase(name string) {
	p.charge(time.Now())
	p.phase = phaseIndex(name)
	if p.phase >= 0 {
		p.cur.seen[p.phase] = true
	}
}

func (p *PerfCollector) charge(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.mark)
	}
	p.mark = now
}

// EndGeneration stores the running generation in the ring and returns its
// wall time.
func (p *PerfCollector) EndGeneration() time.Duration {
	now := time.Now()
	p.charge(now)
	p.cur.total = now.Sub(p.start)
	p.phase = -1

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.n = min(p.n+1, len(p.ring))
	return p.cur.total
}

// PerfStats summarises the collector's window.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// PhaseAvg and PhasePct hold only phases that ran in the window.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	GenerationsPerSecond float64
}

// Stats aggregates the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.n == 0 {
		return s
	}

	totals := make([]float64, p.n)
	var phaseSum [numPhases]time.Duration
	var seen [numPhases]bool
	for i, g := range p.ring[:p.n] {
		totals[i] = float64(g.total)
		for j := range phaseSum {
			phaseSum[j] += g.phases[j]
			seen[j] = seen[j] || g.seen[j]
		}
	}

	mean := stat.Mean(totals, nil)
	s.AvgDuration = time.Duration(mean)
	s.MinDuration = time.Duration(floats.Min(totals))
	s.MaxDuration = time.Duration(floats.Max(totals))
	if mean > 0 {
		s.GenerationsPerSecond = float64(time.Second) / mean
	}

	for j, name := range Phases {
		if !seen[j] {
			continue
		}
		avg := phaseSum[j] / time.Duration(p.n)
		s.PhaseAvg[name] = avg
		if mean > 0 {
			s.PhasePct[name] = float64(avg) / mean * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_gen_ms", s.AvgDuration.Milliseconds()),
		slog.Int64("min_gen_ms", s.MinDuration.Milliseconds()),
		slog.Int64("max_gen_ms", s.MaxDuration.Milliseconds()),
		slog.Float64("gens_per_sec", s.GenerationsPerSecond),
	}
	for _, name := range Phases {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	Generation  int     `csv:"generation"`
	AvgGenMS    float64 `csv:"avg_gen_ms"`
	MinGenMS    float64 `csv:"min_gen_ms"`
	MaxGenMS    float64 `csv:"max_gen_ms"`
	GensPerSec  float64 `csv:"gens_per_sec"`
	EvaluatePct float64 `csv:"evaluate_pct"`
	RankPct     float64 `csv:"rank_pct"`
	PersistPct  float64 `csv:"persist_pct"`
	BreedPct    float64 `csv:"breed_pct"`
	ReplacePct  float64 `csv:"replace_pct"`
}

// ToCSV flattens s for perf.csv.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	return PerfStatsCSV{
		Generation:  generation,
		AvgGenMS:    ms(s.AvgDuration),
		MinGenMS:    ms(s.MinDuration),
		MaxGenMS:    ms(s.MaxDuration),
		GensPerSec:  s.GenerationsPerSecond,
		EvaluatePct: s.PhasePct[PhaseEvaluate],
		RankPct:     s.PhasePct[PhaseRank],
		PersistPct:  s.PhasePct[PhasePersist],
		BreedPct:    s.PhasePct[PhaseBreed],
		ReplacePct:  s.PhasePct[PhaseReplace],
	}
}

// FrameClock tracks the interactive frame rate as an exponential moving
// average so the status line does not flicker.
type FrameClock struct {
	last time.Time
	fps  float64
}

// fpsSmoothing is the weight of the newest frame in the average.
const fpsSmoothing = 0.1

// Tick marks the start of a frame.
func (c *FrameClock) Tick() { c.tickAt(time.Now()) }

func (c *FrameClock) tickAt(now time.Time) {
	if !c.last.IsZero() {
		if dt := now.Sub(c.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if c.fps == 0 {
				c.fps = inst
			} else {
				c.fps += fpsSmoothing * (inst - c.fps)
			}
		}
	}
	c.last = now
}

// FPS returns the smoothed frame rate, or 0 before two ticks.
func (c *FrameClock) FPS() float64 { return c.fps }
