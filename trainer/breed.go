package trainer

import (
	"math/rand"
	"slices"
	"sort"

	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/neural"
)

// roulette picks indices with probability proportional to their rating
// after shifting all ratings to be non-negative. The lowest-rated individual
// gets zero weight unless every rating is equal, in which case picks are
// uniform.
type roulette struct {
	cumulative []float64
}

func newRoulette(ratings []float64) roulette {
	r := roulette{cumulative: make([]float64, len(ratings))}
	if len(ratings) == 0 {
		return r
	}

	low := slices.Min(ratings)
	var total float64
	for i, v := range ratings {
		total += v - low
		r.cumulative[i] = total
	}
	if total == 0 {
		for i := range r.cumulative {
			r.cumulative[i] = float64(i + 1)
		}
	}
	return r
}

func (r roulette) pick(rng *rand.Rand) int {
	n := len(r.cumulative)
	x := rng.Float64() * r.cumulative[n-1]
	return sort.Search(n, func(i int) bool { return r.cumulative[i] > x })
}

// eliteCount returns the number of elite individuals in a population of n.
func eliteCount(n int, fraction float64) int {
	return min(n, max(1, int(float64(n)*fraction)))
}

// breed builds the next generation from games ranked best first. It runs on
// the trainer goroutine only, after evaluation has joined.
//
// Order: champion clone, elite clones, mutated elites, random brains, then
// roulette offspring (clone of one parent crossed with another and mutated).
// The list is truncated to the current population size.
func (t *Trainer) breed(ranked []arcade.Game, ratings []float64) ([]*neural.Brain, error) {
	size := t.popSize
	next := make([]*neural.Brain, 0, size+2*len(ranked))

	if c := t.champion.Load(); c != nil {
		next = append(next, c.Brain.Clone())
	}

	elite := ranked[:eliteCount(len(ranked), t.opts.EliteFraction)]
	for _, g := range elite {
		next = append(next, g.Brain().Clone())
	}
	for _, g := range elite {
		m := g.Brain().Clone()
		m.Mutate(t.opts.MutationRate)
		next = append(next, m)
	}

	randomN := int(float64(size) * t.opts.RandomFraction)
	for i := 0; i < randomN && len(next) < size; i++ {
		b, err := t.newBrain(t.rng)
		if err != nil {
			return nil, err
		}
		next = append(next, b)
	}

	wheel := newRoulette(ratings)
	for len(next) < size {
		a := ranked[wheel.pick(t.rng)].Brain()
		b := ranked[wheel.pick(t.rng)].Brain()

		child := a.Clone()
		if err := child.CrossWith(b, t.opts.CrossoverRate); err != nil {
			return nil, err
		}
		child.Mutate(t.opts.MutationRate)
		next = append(next, child)
	}

	return next[:size], nil
}
