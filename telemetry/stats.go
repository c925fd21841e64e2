package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one trainer generation.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Population int `csv:"population"`
	// NextPopulation is the size of the population bred for the next generation.
	NextPopulation int `csv:"next_population"`

	Best     float64 `csv:"best"`
	BestEver float64 `csv:"best_ever"`
	Improved bool    `csv:"improved"`
	// Stagnation counts consecutive generations without a new champion.
	Stagnation int `csv:"stagnation"`

	// Rating distribution
	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	P10  float64 `csv:"p10"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`

	ElapsedMS int64 `csv:"elapsed_ms"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeRatingStats calculates mean, sample standard deviation and
// percentiles of a generation's ratings. values is not modified.
func ComputeRatingStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// SetRatings fills the distribution fields from ratings.
func (s *GenerationStats) SetRatings(ratings []float64) {
	s.Mean, s.Std, s.P10, s.P50, s.P90 = ComputeRatingStats(ratings)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Int("next_population", s.NextPopulation),
		slog.Float64("best", s.Best),
		slog.Float64("best_ever", s.BestEver),
		slog.Bool("improved", s.Improved),
		slog.Int("stagnation", s.Stagnation),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Int64("elapsed_ms", s.ElapsedMS),
	)
}
