package main

import (
	"github.com/pthm-cable/retroterm/config"
)

// ParamSpec bounds one tuned setting.
type ParamSpec struct {
	Name     string
	Path     string // YAML path in config
	Min, Max float64
	Default  float64
}

// ParamVector is the ordered list of tuned settings.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the selection and variation settings of the
// trainer. ApplyToConfig and evalRecord depend on this order.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Selection
			{Name: "elite_fraction", Path: "evolution.elite_fraction", Min: 0.02, Max: 0.3, Default: 0.1},
			{Name: "random_fraction", Path: "evolution.random_fraction", Min: 0, Max: 0.2, Default: 0.05},
			// Variation
			{Name: "mutation_rate", Path: "evolution.mutation_rate", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "crossover_rate", Path: "evolution.crossover_rate", Min: 0.05, Max: 0.95, Default: 0.5},
			{Name: "mutation_sigma", Path: "brain.mutation_sigma", Min: 0.02, Max: 1.0, Default: 0.3},
			{Name: "nudge_sigma", Path: "brain.nudge_sigma", Min: 0, Max: 0.1, Default: 0.02},
		},
	}
}

// normalize maps v from [Min, Max] onto [0, 1].
func (s ParamSpec) normalize(v float64) float64 {
	return (v - s.Min) / (s.Max - s.Min)
}

// denormalize maps u from [0, 1] back onto [Min, Max].
func (s ParamSpec) denormalize(u float64) float64 {
	return s.Min + u*(s.Max-s.Min)
}

func (s ParamSpec) clamp(v float64) float64 {
	return min(s.Max, max(s.Min, v))
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// each builds a vector by applying fn to every spec and the matching value
// of v. v may be nil when fn ignores it.
func (pv *ParamVector) each(v []float64, fn func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		var x float64
		if v != nil {
			x = v[i]
		}
		out[i] = fn(spec, x)
	}
	return out
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(nil, func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps raw values onto the unit cube CMA-ES searches.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(raw, ParamSpec.normalize)
}

// Denormalize maps unit-cube values back to raw values. The result may lie
// outside the bounds; Clamp it before use.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	return pv.each(normalized, ParamSpec.denormalize)
}

// Clamp limits every value to its bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(v, ParamSpec.clamp)
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Evolution.EliteFraction = c[0]
	cfg.Evolution.RandomFraction = c[1]
	cfg.Evolution.MutationRate = c[2]
	cfg.Evolution.CrossoverRate = c[3]
	cfg.Brain.MutationSigma = float32(c[4])
	cfg.Brain.NudgeSigma = float32(c[5])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Evolution.EliteFraction,
		cfg.Evolution.RandomFraction,
		cfg.Evolution.MutationRate,
		cfg.Evolution.CrossoverRate,
		float64(cfg.Brain.MutationSigma),
		float64(cfg.Brain.NudgeSigma),
	}
}
