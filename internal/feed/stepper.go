package feed

import "math"

// Stepper moves a value by one bounded random step.
// u is drawn uniformly from [-1, 1).
type Stepper interface {
	Step(v, u float64) float64
}

// Multiplicative scales the value by (1 + u*MaxDelta), so one step never moves it
// by more than MaxDelta of its current size.
type Multiplicative struct {
	MaxDelta float64
}

func (m Multiplicative) Step(v, u float64) float64 {
	return v * (1 + clampUnit(u)*m.MaxDelta)
}

// Additive shifts the value by u*MaxStep and keeps it within [Min, Max].
type Additive struct {
	MaxStep float64
	Min     float64
	Max     float64
}

func (a Additive) Step(v, u float64) float64 {
	return math.Max(a.Min, math.Min(a.Max, v+clampUnit(u)*a.MaxStep))
}

// Resample replaces the value with a fresh draw from [Min, Max).
type Resample struct {
	Min float64
	Max float64
}

func (r Resample) Step(_, u float64) float64 {
	return r.Min + (clampUnit(u)+1)/2*(r.Max-r.Min)
}

func clampUnit(u float64) float64 {
	return math.Max(-1, math.Min(1, u))
}
