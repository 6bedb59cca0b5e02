package app

import "math"

// Clamp multipliers around the room's base price. The model extrapolates;
// these bounds keep a badly calibrated prediction inside a commercially
// plausible band. Fixed for the whole deployment.
const (
	minPriceFactor = 0.7
	maxPriceFactor = 1.8
)

// Clamp bounds a raw model price to [0.7*base, 1.8*base].
func Clamp(raw, base float64) float64 {
	return math.Max(minPriceFactor*base, math.Min(raw, maxPriceFactor*base))
}

// round2 rounds to two decimals for display; callers never see the
// unrounded value.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
