package fsrs

import "math"

// Retrievability computes the probability of successful recall after
// daysElapsed days without review, using the forgetting curve
// R(t) = e^(-t/S).
//
// Defensive: returns 0.0 for non-positive stability, negative elapsed
// time, or NaN inputs rather than producing NaN/negative values. The
// lifecycle never passes such values; callers bypassing it get a floor,
// not a panic.
func Retrievability(stability, daysElapsed float64) float64 {
	if math.IsNaN(stability) || math.IsNaN(daysElapsed) {
		return 0.0
	}
	if stability <= 0 || daysElapsed < 0 {
		return 0.0
	}
	return math.Exp(-daysElapsed / stability)
}

// Interval returns the whole number of days until retrievability decays
// from 1.0 to target, solving target = e^(-t/S) for t. The result is
// clamped to [1, MaxIntervalDays].
func (p Params) Interval(stability, target float64) int {
	if stability <= 0 || math.IsNaN(stability) {
		return 1
	}
	if target <= 0 || target >= 1 || math.IsNaN(target) {
		target = p.TargetRetention
	}

	interval := int(-stability * math.Log(target))
	if interval < 1 {
		return 1
	}
	if interval > p.MaxIntervalDays {
		return p.MaxIntervalDays
	}
	return interval
}

// NextInterval returns the days until the next review at the configured
// target retention.
func (p Params) NextInterval(stability float64) int {
	return p.Interval(stability, p.TargetRetention)
}
