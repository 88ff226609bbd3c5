// Package fsrs implements the forgetting-curve memory model used to
// schedule topic reviews: exponential decay of retrievability, the
// grade-driven stability/difficulty update rule, and the derived
// status and visualization helpers.
//
// Everything in this package is a pure computation over plain values.
// Persistence and orchestration live in internal/store and
// internal/engine.
package fsrs

import "errors"

// ErrInvalidInput is returned when a caller passes structurally invalid
// numeric state (NaN, non-positive stability, negative elapsed time).
// Out-of-range grades are NOT an error — they degrade to Good.
var ErrInvalidInput = errors.New("fsrs: invalid input")

// Params holds the tunable policy constants of the model. The defaults
// reproduce the behavior the rest of the system was calibrated against;
// treat them as policy, not derived truths.
type Params struct {
	// BaseStability is the stability assigned to a perfectly blank
	// first encoding, in days.
	BaseStability float64

	// TargetRetention is the retrievability threshold a review is
	// scheduled to intercept (0.9 = review when recall odds drop to 90%).
	TargetRetention float64

	// MaxIntervalDays caps both review intervals and stability itself.
	MaxIntervalDays int

	// StabilityFloor is the minimum stability after a failed recall.
	StabilityFloor float64

	// LowRetentionThreshold and LowRetentionWeight control the bonus
	// applied when a topic is reviewed after significant decay:
	// rescuing a nearly forgotten topic earns more stability than
	// reviewing just in time.
	LowRetentionThreshold float64
	LowRetentionWeight    float64
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		BaseStability:         1.0,
		TargetRetention:       0.9,
		MaxIntervalDays:       365,
		StabilityFloor:        0.5,
		LowRetentionThreshold: 0.8,
		LowRetentionWeight:    0.3,
	}
}
