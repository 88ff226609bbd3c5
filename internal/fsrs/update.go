package fsrs

import (
	"fmt"
	"math"
)

// gradeMultipliers are the stability multipliers per grade.
var gradeMultipliers = map[Grade]float64{
	Again: 0.2, // major setback
	Hard:  1.2,
	Good:  2.5,
	Easy:  3.5,
}

// UpdateResult is the revised memory state after a recall.
type UpdateResult struct {
	Stability  float64
	Difficulty float64

	// Retrievability is the pre-update recall probability, computed
	// from the incoming stability and elapsed time. The lifecycle
	// records it on the review event before resetting to 1.0.
	Retrievability float64
}

// Update applies a recall grade to the current memory state and returns
// the new stability and difficulty.
//
// An out-of-range grade never fails the update — it degrades to Good,
// because a malformed external score must not take down scheduling.
// Structurally invalid numeric state (NaN, non-positive stability,
// difficulty outside [1,10] bounds of sanity, negative elapsed time)
// indicates a corrupted record and returns ErrInvalidInput.
func (p Params) Update(stability, difficulty float64, grade Grade, daysElapsed float64) (UpdateResult, error) {
	if math.IsNaN(stability) || stability <= 0 {
		return UpdateResult{}, fmt.Errorf("%w: stability %v", ErrInvalidInput, stability)
	}
	if math.IsNaN(difficulty) || difficulty < 1 || difficulty > 10 {
		return UpdateResult{}, fmt.Errorf("%w: difficulty %v", ErrInvalidInput, difficulty)
	}
	if math.IsNaN(daysElapsed) || daysElapsed < 0 {
		return UpdateResult{}, fmt.Errorf("%w: days elapsed %v", ErrInvalidInput, daysElapsed)
	}

	multiplier, ok := gradeMultipliers[grade]
	if !ok {
		grade = Good
		multiplier = gradeMultipliers[Good]
	}

	retrievability := Retrievability(stability, daysElapsed)

	var newStability float64
	if grade == Again {
		// Hard reset toward the floor, ignoring difficulty.
		newStability = math.Max(p.StabilityFloor, stability*multiplier)
	} else {
		// Easier topics get a larger modifier, in [0.1, 1.0].
		difficultyModifier := (11 - difficulty) / 10
		if retrievability < p.LowRetentionThreshold {
			// Rescuing an already-decayed topic earns extra credit.
			multiplier *= 1 + (1-retrievability)*p.LowRetentionWeight
		}
		newStability = stability * multiplier * difficultyModifier
	}

	if newStability > float64(p.MaxIntervalDays) {
		newStability = float64(p.MaxIntervalDays)
	}

	newDifficulty := difficulty
	switch grade {
	case Again:
		newDifficulty = math.Min(10, difficulty+0.5)
	case Easy:
		newDifficulty = math.Max(1, difficulty-0.3)
	}

	return UpdateResult{
		Stability:      newStability,
		Difficulty:     newDifficulty,
		Retrievability: retrievability,
	}, nil
}
