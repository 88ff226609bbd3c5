package fsrs

import "fmt"

// Grade is the discrete recall-quality signal driving the update rule.
type Grade int

const (
	Again Grade = iota + 1 // Failed to recall.
	Hard                   // Recalled with significant difficulty.
	Good                   // Recalled correctly.
	Easy                   // Recalled perfectly.
)

var gradeNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// String returns the grade name, or "Grade(n)" for invalid values.
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// IsValid reports whether g is within the Again..Easy range.
func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

// Successful reports whether the grade counts as a successful recall.
func (g Grade) Successful() bool {
	return g >= Good
}

// ScoreToGrade converts a continuous score to a grade. Scores above 1
// are treated as percentages and normalized. Bands:
//
//	< 0.40 → Again
//	< 0.60 → Hard
//	< 0.85 → Good
//	else   → Easy
func ScoreToGrade(score float64) Grade {
	if score > 1 {
		score = score / 100
	}

	switch {
	case score < 0.4:
		return Again
	case score < 0.6:
		return Hard
	case score < 0.85:
		return Good
	default:
		return Easy
	}
}

// InitialStability derives the stability of a freshly encoded topic
// from its comprehension score. Better understanding at encoding time
// means a slower forgetting curve: the multiplier ranges from 0.5 for a
// blank summary up to 2.0 for a perfect one.
func (p Params) InitialStability(encodingScore float64) float64 {
	if encodingScore <= 0 {
		return p.BaseStability * 0.5
	}
	return p.BaseStability * (0.5 + encodingScore*1.5)
}

// gradeFeedback maps each grade to the message shown to the learner
// after a recall test.
var gradeFeedback = map[Grade]string{
	Again: "Don't worry! Review the material again and try the test tomorrow.",
	Hard:  "Good effort! You recalled most of it. A quick review will help.",
	Good:  "Great job! Your memory is solidifying. Keep it up!",
	Easy:  "Excellent! Perfect recall. This topic is becoming mastered!",
}

// Feedback returns the learner-facing message for the grade.
func (g Grade) Feedback() string {
	if msg, ok := gradeFeedback[g]; ok {
		return msg
	}
	return "Review complete."
}
