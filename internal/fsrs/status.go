package fsrs

// Status is the display band for a topic's current retrievability.
// It is distinct from the lifecycle status stored on a topic log, which
// additionally factors in review counts.
type Status string

const (
	StatusMastered   Status = "mastered"
	StatusStable     Status = "stable"
	StatusReviewSoon Status = "review_soon"
	StatusCritical   Status = "critical"
	StatusForgotten  Status = "forgotten"
)

// RetentionStatus classifies a retrievability value into a display band.
func RetentionStatus(r float64) Status {
	switch {
	case r >= 0.95:
		return StatusMastered
	case r >= 0.85:
		return StatusStable
	case r >= 0.70:
		return StatusReviewSoon
	case r >= 0.50:
		return StatusCritical
	default:
		return StatusForgotten
	}
}

// AtRisk reports whether the band warrants inclusion in the critical
// count on dashboards.
func (s Status) AtRisk() bool {
	return s == StatusCritical || s == StatusForgotten
}

// ColorFor returns the heatmap color for a retrievability value.
func ColorFor(r float64) string {
	switch {
	case r >= 0.85:
		return "green"
	case r >= 0.70:
		return "yellow"
	default:
		return "red"
	}
}
