package fsrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreToGrade(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected Grade
	}{
		{name: "zero is Again", score: 0, expected: Again},
		{name: "just below first band", score: 0.39, expected: Again},
		{name: "boundary 0.4 is Hard", score: 0.4, expected: Hard},
		{name: "boundary 0.6 is Good", score: 0.6, expected: Good},
		{name: "just below Easy band", score: 0.84, expected: Good},
		{name: "boundary 0.85 is Easy", score: 0.85, expected: Easy},
		{name: "perfect score is Easy", score: 1.0, expected: Easy},
		{name: "percentage input is normalized", score: 85, expected: Easy},
		{name: "mid percentage normalizes to Hard", score: 50, expected: Hard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreToGrade(tt.score))
		})
	}
}

func TestInitialStability(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name     string
		score    float64
		expected float64
	}{
		{name: "zero score halves the base", score: 0, expected: 0.5},
		{name: "negative score treated as blank", score: -0.2, expected: 0.5},
		{name: "middling comprehension", score: 0.5, expected: 1.25},
		{name: "strong comprehension", score: 0.9, expected: 1.85},
		{name: "perfect comprehension doubles the base", score: 1.0, expected: 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, p.InitialStability(tt.score), 1e-9)
		})
	}
}

func TestInitialStabilityScalesWithBase(t *testing.T) {
	p := DefaultParams()
	p.BaseStability = 3.0
	assert.InDelta(t, 6.0, p.InitialStability(1.0), 1e-9)
	assert.InDelta(t, 1.5, p.InitialStability(0), 1e-9)
}

func TestGradeString(t *testing.T) {
	assert.Equal(t, "Again", Again.String())
	assert.Equal(t, "Easy", Easy.String())
	assert.Equal(t, "Grade(7)", Grade(7).String())
}

func TestGradeSuccessful(t *testing.T) {
	assert.False(t, Again.Successful())
	assert.False(t, Hard.Successful())
	assert.True(t, Good.Successful())
	assert.True(t, Easy.Successful())
}

func TestGradeFeedback(t *testing.T) {
	for _, g := range []Grade{Again, Hard, Good, Easy} {
		assert.NotEmpty(t, g.Feedback())
	}
	assert.Equal(t, "Review complete.", Grade(0).Feedback())
}
