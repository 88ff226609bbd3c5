package fsrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetentionStatus(t *testing.T) {
	tests := []struct {
		r        float64
		expected Status
	}{
		{1.0, StatusMastered},
		{0.95, StatusMastered},
		{0.90, StatusStable},
		{0.85, StatusStable},
		{0.80, StatusReviewSoon},
		{0.70, StatusReviewSoon},
		{0.60, StatusCritical},
		{0.50, StatusCritical},
		{0.49, StatusForgotten},
		{0.0, StatusForgotten},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RetentionStatus(tt.r), "R=%v", tt.r)
	}
}

func TestStatusAtRisk(t *testing.T) {
	assert.True(t, StatusCritical.AtRisk())
	assert.True(t, StatusForgotten.AtRisk())
	assert.False(t, StatusMastered.AtRisk())
	assert.False(t, StatusStable.AtRisk())
	assert.False(t, StatusReviewSoon.AtRisk())
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		r        float64
		expected string
	}{
		{1.0, "green"},
		{0.85, "green"},
		{0.84, "yellow"},
		{0.70, "yellow"},
		{0.69, "red"},
		{0.0, "red"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ColorFor(tt.r), "R=%v", tt.r)
	}
}
