package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemon/mnemon/internal/fsrs"
	"github.com/mnemon/mnemon/internal/store"
)

// seedLog inserts a topic log with a controlled review history so the
// recomputed retrievability is deterministic.
func seedLog(t *testing.T, eng *Engine, topicID int64, name string, stability float64, lastReview, nextDue time.Time) {
	t.Helper()
	last := lastReview.UnixMilli()
	due := nextDue.UnixMilli()
	tl := &store.TopicLog{
		UserID:         1,
		TopicID:        topicID,
		TopicKind:      "video",
		TopicName:      name,
		Stability:      stability,
		Difficulty:     5.0,
		Retrievability: 1.0,
		LearnedAt:      &last,
		LastReviewAt:   &last,
		NextDueAt:      &due,
		Status:         store.StatusReviewing,
		Active:         true,
	}
	require.NoError(t, eng.DB.CreateTopicLog(tl))
}

func TestDashboard(t *testing.T) {
	eng, nowp := testEngine(t)
	now := *nowp

	// Reviewed just now: R=1.0.
	seedLog(t, eng, 1, "Fresh", 5.0, now, now.AddDate(0, 0, 5))
	// Two days ago with S=2/ln2: R=0.5, critical and already due.
	seedLog(t, eng, 2, "Fading", 2.0/math.Ln2, now.AddDate(0, 0, -2), now.Add(-time.Hour))
	// Ten days ago with S=1: effectively forgotten, overdue.
	seedLog(t, eng, 3, "", 1.0, now.AddDate(0, 0, -10), now.AddDate(0, 0, -9))

	dash, err := eng.Dashboard(1)
	require.NoError(t, err)
	require.Len(t, dash.Topics, 3)

	byID := map[int64]TopicSnapshot{}
	for _, s := range dash.Topics {
		byID[s.TopicID] = s
	}

	fresh := byID[1]
	assert.InDelta(t, 1.0, fresh.Retrievability, 1e-9)
	assert.Equal(t, fsrs.StatusMastered, fresh.Status)
	assert.Equal(t, "green", fresh.Color)
	assert.Equal(t, 5, fresh.DaysUntilDue)

	fading := byID[2]
	assert.InDelta(t, 0.5, fading.Retrievability, 1e-9)
	assert.Equal(t, fsrs.StatusCritical, fading.Status)
	assert.Equal(t, "red", fading.Color)
	assert.Equal(t, 0, fading.DaysUntilDue)

	gone := byID[3]
	assert.Equal(t, fsrs.StatusForgotten, gone.Status)
	assert.Equal(t, "Topic 3", gone.TopicName)

	assert.Equal(t, 2, dash.DueToday)
	assert.Equal(t, 2, dash.CriticalCount)
	wantAvg := (1.0 + 0.5 + math.Exp(-10)) / 3
	assert.InDelta(t, wantAvg, dash.AverageRetention, 1e-9)
}

func TestDashboardEmpty(t *testing.T) {
	eng, _ := testEngine(t)

	dash, err := eng.Dashboard(1)
	require.NoError(t, err)
	assert.Empty(t, dash.Topics)
	assert.Equal(t, 0.0, dash.AverageRetention)
	assert.Equal(t, 0, dash.DueToday)
}

func TestDueTopicsOrdered(t *testing.T) {
	eng, nowp := testEngine(t)
	now := *nowp

	seedLog(t, eng, 1, "a", 2, now.AddDate(0, 0, -1), now.Add(-time.Hour))
	seedLog(t, eng, 2, "b", 2, now.AddDate(0, 0, -5), now.AddDate(0, 0, -4))
	seedLog(t, eng, 3, "c", 2, now, now.AddDate(0, 0, 3))

	ids, err := eng.DueTopics(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids)
}

func TestDecayCurveFromEngine(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.SubmitEncoding(EncodingRequest{UserID: 1, TopicID: 42, TopicName: "Memory", Score: 1.0})
	require.NoError(t, err)

	curve, err := eng.DecayCurve(1, 42, "video", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "Memory", curve.TopicName)
	assert.InDelta(t, 2.0, curve.Stability, 1e-9)
	require.Len(t, curve.Points, 6)
	assert.InDelta(t, math.Exp(-5.0/2.0), curve.Points[5].Retention, 1e-9)
}

func TestDecayCurveDefaultsAndReviews(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.SubmitEncoding(EncodingRequest{UserID: 1, TopicID: 42, Score: 1.0})
	require.NoError(t, err)

	// Non-positive horizon falls back to ten days.
	curve, err := eng.DecayCurve(1, 42, "", 0, nil)
	require.NoError(t, err)
	assert.Len(t, curve.Points, 11)

	curve, err = eng.DecayCurve(1, 42, "", 5, []fsrs.ReviewPoint{{Day: 2, Stability: 8}})
	require.NoError(t, err)
	assert.True(t, curve.Points[2].Reviewed)
	assert.InDelta(t, math.Exp(-3.0/8.0), curve.Points[3].Retention, 1e-9)
}

func TestDecayCurveUnknownTopic(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.DecayCurve(1, 999, "video", 10, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
