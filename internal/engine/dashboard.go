package engine

import (
	"fmt"

	"github.com/mnemon/mnemon/internal/fsrs"
)

const millisPerDay = 24 * 60 * 60 * 1000

// TopicSnapshot is one dashboard row: the recomputed-on-read view of a
// topic's retention.
type TopicSnapshot struct {
	TopicID        int64       `json:"topic_id"`
	TopicKind      string      `json:"topic_kind"`
	TopicName      string      `json:"topic_name"`
	Stability      float64     `json:"stability"`
	Retrievability float64     `json:"retrievability"`
	Status         fsrs.Status `json:"status"`
	Color          string      `json:"color"`
	DaysUntilDue   int         `json:"days_until_review"`
	NextDueAt      *int64      `json:"next_due_at,omitempty"`
	LastReviewAt   *int64      `json:"last_reviewed,omitempty"`
}

// Dashboard aggregates a user's active topics.
type Dashboard struct {
	Topics           []TopicSnapshot `json:"topics"`
	DueToday         int             `json:"due_today"`
	CriticalCount    int             `json:"critical_count"`
	AverageRetention float64         `json:"average_retention"`
}

// Dashboard returns the current retention picture for a user. Inactive
// topics are excluded; retrievability is recomputed from stability and
// elapsed time, never read from the stored snapshot.
func (e *Engine) Dashboard(userID int64) (*Dashboard, error) {
	logs, err := e.DB.ListActiveTopicLogs(userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	nowMillis := now.UnixMilli()

	dash := &Dashboard{Topics: make([]TopicSnapshot, 0, len(logs))}
	totalRetention := 0.0

	for i := range logs {
		tl := &logs[i]

		r := currentRetrievability(tl, now, tl.Stability)
		status := fsrs.RetentionStatus(r)

		daysUntil := 0
		if tl.NextDueAt != nil {
			if d := int(float64(*tl.NextDueAt-nowMillis) / millisPerDay); d > 0 {
				daysUntil = d
			}
			if *tl.NextDueAt <= nowMillis {
				dash.DueToday++
			}
		}
		if status.AtRisk() {
			dash.CriticalCount++
		}
		totalRetention += r

		name := tl.TopicName
		if name == "" {
			name = fmt.Sprintf("Topic %d", tl.TopicID)
		}

		dash.Topics = append(dash.Topics, TopicSnapshot{
			TopicID:        tl.TopicID,
			TopicKind:      tl.TopicKind,
			TopicName:      name,
			Stability:      tl.Stability,
			Retrievability: r,
			Status:         status,
			Color:          fsrs.ColorFor(r),
			DaysUntilDue:   daysUntil,
			NextDueAt:      tl.NextDueAt,
			LastReviewAt:   tl.LastReviewAt,
		})
	}

	if len(logs) > 0 {
		dash.AverageRetention = totalRetention / float64(len(logs))
	}
	return dash, nil
}

// DueTopics returns the topic ids due for review now, soonest first.
func (e *Engine) DueTopics(userID int64) ([]int64, error) {
	logs, err := e.DB.ListDueTopicLogs(userID, e.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(logs))
	for i, tl := range logs {
		ids[i] = tl.TopicID
	}
	return ids, nil
}
