package engine

import (
	"fmt"

	"github.com/mnemon/mnemon/internal/fsrs"
	"github.com/mnemon/mnemon/internal/store"
)

// DecayCurve is the projected retention curve for one topic.
type DecayCurve struct {
	TopicID   int64             `json:"topic_id"`
	TopicName string            `json:"topic_name"`
	Stability float64           `json:"stability"`
	Points    []fsrs.CurvePoint `json:"curve_points"`
}

// DecayCurve projects the topic's retention over the coming days,
// optionally replaying hypothetical future reviews. Returns ErrNotFound
// for an unknown topic.
func (e *Engine) DecayCurve(userID, topicID int64, topicKind string, days int, reviews []fsrs.ReviewPoint) (*DecayCurve, error) {
	var tl *store.TopicLog
	var err error
	if topicKind != "" {
		tl, err = e.DB.GetTopicLog(userID, topicID, topicKind)
	} else {
		tl, err = e.DB.GetTopicLogByTopic(userID, topicID)
	}
	if err != nil {
		return nil, err
	}
	if tl == nil {
		return nil, fmt.Errorf("curve for user %d topic %d: %w", userID, topicID, ErrNotFound)
	}

	if days <= 0 {
		days = 10
	}

	name := tl.TopicName
	if name == "" {
		name = fmt.Sprintf("Topic %d", tl.TopicID)
	}

	return &DecayCurve{
		TopicID:   tl.TopicID,
		TopicName: name,
		Stability: tl.Stability,
		Points:    fsrs.Project(tl.Stability, days, reviews),
	}, nil
}
