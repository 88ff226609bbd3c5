package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Review event kinds.
const (
	ReviewEncoding       = "encoding"
	ReviewRecallTest     = "recall_test"
	ReviewManualOverride = "manual_override"
)

// ReviewEvent is one append-only audit entry: a first encoding, a
// recall test, or a manual override. Events are never updated or
// deleted; the topic log's state could be reconstructed from them.
type ReviewEvent struct {
	ID         int64
	TopicLogID int64
	UserID     int64
	Kind       string
	Grade      *int
	Score      *float64

	StabilityBefore        float64
	StabilityAfter         float64
	RetrievabilityAtReview float64

	UserInput string
	Feedback  string
	CreatedAt int64
}

// AppendReviewEvent inserts a review event and fills in its ID and
// creation timestamp.
func (db *DB) AppendReviewEvent(ev *ReviewEvent) error {
	now := time.Now().UnixMilli()

	result, err := db.Exec(`
		INSERT INTO review_events (topic_log_id, user_id, kind, grade, score,
			stability_before, stability_after, retrievability_at_review,
			user_input, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)
	`, ev.TopicLogID, ev.UserID, ev.Kind, ev.Grade, ev.Score,
		ev.StabilityBefore, ev.StabilityAfter, ev.RetrievabilityAtReview,
		ev.UserInput, ev.Feedback, now)
	if err != nil {
		return fmt.Errorf("append review event: %w", err)
	}

	id, _ := result.LastInsertId()
	ev.ID = id
	ev.CreatedAt = now
	return nil
}

// ListReviewEvents returns all events for a topic log, oldest first.
func (db *DB) ListReviewEvents(topicLogID int64) ([]ReviewEvent, error) {
	rows, err := db.Query(`
		SELECT id, topic_log_id, user_id, kind, grade, score,
			stability_before, stability_after, retrievability_at_review,
			user_input, feedback, created_at
		FROM review_events
		WHERE topic_log_id = ?
		ORDER BY created_at ASC, id ASC
	`, topicLogID)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer rows.Close()

	var events []ReviewEvent
	for rows.Next() {
		var ev ReviewEvent
		var grade sql.NullInt64
		var score sql.NullFloat64
		var input, feedback sql.NullString

		if err := rows.Scan(
			&ev.ID, &ev.TopicLogID, &ev.UserID, &ev.Kind, &grade, &score,
			&ev.StabilityBefore, &ev.StabilityAfter, &ev.RetrievabilityAtReview,
			&input, &feedback, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}

		if grade.Valid {
			g := int(grade.Int64)
			ev.Grade = &g
		}
		if score.Valid {
			ev.Score = &score.Float64
		}
		ev.UserInput = input.String
		ev.Feedback = feedback.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountReviewEvents returns the number of events recorded for a topic log.
func (db *DB) CountReviewEvents(topicLogID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM review_events WHERE topic_log_id = ?`, topicLogID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count review events: %w", err)
	}
	return count, nil
}
