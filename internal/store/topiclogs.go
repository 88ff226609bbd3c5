package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Lifecycle statuses for a topic log. Derived and stored for fast
// querying; always re-derivable from the numeric state and history.
const (
	StatusNew          = "new"
	StatusLearned      = "learned"
	StatusWeakEncoding = "weak_encoding"
	StatusReviewing    = "reviewing"
	StatusForgotten    = "forgotten"
	StatusMastered     = "mastered"
)

// TopicLog tracks retention state for one (user, topic, kind) tuple.
// Timestamps are unix milliseconds; nil means "never".
type TopicLog struct {
	ID        int64
	UserID    int64
	TopicID   int64
	TopicKind string
	TopicName string

	Stability      float64
	Difficulty     float64
	Retrievability float64

	InitialEncodingScore *float64
	LastRecallGrade      *int
	TotalReviews         int
	SuccessfulRecalls    int

	LearnedAt    *int64
	LastReviewAt *int64
	NextDueAt    *int64
	CreatedAt    int64
	UpdatedAt    int64

	Status string
	Active bool
}

const topicLogColumns = `id, user_id, topic_id, topic_kind, topic_name,
	stability, difficulty, retrievability,
	initial_encoding_score, last_recall_grade, total_reviews, successful_recalls,
	learned_at, last_review_at, next_due_at, created_at, updated_at,
	status, is_active`

func scanTopicLog(row interface{ Scan(...any) error }) (*TopicLog, error) {
	var tl TopicLog
	var name sql.NullString
	var encScore sql.NullFloat64
	var grade, learnedAt, lastReview, nextDue sql.NullInt64
	var active int

	err := row.Scan(
		&tl.ID, &tl.UserID, &tl.TopicID, &tl.TopicKind, &name,
		&tl.Stability, &tl.Difficulty, &tl.Retrievability,
		&encScore, &grade, &tl.TotalReviews, &tl.SuccessfulRecalls,
		&learnedAt, &lastReview, &nextDue, &tl.CreatedAt, &tl.UpdatedAt,
		&tl.Status, &active,
	)
	if err != nil {
		return nil, err
	}

	tl.TopicName = name.String
	if encScore.Valid {
		tl.InitialEncodingScore = &encScore.Float64
	}
	if grade.Valid {
		g := int(grade.Int64)
		tl.LastRecallGrade = &g
	}
	if learnedAt.Valid {
		tl.LearnedAt = &learnedAt.Int64
	}
	if lastReview.Valid {
		tl.LastReviewAt = &lastReview.Int64
	}
	if nextDue.Valid {
		tl.NextDueAt = &nextDue.Int64
	}
	tl.Active = active != 0
	return &tl, nil
}

// CreateTopicLog inserts a new topic log and fills in its ID and
// created/updated timestamps.
func (db *DB) CreateTopicLog(tl *TopicLog) error {
	now := time.Now().UnixMilli()
	active := 0
	if tl.Active {
		active = 1
	}

	result, err := db.Exec(`
		INSERT INTO topic_logs (user_id, topic_id, topic_kind, topic_name,
			stability, difficulty, retrievability,
			initial_encoding_score, last_recall_grade, total_reviews, successful_recalls,
			learned_at, last_review_at, next_due_at, created_at, updated_at,
			status, is_active)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tl.UserID, tl.TopicID, tl.TopicKind, tl.TopicName,
		tl.Stability, tl.Difficulty, tl.Retrievability,
		tl.InitialEncodingScore, tl.LastRecallGrade, tl.TotalReviews, tl.SuccessfulRecalls,
		tl.LearnedAt, tl.LastReviewAt, tl.NextDueAt, now, now,
		tl.Status, active)
	if err != nil {
		return fmt.Errorf("create topic log: %w", err)
	}

	id, _ := result.LastInsertId()
	tl.ID = id
	tl.CreatedAt = now
	tl.UpdatedAt = now
	return nil
}

// GetTopicLog returns the topic log for a (user, topic, kind) tuple, or
// nil if none exists.
func (db *DB) GetTopicLog(userID, topicID int64, topicKind string) (*TopicLog, error) {
	row := db.QueryRow(`
		SELECT `+topicLogColumns+`
		FROM topic_logs
		WHERE user_id = ? AND topic_id = ? AND topic_kind = ?
	`, userID, topicID, topicKind)

	tl, err := scanTopicLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic log: %w", err)
	}
	return tl, nil
}

// GetTopicLogByTopic returns any topic log for a user+topic regardless
// of kind, or nil if none exists. Used by lookups that only carry a
// topic id.
func (db *DB) GetTopicLogByTopic(userID, topicID int64) (*TopicLog, error) {
	row := db.QueryRow(`
		SELECT `+topicLogColumns+`
		FROM topic_logs
		WHERE user_id = ? AND topic_id = ?
		ORDER BY updated_at DESC LIMIT 1
	`, userID, topicID)

	tl, err := scanTopicLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic log by topic: %w", err)
	}
	return tl, nil
}

// UpdateTopicLog persists the mutable state of a topic log: memory
// variables, scoring history, schedule, and status. Identity fields are
// never changed.
func (db *DB) UpdateTopicLog(tl *TopicLog) error {
	now := time.Now().UnixMilli()
	active := 0
	if tl.Active {
		active = 1
	}

	result, err := db.Exec(`
		UPDATE topic_logs SET
			topic_name = NULLIF(?, ''),
			stability = ?, difficulty = ?, retrievability = ?,
			initial_encoding_score = ?, last_recall_grade = ?,
			total_reviews = ?, successful_recalls = ?,
			learned_at = ?, last_review_at = ?, next_due_at = ?,
			status = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, tl.TopicName,
		tl.Stability, tl.Difficulty, tl.Retrievability,
		tl.InitialEncodingScore, tl.LastRecallGrade,
		tl.TotalReviews, tl.SuccessfulRecalls,
		tl.LearnedAt, tl.LastReviewAt, tl.NextDueAt,
		tl.Status, active, now, tl.ID)
	if err != nil {
		return fmt.Errorf("update topic log: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no topic log with id %d", tl.ID)
	}
	tl.UpdatedAt = now
	return nil
}

// SetTopicActive flips the active flag. Inactive topics are excluded
// from dashboards and due queues but retained for audit.
func (db *DB) SetTopicActive(userID, topicID int64, topicKind string, active bool) error {
	now := time.Now().UnixMilli()
	flag := 0
	if active {
		flag = 1
	}

	result, err := db.Exec(`
		UPDATE topic_logs SET is_active = ?, updated_at = ?
		WHERE user_id = ? AND topic_id = ? AND topic_kind = ?
	`, flag, now, userID, topicID, topicKind)
	if err != nil {
		return fmt.Errorf("set topic active: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no topic log for user %d topic %d (%s)", userID, topicID, topicKind)
	}
	return nil
}

// ListActiveTopicLogs returns all active topic logs for a user, most
// recently reviewed first.
func (db *DB) ListActiveTopicLogs(userID int64) ([]TopicLog, error) {
	rows, err := db.Query(`
		SELECT `+topicLogColumns+`
		FROM topic_logs
		WHERE user_id = ? AND is_active = 1
		ORDER BY last_review_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active topic logs: %w", err)
	}
	defer rows.Close()

	var logs []TopicLog
	for rows.Next() {
		tl, err := scanTopicLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic log: %w", err)
		}
		logs = append(logs, *tl)
	}
	return logs, rows.Err()
}

// ListDueTopicLogs returns active topic logs whose next_due_at is at or
// before the given time (unix millis).
func (db *DB) ListDueTopicLogs(userID, now int64) ([]TopicLog, error) {
	rows, err := db.Query(`
		SELECT `+topicLogColumns+`
		FROM topic_logs
		WHERE user_id = ? AND is_active = 1 AND next_due_at IS NOT NULL AND next_due_at <= ?
		ORDER BY next_due_at ASC
	`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list due topic logs: %w", err)
	}
	defer rows.Close()

	var logs []TopicLog
	for rows.Next() {
		tl, err := scanTopicLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due topic log: %w", err)
		}
		logs = append(logs, *tl)
	}
	return logs, rows.Err()
}
