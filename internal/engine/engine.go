// Package engine orchestrates the topic log lifecycle: it is the only
// component that mutates retention state. The math lives in
// internal/fsrs; durable storage in internal/store.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mnemon/mnemon/internal/fsrs"
	"github.com/mnemon/mnemon/internal/scoring"
	"github.com/mnemon/mnemon/internal/store"
)

// ErrNotFound is returned when an operation presupposes an existing
// topic log (a recall test, a curve request) and none exists.
var ErrNotFound = errors.New("topic not found")

// Engine applies encodings and recall tests to topic logs and answers
// dashboard queries. Read-modify-write sequences are serialized per
// (user, topic, kind) key; two concurrent submissions for the same
// topic never lose an update.
type Engine struct {
	DB     *store.DB
	Params fsrs.Params
	Scorer scoring.Scorer

	// now is swappable for tests.
	now func() time.Time

	mu    sync.Mutex
	locks map[topicKey]*sync.Mutex
}

type topicKey struct {
	userID    int64
	topicID   int64
	topicKind string
}

// New creates an Engine with default parameters and the word-count
// fallback scorer.
func New(db *store.DB) *Engine {
	return &Engine{
		DB:     db,
		Params: fsrs.DefaultParams(),
		Scorer: scoring.NewWordCountScorer(),
		now:    time.Now,
		locks:  make(map[topicKey]*sync.Mutex),
	}
}

// lockTopic returns the mutex serializing writers for one topic key.
func (e *Engine) lockTopic(userID, topicID int64, topicKind string) *sync.Mutex {
	key := topicKey{userID, topicID, topicKind}
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	e.locks[key] = l
	return l
}

// daysBetween returns fractional days from a unix-millis timestamp to now.
func daysBetween(fromMillis int64, now time.Time) float64 {
	elapsed := now.Sub(time.UnixMilli(fromMillis))
	if elapsed < 0 {
		return 0
	}
	return elapsed.Hours() / 24
}

// EncodingRequest is a first-exposure submission: the learner explains
// the topic, an external scorer grades the explanation.
type EncodingRequest struct {
	UserID    int64
	TopicID   int64
	TopicKind string
	TopicName string

	// Score is the comprehension score in [0,1] produced by the
	// external text-scoring collaborator from Summary.
	Score    float64
	Summary  string
	Feedback string
}

// EncodingResult reports the initialized retention state.
type EncodingResult struct {
	TopicID   int64     `json:"topic_id"`
	Score     float64   `json:"comprehension_score"`
	Stability float64   `json:"stability"`
	Status    string    `json:"status"`
	NextDueAt time.Time `json:"next_due_at"`
	Feedback  string    `json:"feedback,omitempty"`
}

// SubmitEncoding creates the topic log on first exposure, or
// re-initializes an existing one. Re-encoding is idempotent
// re-initialization, not a graded review: stability, retrievability and
// status are overwritten as if this were the first exposure.
func (e *Engine) SubmitEncoding(req EncodingRequest) (*EncodingResult, error) {
	if req.TopicKind == "" {
		req.TopicKind = "video"
	}

	lock := e.lockTopic(req.UserID, req.TopicID, req.TopicKind)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()
	nowMillis := now.UnixMilli()

	stability := e.Params.InitialStability(req.Score)
	interval := e.Params.NextInterval(stability)
	nextDue := now.AddDate(0, 0, interval)
	nextDueMillis := nextDue.UnixMilli()

	status := store.StatusLearned
	if req.Score < 0.6 {
		status = store.StatusWeakEncoding
	}

	existing, err := e.DB.GetTopicLog(req.UserID, req.TopicID, req.TopicKind)
	if err != nil {
		return nil, err
	}

	stabilityBefore := 0.0
	score := req.Score
	var tl *store.TopicLog

	if existing != nil {
		stabilityBefore = existing.Stability
		tl = existing
		tl.InitialEncodingScore = &score
		tl.Stability = stability
		tl.Retrievability = 1.0
		tl.LastReviewAt = &nowMillis
		tl.NextDueAt = &nextDueMillis
		tl.Status = status
		if req.TopicName != "" {
			tl.TopicName = req.TopicName
		}
		if err := e.DB.UpdateTopicLog(tl); err != nil {
			return nil, err
		}
	} else {
		tl = &store.TopicLog{
			UserID:               req.UserID,
			TopicID:              req.TopicID,
			TopicKind:            req.TopicKind,
			TopicName:            req.TopicName,
			Stability:            stability,
			Difficulty:           5.0,
			Retrievability:       1.0,
			InitialEncodingScore: &score,
			LearnedAt:            &nowMillis,
			LastReviewAt:         &nowMillis,
			NextDueAt:            &nextDueMillis,
			Status:               status,
			Active:               true,
		}
		if err := e.DB.CreateTopicLog(tl); err != nil {
			return nil, err
		}
	}

	ev := &store.ReviewEvent{
		TopicLogID:             tl.ID,
		UserID:                 req.UserID,
		Kind:                   store.ReviewEncoding,
		Score:                  &score,
		StabilityBefore:        stabilityBefore,
		StabilityAfter:         stability,
		RetrievabilityAtReview: 1.0,
		UserInput:              req.Summary,
		Feedback:               req.Feedback,
	}
	if err := e.DB.AppendReviewEvent(ev); err != nil {
		return nil, fmt.Errorf("log encoding: %w", err)
	}

	return &EncodingResult{
		TopicID:   req.TopicID,
		Score:     req.Score,
		Stability: stability,
		Status:    tl.Status,
		NextDueAt: nextDue,
		Feedback:  req.Feedback,
	}, nil
}

// RecallRequest is a recall-test submission. Either Score (0–1, from an
// external grader) or Answer (free text, scored by the fallback
// heuristic) must be present; Score wins when both are set.
type RecallRequest struct {
	UserID    int64
	TopicID   int64
	TopicKind string

	Answer string
	Score  *float64
}

// RecallResult reports the revised retention state after a recall test.
type RecallResult struct {
	TopicID      int64      `json:"topic_id"`
	Grade        fsrs.Grade `json:"grade"`
	Score        float64    `json:"score"`
	NewStability float64    `json:"new_stability"`
	Status       string     `json:"status"`
	NextDueAt    time.Time  `json:"next_due_at"`
	Feedback     string     `json:"feedback"`
}

// SubmitRecall grades a recall test and applies the update rule.
// Returns ErrNotFound if the topic was never encoded: recall tests
// presuppose a prior encoding and never silently create state.
func (e *Engine) SubmitRecall(req RecallRequest) (*RecallResult, error) {
	var tl *store.TopicLog
	var err error

	// Resolve the log first so the lock key carries the actual kind.
	if req.TopicKind != "" {
		tl, err = e.DB.GetTopicLog(req.UserID, req.TopicID, req.TopicKind)
	} else {
		tl, err = e.DB.GetTopicLogByTopic(req.UserID, req.TopicID)
	}
	if err != nil {
		return nil, err
	}
	if tl == nil {
		return nil, fmt.Errorf("recall for user %d topic %d: %w", req.UserID, req.TopicID, ErrNotFound)
	}

	lock := e.lockTopic(tl.UserID, tl.TopicID, tl.TopicKind)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent writer may have advanced
	// the state between the lookup and the lock acquisition.
	tl, err = e.DB.GetTopicLog(tl.UserID, tl.TopicID, tl.TopicKind)
	if err != nil {
		return nil, err
	}
	if tl == nil {
		return nil, ErrNotFound
	}

	var score float64
	feedback := ""
	if req.Score != nil {
		score = *req.Score
	} else {
		score, feedback = e.Scorer.Score(req.Answer)
	}
	grade := fsrs.ScoreToGrade(score)

	now := e.now()
	nowMillis := now.UnixMilli()

	daysElapsed := 0.0
	if tl.LastReviewAt != nil {
		daysElapsed = daysBetween(*tl.LastReviewAt, now)
	}

	oldStability := tl.Stability
	result, err := e.Params.Update(tl.Stability, tl.Difficulty, grade, daysElapsed)
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}

	interval := e.Params.NextInterval(result.Stability)
	nextDue := now.AddDate(0, 0, interval)
	nextDueMillis := nextDue.UnixMilli()

	gradeInt := int(grade)
	tl.Stability = result.Stability
	tl.Difficulty = result.Difficulty
	tl.Retrievability = 1.0 // reviewing resets apparent memory to perfect
	tl.LastRecallGrade = &gradeInt
	tl.LastReviewAt = &nowMillis
	tl.NextDueAt = &nextDueMillis
	tl.TotalReviews++
	if grade.Successful() {
		tl.SuccessfulRecalls++
	}

	switch {
	case result.Stability >= 30 && tl.SuccessfulRecalls >= 3:
		tl.Status = store.StatusMastered
	case grade == fsrs.Again:
		tl.Status = store.StatusForgotten
	default:
		tl.Status = store.StatusReviewing
	}

	if err := e.DB.UpdateTopicLog(tl); err != nil {
		return nil, err
	}

	if feedback == "" {
		feedback = grade.Feedback()
	}
	ev := &store.ReviewEvent{
		TopicLogID:             tl.ID,
		UserID:                 tl.UserID,
		Kind:                   store.ReviewRecallTest,
		Grade:                  &gradeInt,
		Score:                  &score,
		StabilityBefore:        oldStability,
		StabilityAfter:         result.Stability,
		RetrievabilityAtReview: result.Retrievability,
		UserInput:              req.Answer,
		Feedback:               feedback,
	}
	if err := e.DB.AppendReviewEvent(ev); err != nil {
		return nil, fmt.Errorf("log recall: %w", err)
	}

	return &RecallResult{
		TopicID:      tl.TopicID,
		Grade:        grade,
		Score:        score,
		NewStability: result.Stability,
		Status:       tl.Status,
		NextDueAt:    nextDue,
		Feedback:     feedback,
	}, nil
}

// OverrideStability manually pins a topic's stability (instructor
// correction, data repair). Logged as a manual_override event; the
// schedule is recomputed from the new value.
func (e *Engine) OverrideStability(userID, topicID int64, topicKind string, stability float64) (*store.TopicLog, error) {
	if stability <= 0 {
		return nil, fmt.Errorf("%w: stability %v", fsrs.ErrInvalidInput, stability)
	}
	if topicKind == "" {
		topicKind = "video"
	}

	lock := e.lockTopic(userID, topicID, topicKind)
	lock.Lock()
	defer lock.Unlock()

	tl, err := e.DB.GetTopicLog(userID, topicID, topicKind)
	if err != nil {
		return nil, err
	}
	if tl == nil {
		return nil, ErrNotFound
	}

	now := e.now()
	nowMillis := now.UnixMilli()
	if stability > float64(e.Params.MaxIntervalDays) {
		stability = float64(e.Params.MaxIntervalDays)
	}

	oldStability := tl.Stability
	retrievabilityBefore := currentRetrievability(tl, now, oldStability)
	nextDueMillis := now.AddDate(0, 0, e.Params.NextInterval(stability)).UnixMilli()

	tl.Stability = stability
	tl.Retrievability = 1.0
	tl.LastReviewAt = &nowMillis
	tl.NextDueAt = &nextDueMillis
	if err := e.DB.UpdateTopicLog(tl); err != nil {
		return nil, err
	}

	ev := &store.ReviewEvent{
		TopicLogID:             tl.ID,
		UserID:                 userID,
		Kind:                   store.ReviewManualOverride,
		StabilityBefore:        oldStability,
		StabilityAfter:         stability,
		RetrievabilityAtReview: retrievabilityBefore,
	}
	if err := e.DB.AppendReviewEvent(ev); err != nil {
		return nil, fmt.Errorf("log override: %w", err)
	}
	return tl, nil
}

// SetTopicActive archives or restores a topic. ErrNotFound when the
// topic was never encoded.
func (e *Engine) SetTopicActive(userID, topicID int64, topicKind string, active bool) error {
	if topicKind == "" {
		topicKind = "video"
	}
	if err := e.DB.SetTopicActive(userID, topicID, topicKind, active); err != nil {
		return fmt.Errorf("set active for user %d topic %d: %w", userID, topicID, ErrNotFound)
	}
	return nil
}

// currentRetrievability recomputes R from a stability value and the
// elapsed time since the log's last review. Recompute-on-read: the
// stored retrievability column is only a snapshot.
func currentRetrievability(tl *store.TopicLog, now time.Time, stability float64) float64 {
	if tl.LastReviewAt == nil {
		return 0.0
	}
	return fsrs.Retrievability(stability, daysBetween(*tl.LastReviewAt, now))
}
