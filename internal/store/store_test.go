package store

import (
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations(t *testing.T) {
	db := testDB(t)

	version, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db := testDB(t)

	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func newTestLog(userID, topicID int64) *TopicLog {
	now := time.Now().UnixMilli()
	score := 0.9
	return &TopicLog{
		UserID:               userID,
		TopicID:              topicID,
		TopicKind:            "video",
		TopicName:            "Spaced Repetition",
		Stability:            1.85,
		Difficulty:           5.0,
		Retrievability:       1.0,
		InitialEncodingScore: &score,
		LearnedAt:            &now,
		LastReviewAt:         &now,
		NextDueAt:            &now,
		Status:               StatusLearned,
		Active:               true,
	}
}

func TestCreateAndGetTopicLog(t *testing.T) {
	db := testDB(t)

	tl := newTestLog(1, 42)
	if err := db.CreateTopicLog(tl); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}
	if tl.ID == 0 {
		t.Fatal("expected ID to be set")
	}

	got, err := db.GetTopicLog(1, 42, "video")
	if err != nil {
		t.Fatalf("GetTopicLog: %v", err)
	}
	if got == nil {
		t.Fatal("expected topic log, got nil")
	}
	if got.Stability != 1.85 {
		t.Errorf("stability = %v, want 1.85", got.Stability)
	}
	if got.Status != StatusLearned {
		t.Errorf("status = %q, want %q", got.Status, StatusLearned)
	}
	if got.TopicName != "Spaced Repetition" {
		t.Errorf("topic name = %q", got.TopicName)
	}
	if got.InitialEncodingScore == nil || *got.InitialEncodingScore != 0.9 {
		t.Errorf("encoding score = %v, want 0.9", got.InitialEncodingScore)
	}
	if got.LastRecallGrade != nil {
		t.Errorf("expected nil last recall grade, got %v", *got.LastRecallGrade)
	}
	if !got.Active {
		t.Error("expected active")
	}
}

func TestGetTopicLogMissing(t *testing.T) {
	db := testDB(t)

	got, err := db.GetTopicLog(1, 999, "video")
	if err != nil {
		t.Fatalf("GetTopicLog: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing log, got %+v", got)
	}
}

func TestGetTopicLogByTopic(t *testing.T) {
	db := testDB(t)

	tl := newTestLog(1, 42)
	tl.TopicKind = "lesson"
	if err := db.CreateTopicLog(tl); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}

	got, err := db.GetTopicLogByTopic(1, 42)
	if err != nil {
		t.Fatalf("GetTopicLogByTopic: %v", err)
	}
	if got == nil || got.TopicKind != "lesson" {
		t.Fatalf("got %+v, want lesson log", got)
	}
}

func TestTopicKeyUnique(t *testing.T) {
	db := testDB(t)

	if err := db.CreateTopicLog(newTestLog(1, 42)); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}
	if err := db.CreateTopicLog(newTestLog(1, 42)); err == nil {
		t.Error("expected unique constraint violation for duplicate (user, topic, kind)")
	}

	// Same topic under a different kind is a distinct record.
	other := newTestLog(1, 42)
	other.TopicKind = "lesson"
	if err := db.CreateTopicLog(other); err != nil {
		t.Errorf("create with different kind: %v", err)
	}
}

func TestUpdateTopicLog(t *testing.T) {
	db := testDB(t)

	tl := newTestLog(1, 42)
	if err := db.CreateTopicLog(tl); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}

	grade := 4
	tl.Stability = 4.655
	tl.Difficulty = 4.7
	tl.LastRecallGrade = &grade
	tl.TotalReviews = 1
	tl.SuccessfulRecalls = 1
	tl.Status = StatusReviewing
	if err := db.UpdateTopicLog(tl); err != nil {
		t.Fatalf("UpdateTopicLog: %v", err)
	}

	got, err := db.GetTopicLog(1, 42, "video")
	if err != nil {
		t.Fatalf("GetTopicLog: %v", err)
	}
	if got.Stability != 4.655 {
		t.Errorf("stability = %v, want 4.655", got.Stability)
	}
	if got.LastRecallGrade == nil || *got.LastRecallGrade != 4 {
		t.Errorf("grade = %v, want 4", got.LastRecallGrade)
	}
	if got.TotalReviews != 1 || got.SuccessfulRecalls != 1 {
		t.Errorf("counters = %d/%d, want 1/1", got.TotalReviews, got.SuccessfulRecalls)
	}
}

func TestUpdateTopicLogMissing(t *testing.T) {
	db := testDB(t)

	tl := newTestLog(1, 42)
	tl.ID = 12345
	if err := db.UpdateTopicLog(tl); err == nil {
		t.Error("expected error updating nonexistent log")
	}
}

func TestSetTopicActive(t *testing.T) {
	db := testDB(t)

	if err := db.CreateTopicLog(newTestLog(1, 42)); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}

	if err := db.SetTopicActive(1, 42, "video", false); err != nil {
		t.Fatalf("SetTopicActive: %v", err)
	}
	got, _ := db.GetTopicLog(1, 42, "video")
	if got.Active {
		t.Error("expected inactive")
	}

	if err := db.SetTopicActive(1, 999, "video", false); err == nil {
		t.Error("expected error for missing topic")
	}
}

func TestListActiveTopicLogs(t *testing.T) {
	db := testDB(t)

	for i := int64(1); i <= 3; i++ {
		if err := db.CreateTopicLog(newTestLog(1, i)); err != nil {
			t.Fatalf("CreateTopicLog %d: %v", i, err)
		}
	}
	// Another user's topics must not leak in.
	if err := db.CreateTopicLog(newTestLog(2, 10)); err != nil {
		t.Fatalf("CreateTopicLog other user: %v", err)
	}
	if err := db.SetTopicActive(1, 2, "video", false); err != nil {
		t.Fatalf("SetTopicActive: %v", err)
	}

	logs, err := db.ListActiveTopicLogs(1)
	if err != nil {
		t.Fatalf("ListActiveTopicLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	for _, tl := range logs {
		if tl.TopicID == 2 {
			t.Error("archived topic included in active list")
		}
		if tl.UserID != 1 {
			t.Error("foreign user's topic in list")
		}
	}
}

func TestListDueTopicLogs(t *testing.T) {
	db := testDB(t)

	now := time.Now().UnixMilli()
	past := now - 3600_000
	future := now + 86_400_000

	due := newTestLog(1, 1)
	due.NextDueAt = &past
	notDue := newTestLog(1, 2)
	notDue.NextDueAt = &future

	if err := db.CreateTopicLog(due); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}
	if err := db.CreateTopicLog(notDue); err != nil {
		t.Fatalf("CreateTopicLog: %v", err)
	}

	logs, err := db.ListDueTopicLogs(1, now)
	if err != nil {
		t.Fatalf("ListDueTopicLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].TopicID != 1 {
		t.Errorf("due logs = %+v, want just topic 1", logs)
	}
}
