package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "topic_logs: per-user per-topic retention state",
		SQL: `
CREATE TABLE topic_logs (
    id                     INTEGER PRIMARY KEY,
    user_id                INTEGER NOT NULL,
    topic_id               INTEGER NOT NULL,
    topic_kind             TEXT NOT NULL DEFAULT 'video',
    topic_name             TEXT,

    -- Memory state
    stability              REAL NOT NULL DEFAULT 1.0,
    difficulty             REAL NOT NULL DEFAULT 5.0,
    retrievability         REAL NOT NULL DEFAULT 1.0,

    -- Scoring history
    initial_encoding_score REAL,
    last_recall_grade      INTEGER,
    total_reviews          INTEGER NOT NULL DEFAULT 0,
    successful_recalls     INTEGER NOT NULL DEFAULT 0,

    -- Timestamps (unix millis)
    learned_at             INTEGER,
    last_review_at         INTEGER,
    next_due_at            INTEGER,
    created_at             INTEGER NOT NULL,
    updated_at             INTEGER NOT NULL,

    status                 TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'learned', 'weak_encoding', 'reviewing', 'forgotten', 'mastered')),
    is_active              INTEGER NOT NULL DEFAULT 1,

    UNIQUE (user_id, topic_id, topic_kind)
);

CREATE INDEX idx_topic_logs_user    ON topic_logs(user_id);
CREATE INDEX idx_topic_logs_due     ON topic_logs(next_due_at);
CREATE INDEX idx_topic_logs_status  ON topic_logs(status);
`,
	},
	{
		Version:     2,
		Description: "review_events: append-only audit trail of encodings and recall tests",
		SQL: `
CREATE TABLE review_events (
    id                       INTEGER PRIMARY KEY,
    topic_log_id             INTEGER NOT NULL,
    user_id                  INTEGER NOT NULL,
    kind                     TEXT NOT NULL CHECK (kind IN ('encoding', 'recall_test', 'manual_override')),
    grade                    INTEGER,
    score                    REAL,

    -- Memory state around this event
    stability_before         REAL NOT NULL DEFAULT 0,
    stability_after          REAL NOT NULL DEFAULT 0,
    retrievability_at_review REAL NOT NULL DEFAULT 0,

    user_input               TEXT,
    feedback                 TEXT,
    created_at               INTEGER NOT NULL,

    FOREIGN KEY (topic_log_id) REFERENCES topic_logs(id)
);

CREATE INDEX idx_review_events_log     ON review_events(topic_log_id);
CREATE INDEX idx_review_events_created ON review_events(created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
