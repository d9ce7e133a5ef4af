package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"AlgoChat/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	problem_id TEXT,
	start_time DATETIME
);
CREATE TABLE IF NOT EXISTS turns (
	conversation_id TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	role TEXT NOT NULL,
	text TEXT NOT NULL,
	timestamp DATETIME,
	PRIMARY KEY (conversation_id, sequence),
	FOREIGN KEY(conversation_id) REFERENCES conversations(id)
);`

// Journal is a SQLite transcript of conversations. It is write-only from the
// chat's point of view: nothing in it is ever used to seed a conversation.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writes ordered and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordConversation registers a conversation. Recording it again is a no-op.
func (j *Journal) RecordConversation(ctx context.Context, conv *session.Conversation) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO conversations (id, problem_id, start_time) VALUES (?, ?, ?)",
		conv.ID, conv.ProblemID, conv.StartTime,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// RecordTurn appends a turn. A turn is immutable, so a repeated sequence is rejected.
func (j *Journal) RecordTurn(ctx context.Context, conversationID string, turn session.Turn) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO turns (conversation_id, sequence, role, text, timestamp) VALUES (?, ?, ?, ?, ?)",
		conversationID, turn.Sequence, string(turn.Role), turn.Text, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// Turns returns the journaled turns of a conversation in sequence order
func (j *Journal) Turns(ctx context.Context, conversationID string) ([]session.Turn, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT sequence, role, text, timestamp FROM turns WHERE conversation_id = ? ORDER BY sequence",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	turns := []session.Turn{}
	for rows.Next() {
		var (
			t    session.Turn
			role string
			ts   time.Time
		)
		if err := rows.Scan(&t.Sequence, &role, &t.Text, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = session.Role(role)
		t.Timestamp = ts
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}

// Conversations lists journaled conversation IDs for a problem, oldest first
func (j *Journal) Conversations(ctx context.Context, problemID string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id FROM conversations WHERE problem_id = ? ORDER BY start_time, id",
		problemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
