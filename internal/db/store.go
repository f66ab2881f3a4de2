package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	schemaVersion = 1

	// draftKey is the key of the singleton draft note row.
	draftKey = "current_note"

	// isoLayout matches JavaScript's Date.toISOString output.
	isoLayout = "2006-01-02T15:04:05.000Z07:00"
)

const schema = `
	CREATE TABLE IF NOT EXISTS drafts (
		key TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updatedAt TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS call_history (
		id INTEGER PRIMARY KEY,
		date TEXT NOT NULL,
		notes TEXT NOT NULL,
		completedStages TEXT NOT NULL DEFAULT '[]',
		duration INTEGER NOT NULL DEFAULT 0
	);
`

// Store provides read-write access to the teleflow SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "teleflow", "teleflow.sqlite")
}

// Open opens (creating if needed) the database at path with WAL and makes
// sure the schema exists.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers and keeps :memory: databases whole.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDraftNote overwrites the draft note.
func (s *Store) SaveDraftNote(ctx context.Context, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (key, content, updatedAt) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET content = excluded.content, updatedAt = excluded.updatedAt
	`, draftKey, content, formatTime(s.now()))
	if err != nil {
		return storageErr("save draft note", err)
	}
	return nil
}

// DraftNote returns the draft note, or "" if none has been saved.
func (s *Store) DraftNote(ctx context.Context) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM drafts WHERE key = ?`, draftKey).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("read draft note", err)
	}
	return content, nil
}

// ClearDraftNote removes the draft note.
func (s *Store) ClearDraftNote(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, draftKey); err != nil {
		return storageErr("clear draft note", err)
	}
	return nil
}

// ArchiveCall appends rec to the call history under a fresh id and returns
// the stored record. The id is the archive time in Unix milliseconds, bumped
// past the newest existing id so that it is always unique and increasing.
// A zero rec.Date is set to the archive time.
func (s *Store) ArchiveCall(ctx context.Context, rec CallRecord) (CallRecord, error) {
	now := s.now()
	if rec.Date.IsZero() {
		rec.Date = now
	}
	stages := make([]string, len(rec.CompletedStages))
	copy(stages, rec.CompletedStages)
	rec.CompletedStages = stages

	stagesJSON, err := json.Marshal(stages)
	if err != nil {
		return CallRecord{}, fmt.Errorf("encode completed stages: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CallRecord{}, storageErr("archive call", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM call_history`).Scan(&last); err != nil {
		return CallRecord{}, storageErr("archive call", err)
	}
	rec.ID = max(now.UnixMilli(), last+1)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO call_history (id, date, notes, completedStages, duration)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, formatTime(rec.Date), rec.Notes, string(stagesJSON), rec.Duration); err != nil {
		return CallRecord{}, storageErr("archive call", err)
	}
	if err := tx.Commit(); err != nil {
		return CallRecord{}, storageErr("archive call", err)
	}
	return rec, nil
}

// CallHistory returns archived calls, newest first. A limit <= 0 returns all.
func (s *Store) CallHistory(ctx context.Context, limit int) ([]CallRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, notes, completedStages, duration
		FROM call_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, storageErr("query call history", err)
	}
	defer rows.Close()

	var records []CallRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query call history", err)
	}
	return records, nil
}

// CallRecordByID returns one archived call.
func (s *Store) CallRecordByID(ctx context.Context, id int64) (CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, notes, completedStages, duration
		FROM call_history
		WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, fmt.Errorf("call %d: %w", id, ErrRecordNotFound)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (CallRecord, error) {
	var rec CallRecord
	var date, stagesJSON string
	if err := row.Scan(&rec.ID, &date, &rec.Notes, &stagesJSON, &rec.Duration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, err
		}
		return CallRecord{}, storageErr("scan call record", err)
	}
	t, err := time.Parse(isoLayout, date)
	if err != nil {
		return CallRecord{}, fmt.Errorf("call %d: parse date %q: %w", rec.ID, date, err)
	}
	rec.Date = t
	if err := json.Unmarshal([]byte(stagesJSON), &rec.CompletedStages); err != nil {
		return CallRecord{}, fmt.Errorf("call %d: decode completed stages: %w", rec.ID, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
