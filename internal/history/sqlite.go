package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore keeps records in an SQLite database, the result stored as a JSON column.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS optimizations (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		job_url    TEXT,
		job_title  TEXT,
		company    TEXT,
		model      TEXT,
		strategy   TEXT,
		result     TEXT NOT NULL,
		raw        TEXT
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS optimizations_created_at ON optimizations (created_at)`)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	if err := validate(record); err != nil {
		return err
	}

	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("history: encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO optimizations
		(id, created_at, job_url, job_title, company, model, strategy, result, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CreatedAt.UTC().Format(timeLayout), record.JobURL, record.JobTitle,
		record.Company, record.Model, record.Strategy, string(result), record.Raw)
	if err != nil {
		return fmt.Errorf("history: insert %s: %w", record.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, created_at, job_url, job_title, company, model, strategy, result, raw FROM optimizations`

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	// Ids never contain LIKE wildcards.
	if strings.ContainsAny(id, "%_") {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("history: get %s: %w", id, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if record.ID == id {
			return record, nil
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return records[0], nil
	default:
		return nil, ErrAmbiguous
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var record Record
	var createdAt, result string
	var jobURL, jobTitle, company, model, strategy, raw sql.NullString

	if err := row.Scan(&record.ID, &createdAt, &jobURL, &jobTitle, &company, &model, &strategy, &result, &raw); err != nil {
		return nil, fmt.Errorf("history: scan: %w", err)
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("history: record %s created_at: %w", record.ID, err)
	}
	record.CreatedAt = t

	if err := json.Unmarshal([]byte(result), &record.Result); err != nil {
		return nil, fmt.Errorf("history: record %s result: %w", record.ID, err)
	}

	record.JobURL = jobURL.String
	record.JobTitle = jobTitle.String
	record.Company = company.String
	record.Model = model.String
	record.Strategy = strategy.String
	record.Raw = raw.String

	return &record, nil
}
