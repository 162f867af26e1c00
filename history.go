package quizzify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History stores generation attempts in sqlite. It keeps metadata only;
// quizzes themselves are never persisted.
type History struct {
	db *sql.DB
}

var _ Recorder = (*History)(nil)

// OpenHistory opens the history database and creates its table.
func OpenHistory(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serializes writers; one connection also keeps :memory: databases intact
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	h := &History{db: db}
	if err := h.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// Close closes the database connection
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			provider TEXT NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT,
			created_at DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations (created_at)`,
	}

	for _, query := range queries {
		if _, err := h.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// RecordGeneration stores one generation attempt
func (h *History) RecordGeneration(ctx context.Context, rec GenerationRecord) error {
	_, err := h.db.ExecContext(ctx,
		"INSERT INTO generations (id, topic, provider, outcome, error, created_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Topic, rec.Provider, string(rec.Outcome), rec.Error, rec.CreatedAt.UTC(), rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// RecentGenerations returns the newest attempts first, at most limit rows.
// A limit of zero or less returns all rows.
func (h *History) RecentGenerations(ctx context.Context, limit int) ([]GenerationRecord, error) {
	query := "SELECT id, topic, provider, outcome, error, created_at, duration_ms FROM generations ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var (
			rec        GenerationRecord
			outcome    string
			errText    sql.NullString
			durationMs int64
		)
		if err := rows.Scan(&rec.ID, &rec.Topic, &rec.Provider, &outcome, &errText, &rec.CreatedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		rec.Outcome = GenerationOutcome(outcome)
		rec.Error = errText.String
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}

	return records, nil
}
