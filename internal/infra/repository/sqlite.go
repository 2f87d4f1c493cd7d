package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"para-predict/internal/domain/entities"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteHistory implements the PredictionHistory repository on SQLite.
type SQLiteHistory struct {
	db *sql.DB
}

func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteHistory{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteHistory) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		source TEXT NOT NULL,
		raw_result REAL NOT NULL,
		result REAL NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteHistory) Save(ctx context.Context, record entities.PredictionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `INSERT INTO predictions (id, user_id, source, raw_result, result, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Source,
		record.RawResult, record.Result, record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (s *SQLiteHistory) Recent(ctx context.Context, limit int) ([]entities.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, user_id, source, raw_result, result, created_at
	          FROM predictions ORDER BY created_at DESC, id LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	records := make([]entities.PredictionRecord, 0, limit)
	for rows.Next() {
		var record entities.PredictionRecord
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.UserID, &record.Source,
			&record.RawResult, &record.Result, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction row: %w", err)
		}
		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
