package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"yclients_sync/models"
)

// SQLiteStore is the file-backed alternative sink, for runs without a
// Postgres instance around.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

func (s *SQLiteStore) Write(ctx context.Context, table string, data *models.Table, mode WriteMode) error {
	if data.Empty() {
		log.Printf("Table %s is empty, skipping", table)
		return nil
	}

	kinds := InferColumnKinds(data)

	if mode == ModeReplace {
		if _, err := s.db.ExecContext(ctx, buildDropSQL(table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, buildCreateSQL(table, data.Columns, kinds, dialectSQLite)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for start := 0; start < len(data.Rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(data.Rows) {
			end = len(data.Rows)
		}
		query, args := buildInsertSQL(table, data.Columns, data.Rows[start:end], dialectSQLite)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("Wrote %d rows to table %s", data.NumRows(), table)
	return nil
}
