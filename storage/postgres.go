package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"yclients_sync/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Write materializes one table. Replace drops and recreates with the schema
// inferred from this batch; append only creates the table when missing.
// Zero-row tables are skipped.
func (s *PostgresStore) Write(ctx context.Context, table string, data *models.Table, mode WriteMode) error {
	if data.Empty() {
		log.Printf("Table %s is empty, skipping", table)
		return nil
	}

	kinds := InferColumnKinds(data)

	if mode == ModeReplace {
		if _, err := s.pool.Exec(ctx, buildDropSQL(table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := s.pool.Exec(ctx, buildCreateSQL(table, data.Columns, kinds, dialectPostgres)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	for start := 0; start < len(data.Rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(data.Rows) {
			end = len(data.Rows)
		}
		sql, args := buildInsertSQL(table, data.Columns, data.Rows[start:end], dialectPostgres)
		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	log.Printf("Wrote %d rows to table %s", data.NumRows(), table)
	return nil
}

// =============================================================================
// Sync runs
// =============================================================================

const syncRunsSchema = `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		rows_written BIGINT NOT NULL DEFAULT 0,
		errors_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	);`

func (s *PostgresStore) EnsureSyncRuns(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, syncRunsSchema)
	return err
}

func (s *PostgresStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, started_at, status, rows_written, errors_count)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query, run.ID, run.StartedAt, run.Status, run.RowsWritten, run.ErrorsCount)
	return err
}

func (s *PostgresStore) FinishSyncRun(ctx context.Context, run *models.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			finished_at = $2, status = $3, rows_written = $4, errors_count = $5, last_error = $6
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.RowsWritten, run.ErrorsCount, run.LastError,
	)
	return err
}
