package storage

import (
	"context"
	"fmt"

	"yclients_sync/models"
)

type WriteMode string

const (
	// ModeReplace drops and recreates the destination table before writing.
	ModeReplace WriteMode = "replace"
	// ModeAppend creates the table only if missing and appends rows.
	ModeAppend WriteMode = "append"
)

// Sink is a relational destination for materialized tables. Write is a full
// batch write of one table; empty tables are skipped (logged, never fatal).
// Column types are re-inferred from the batch on every call; nothing is
// persisted about schema across runs.
type Sink interface {
	Write(ctx context.Context, table string, data *models.Table, mode WriteMode) error
	Close()
}

// PostgresDSN assembles a connection string from discrete credential fields.
func PostgresDSN(user, password, host, port, dbname string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, dbname)
}
