package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SyncRun tracks one full pipeline iteration across all resources.
type SyncRun struct {
	ID          uuid.UUID
	StartedAt   time.Time
	FinishedAt  *time.Time
	Status      RunStatus
	RowsWritten int
	ErrorsCount int
	LastError   string
}
