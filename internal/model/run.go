package model

import "time"

// RunStatus tracks the lifecycle of an ingest run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
)

// IngestRun is the audit record of one batch, persisted alongside the data it
// produced.
type IngestRun struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Summary    *BatchSummary `json:"summary,omitempty"`
}
