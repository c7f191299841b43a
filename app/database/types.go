package database

import (
	"time"
)

type RunStatus string

const (
	RunStatusOK       RunStatus = "ok"
	RunStatusDegraded RunStatus = "degraded"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one feed generation. Only metadata is kept, never fetched content.
type Run struct {
	ID        string // UUIDv7, generated when empty
	SourceID  string
	StartedAt time.Time
	Duration  time.Duration
	ItemCount int
	Status    RunStatus
	Error     string
}

type SourceStats struct {
	SourceID        string
	Runs            int
	OK              int
	Degraded        int
	Failed          int
	LastRunAt       time.Time
	LastStatus      RunStatus
	AverageDuration time.Duration
}
